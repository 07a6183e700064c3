package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-traslados/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"deadlock", &pgconn.PgError{Code: codeDeadlockDetected}, domain.ErrOperationFailed},
		{"serialización", &pgconn.PgError{Code: codeSerializationFailure}, domain.ErrOperationFailed},
		{"lock no disponible", &pgconn.PgError{Code: codeLockNotAvailable}, domain.ErrOperationFailed},
		{"cancelada", &pgconn.PgError{Code: codeQueryCanceled}, domain.ErrOperationFailed},
		{"timeout", fmt.Errorf("query: %w", context.DeadlineExceeded), domain.ErrOperationFailed},
		{"único", &pgconn.PgError{Code: codeUniqueViolation}, domain.ErrConflict},
		{"fk", &pgconn.PgError{Code: codeForeignKeyViolation}, domain.ErrNotFound},
		{"check", &pgconn.PgError{Code: codeCheckViolation}, domain.ErrInvalidInput},
		{"dominio intacto", domain.ErrInsufficientQuantity, domain.ErrInsufficientQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify("op", tc.err), tc.want)
		})
	}

	assert.NoError(t, classify("op", nil))
	other := errors.New("otro")
	got := classify("op", other)
	assert.ErrorIs(t, got, other)
	assert.False(t, domain.IsRetryable(got))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, "s1", deref(nullable("s1")))
	assert.Equal(t, "", deref(nil))
}
