package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-traslados/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// classify traduce fallos de infraestructura a la taxonomía del dominio. Los errores que
// ya son de dominio se devuelven intactos.
func classify(op string, err error) error {
	if err == nil || domain.IsValidation(err) || domain.IsRetryable(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", domain.ErrOperationFailed, op, err)
	}
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
		return fmt.Errorf("%w: %s: %v", domain.ErrOperationFailed, op, err)
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s: %v", domain.ErrConflict, op, err)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %s: referencia inexistente: %v", domain.ErrNotFound, op, err)
	case codeCheckViolation:
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// nullable: cadena vacía -> NULL (sección a nivel departamento, campos opcionales).
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
