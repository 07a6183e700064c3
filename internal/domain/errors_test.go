package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-traslados/internal/domain"
)

func TestRefinamientos_ConservanSuClase(t *testing.T) {
	assert.ErrorIs(t, domain.ErrAlreadyProcessed, domain.ErrConflict)
	assert.ErrorIs(t, domain.ErrAlreadyPresent, domain.ErrConflict)
	assert.ErrorIs(t, domain.ErrNotFoundAtSource, domain.ErrNotFound)

	assert.NotErrorIs(t, domain.ErrAlreadyProcessed, domain.ErrNotFound)
	assert.NotErrorIs(t, domain.ErrConflict, domain.ErrAlreadyProcessed,
		"la clase padre no implica el refinamiento")
}

func TestRefinamientos_SobrevivenAlWrap(t *testing.T) {
	err := fmt.Errorf("aprobar traslado t-1: %w", domain.ErrAlreadyProcessed)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, domain.IsRetryable(fmt.Errorf("commit: %w", domain.ErrOperationFailed)))
	assert.False(t, domain.IsRetryable(domain.ErrInsufficientQuantity))
	assert.False(t, domain.IsRetryable(errors.New("otro")))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, domain.IsValidation(domain.ErrForbidden))
	assert.True(t, domain.IsValidation(domain.ErrNotFoundAtSource))
	assert.False(t, domain.IsValidation(domain.ErrOperationFailed))
}
