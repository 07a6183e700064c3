package domain

import "errors"

// Errores de dominio (sin dependencias externas). Cada uno corresponde a una
// clase de fallo que el llamador puede distinguir con errors.Is.
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrForbidden             = errors.New("acceso denegado")
	ErrInsufficientQuantity  = errors.New("cantidad insuficiente")
	ErrInsufficientAvailable = errors.New("disponible insuficiente para reservar")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrInvalidInput          = errors.New("entrada inválida")
	ErrOperationFailed       = errors.New("la operación no pudo completarse, reintente")
)

// Refinamientos: conservan la clase de su padre (errors.Is(ErrAlreadyProcessed, ErrConflict) == true).
var (
	ErrAlreadyProcessed = refine(ErrConflict, "el traslado ya fue procesado")
	ErrNotFoundAtSource = refine(ErrNotFound, "el servicio no está en la ubicación de origen")
	ErrAlreadyPresent   = refine(ErrConflict, "el servicio ya se encuentra en la ubicación destino")
)

type kindError struct {
	kind error
	msg  string
}

func refine(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }

// IsRetryable indica si el llamador puede reintentar la operación: solo los
// fallos transaccionales sin causa de negocio (timeout, deadlock).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrOperationFailed)
}

// IsValidation indica un fallo de validación: "no pasó nada, corrija la petición".
func IsValidation(err error) bool {
	for _, kind := range []error{
		ErrNotFound, ErrForbidden, ErrInsufficientQuantity,
		ErrInsufficientAvailable, ErrConflict, ErrInvalidInput,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
