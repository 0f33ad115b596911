package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Kardex: validaciones de movimiento (terminales para la llamada).
	ErrUnresolvableProduct            = errors.New("producto no resoluble: sin product_id ni datos de creación")
	ErrNegativeUnitCost               = errors.New("costo unitario negativo en entrada")
	ErrZeroOrNegativeQuantityOnCreate = errors.New("cantidad cero o negativa al crear producto")
	ErrInsufficientStock              = errors.New("stock insuficiente")
	ErrProductInactive                = errors.New("producto inactivo")
	ErrAlreadyReversed                = errors.New("movimiento ya reversado")

	// Kardex: fallas transitorias (reintentables).
	ErrConcurrentModification = errors.New("modificación concurrente del producto")
	ErrStoreUnavailable       = errors.New("almacenamiento no disponible")
)

// IsRetryable indica si err puede reintentarse repitiendo la misma llamada lógica.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification) || errors.Is(err, ErrStoreUnavailable)
}
