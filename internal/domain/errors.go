package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrForbidden         = errors.New("acceso denegado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrUserExists        = errors.New("el usuario ya está en la lista")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrAdminImmutable    = errors.New("el administrador no se puede eliminar")
)

// StockShortage detalla una salida rechazada por saldo insuficiente.
// Desenvuelve a ErrInsufficientStock para poder comparar con errors.Is.
type StockShortage struct {
	Available int64
	Requested int64
}

func (e *StockShortage) Error() string {
	return fmt.Sprintf("stock insuficiente: disponible %d, solicitado %d", e.Available, e.Requested)
}

func (e *StockShortage) Unwrap() error { return ErrInsufficientStock }
