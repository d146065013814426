package repository

import (
	"context"

	"github.com/jhoicas/almacen-bot/internal/domain/entity"
)

// PartRepository define el puerto de persistencia para Part (DIP).
// Los métodos Get* devuelven (nil, nil) cuando el repuesto no existe.
type PartRepository interface {
	// Create persiste un repuesto nuevo y asigna su ID. Devuelve
	// domain.ErrDuplicate si el código ya está en uso.
	Create(ctx context.Context, part *entity.Part) error
	GetByID(ctx context.Context, id int64) (*entity.Part, error)
	GetByCode(ctx context.Context, code string) (*entity.Part, error)
	// GetByCodeForUpdate bloquea la fila (SELECT FOR UPDATE); solo tiene
	// sentido dentro de una transacción.
	GetByCodeForUpdate(ctx context.Context, code string) (*entity.Part, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.Part, error)
	// UpdateField actualiza una sola columna editable y refresca updated_at.
	// Devuelve domain.ErrInvalidInput para campos fuera de la lista blanca,
	// domain.ErrDuplicate para colisión de código y domain.ErrNotFound si
	// el id no existe.
	UpdateField(ctx context.Context, id int64, field string, value any) error
	// SetQuantity fija la cantidad absoluta y refresca updated_at.
	SetQuantity(ctx context.Context, id int64, quantity int64) error
	// Search busca por subcadena (insensible a mayúsculas) en nombre o
	// código, ordenado por nombre.
	Search(ctx context.Context, term string) ([]*entity.Part, error)
	// List pagina ordenando por nombre.
	List(ctx context.Context, offset, limit int) ([]*entity.Part, error)
	Count(ctx context.Context) (int64, error)
	// LowStock lista repuestos con cantidad <= mínimo, cantidad ascendente.
	LowStock(ctx context.Context) ([]*entity.Part, error)
	// Totals devuelve número de posiciones y suma de cantidades.
	Totals(ctx context.Context) (count int64, totalQuantity int64, err error)
	// Delete elimina el repuesto. Devuelve domain.ErrNotFound si no existe.
	// Los movimientos asociados deben eliminarse antes, en la misma
	// transacción.
	Delete(ctx context.Context, id int64) error
}
