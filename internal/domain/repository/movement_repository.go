package repository

import (
	"context"

	"github.com/jhoicas/almacen-bot/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para Movement.
type MovementRepository interface {
	// Create persiste un movimiento y asigna su ID.
	Create(ctx context.Context, movement *entity.Movement) error
	// GetByID devuelve (nil, nil) si el movimiento no existe.
	GetByID(ctx context.Context, id int64) (*entity.Movement, error)
	// ListByPart lista los movimientos de un repuesto, más recientes primero.
	ListByPart(ctx context.Context, partID int64, limit, offset int) ([]*entity.Movement, error)
	// List pagina todos los movimientos por id ascendente (volcados).
	List(ctx context.Context, limit, offset int) ([]*entity.Movement, error)
	// DeleteByPart elimina todos los movimientos de un repuesto y devuelve
	// cuántos borró (cascada previa al borrado del repuesto).
	DeleteByPart(ctx context.Context, partID int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}
