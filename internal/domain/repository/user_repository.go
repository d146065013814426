package repository

import (
	"context"

	"github.com/jhoicas/almacen-bot/internal/domain/entity"
)

// UserRepository define el puerto de contabilidad de usuarios autorizados.
// La fuente de verdad del permiso es la lista en memoria del servicio de
// acceso; esta tabla existe para el recuento de /status y para auditoría.
type UserRepository interface {
	Upsert(ctx context.Context, user *entity.BotUser) error
	Delete(ctx context.Context, telegramID int64) error
	List(ctx context.Context) ([]*entity.BotUser, error)
	Count(ctx context.Context) (int64, error)
}
