package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-bot/internal/domain/entity"
	"github.com/jhoicas/almacen-bot/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de usuarios del bot.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Upsert inserta o actualiza la fila de contabilidad de un usuario.
func (r *UserRepo) Upsert(ctx context.Context, user *entity.BotUser) error {
	query := `
		INSERT INTO bot_users (telegram_id, display_name, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id)
		DO UPDATE SET display_name = EXCLUDED.display_name, role = EXCLUDED.role`
	_, err := r.q.Exec(ctx, query, user.TelegramID, user.DisplayName, user.Role)
	if err != nil {
		return fmt.Errorf("upsert bot user: %w", err)
	}
	return nil
}

// Delete elimina la fila de contabilidad de un usuario.
func (r *UserRepo) Delete(ctx context.Context, telegramID int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM bot_users WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return fmt.Errorf("delete bot user: %w", err)
	}
	return nil
}

// List devuelve todos los usuarios registrados, admin primero.
func (r *UserRepo) List(ctx context.Context) ([]*entity.BotUser, error) {
	rows, err := r.q.Query(ctx,
		`SELECT telegram_id, display_name, role, created_at FROM bot_users ORDER BY role, telegram_id`)
	if err != nil {
		return nil, fmt.Errorf("list bot users: %w", err)
	}
	defer rows.Close()
	var list []*entity.BotUser
	for rows.Next() {
		var u entity.BotUser
		if err := rows.Scan(&u.TelegramID, &u.DisplayName, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bot user: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// Count devuelve el número de usuarios registrados.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM bot_users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bot users: %w", err)
	}
	return n, nil
}
