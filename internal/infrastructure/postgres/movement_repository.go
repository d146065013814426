package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-bot/internal/domain/entity"
	"github.com/jhoicas/almacen-bot/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, transaction_id, part_id, kind, amount, document_ref, note, created_by, created_at`

// MovementRepo implementación del puerto MovementRepository sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador de movimientos. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento de stock.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	if movement.TransactionID == "" {
		movement.TransactionID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (transaction_id, part_id, kind, amount, document_ref, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		movement.TransactionID, movement.PartID, movement.Kind, movement.Amount,
		movement.DocumentRef, movement.Note, movement.CreatedBy,
	).Scan(&movement.ID, &movement.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID. (nil, nil) si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id int64) (*entity.Movement, error) {
	var m entity.Movement
	err := r.q.QueryRow(ctx,
		`SELECT `+movementColumns+` FROM movements WHERE id = $1`, id).Scan(
		&m.ID, &m.TransactionID, &m.PartID, &m.Kind, &m.Amount,
		&m.DocumentRef, &m.Note, &m.CreatedBy, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

// ListByPart lista los movimientos de un repuesto, más recientes primero.
func (r *MovementRepo) ListByPart(ctx context.Context, partID int64, limit, offset int) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+movementColumns+` FROM movements WHERE part_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		partID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.PartID, &m.Kind, &m.Amount,
			&m.DocumentRef, &m.Note, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// List pagina todos los movimientos por id ascendente.
func (r *MovementRepo) List(ctx context.Context, limit, offset int) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+movementColumns+` FROM movements ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list all movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.PartID, &m.Kind, &m.Amount,
			&m.DocumentRef, &m.Note, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// DeleteByPart elimina los movimientos de un repuesto (cascada previa al
// borrado del repuesto, misma transacción).
func (r *MovementRepo) DeleteByPart(ctx context.Context, partID int64) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM movements WHERE part_id = $1`, partID)
	if err != nil {
		return 0, fmt.Errorf("delete movements: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// Count devuelve el número total de movimientos.
func (r *MovementRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}
