package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-bot/internal/domain"
	"github.com/jhoicas/almacen-bot/internal/domain/entity"
	"github.com/jhoicas/almacen-bot/internal/domain/repository"
)

var _ repository.PartRepository = (*PartRepo)(nil)

const partColumns = `id, code, name, quantity, unit, price, location, min_stock, created_at, updated_at`

// Lista blanca campo editable -> columna. Evita interpolar entrada del
// usuario en el SQL del UPDATE.
var partUpdateColumns = map[string]string{
	entity.PartFieldName:     "name",
	entity.PartFieldCode:     "code",
	entity.PartFieldQuantity: "quantity",
	entity.PartFieldUnit:     "unit",
	entity.PartFieldPrice:    "price",
	entity.PartFieldLocation: "location",
	entity.PartFieldMinStock: "min_stock",
}

// PartRepo implementación del puerto PartRepository sobre PostgreSQL (usable con pool o tx).
type PartRepo struct {
	q Querier
}

// NewPartRepository construye el adaptador de repuestos. Pasar pool o tx (Querier).
func NewPartRepository(q Querier) *PartRepo {
	return &PartRepo{q: q}
}

// Create persiste un repuesto nuevo y asigna ID y timestamps desde la BD.
func (r *PartRepo) Create(ctx context.Context, part *entity.Part) error {
	query := `
		INSERT INTO parts (code, name, quantity, unit, price, location, min_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		part.Code, part.Name, part.Quantity, part.Unit, part.Price, part.Location, part.MinStock,
	).Scan(&part.ID, &part.CreatedAt, &part.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("insert part: %w", err)
	}
	return nil
}

// GetByID obtiene un repuesto por ID. (nil, nil) si no existe.
func (r *PartRepo) GetByID(ctx context.Context, id int64) (*entity.Part, error) {
	return r.scanOne(r.q.QueryRow(ctx,
		`SELECT `+partColumns+` FROM parts WHERE id = $1`, id))
}

// GetByCode obtiene un repuesto por código. (nil, nil) si no existe.
func (r *PartRepo) GetByCode(ctx context.Context, code string) (*entity.Part, error) {
	return r.scanOne(r.q.QueryRow(ctx,
		`SELECT `+partColumns+` FROM parts WHERE code = $1`, code))
}

// GetByCodeForUpdate obtiene el repuesto y bloquea la fila (SELECT FOR UPDATE).
func (r *PartRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.Part, error) {
	return r.scanOne(r.q.QueryRow(ctx,
		`SELECT `+partColumns+` FROM parts WHERE code = $1 FOR UPDATE`, code))
}

// GetByIDForUpdate obtiene el repuesto y bloquea la fila (SELECT FOR UPDATE).
func (r *PartRepo) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Part, error) {
	return r.scanOne(r.q.QueryRow(ctx,
		`SELECT `+partColumns+` FROM parts WHERE id = $1 FOR UPDATE`, id))
}

// UpdateField actualiza una sola columna editable y refresca updated_at.
func (r *PartRepo) UpdateField(ctx context.Context, id int64, field string, value any) error {
	column, ok := partUpdateColumns[field]
	if !ok {
		return domain.ErrInvalidInput
	}
	query := fmt.Sprintf(`UPDATE parts SET %s = $2, updated_at = now() WHERE id = $1`, column)
	cmd, err := r.q.Exec(ctx, query, id, value)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("update part field %s: %w", field, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetQuantity fija la cantidad absoluta y refresca updated_at.
func (r *PartRepo) SetQuantity(ctx context.Context, id int64, quantity int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE parts SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("set part quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search busca por subcadena en nombre o código, insensible a mayúsculas,
// ordenado por nombre.
func (r *PartRepo) Search(ctx context.Context, term string) ([]*entity.Part, error) {
	query := `
		SELECT ` + partColumns + `
		FROM parts
		WHERE name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%'
		ORDER BY name`
	rows, err := r.q.Query(ctx, query, term)
	if err != nil {
		return nil, fmt.Errorf("search parts: %w", err)
	}
	return r.scanAll(rows)
}

// List pagina ordenando por nombre.
func (r *PartRepo) List(ctx context.Context, offset, limit int) ([]*entity.Part, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+partColumns+` FROM parts ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	return r.scanAll(rows)
}

// Count devuelve el número total de posiciones.
func (r *PartRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM parts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count parts: %w", err)
	}
	return n, nil
}

// LowStock lista repuestos con cantidad <= mínimo, cantidad ascendente.
func (r *PartRepo) LowStock(ctx context.Context) ([]*entity.Part, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+partColumns+` FROM parts WHERE quantity <= min_stock ORDER BY quantity`)
	if err != nil {
		return nil, fmt.Errorf("low stock parts: %w", err)
	}
	return r.scanAll(rows)
}

// Totals devuelve número de posiciones y suma de cantidades.
func (r *PartRepo) Totals(ctx context.Context) (int64, int64, error) {
	var count, total int64
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM parts`).Scan(&count, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("part totals: %w", err)
	}
	return count, total, nil
}

// Delete elimina el repuesto por ID.
func (r *PartRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM parts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete part: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PartRepo) scanOne(row pgx.Row) (*entity.Part, error) {
	var p entity.Part
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Quantity, &p.Unit, &p.Price,
		&p.Location, &p.MinStock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan part: %w", err)
	}
	return &p, nil
}

func (r *PartRepo) scanAll(rows pgx.Rows) ([]*entity.Part, error) {
	defer rows.Close()
	var list []*entity.Part
	for rows.Next() {
		var p entity.Part
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Quantity, &p.Unit, &p.Price,
			&p.Location, &p.MinStock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
