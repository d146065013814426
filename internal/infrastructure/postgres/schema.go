package postgres

import (
	"context"
	"fmt"
)

// Esquema del almacén. La unicidad del código y la no-negatividad de la
// cantidad se garantizan aquí, en la capa de almacenamiento, no con
// comprobaciones previas en los flujos (cierra la carrera check-then-act
// entre sesiones concurrentes).
const schema = `
CREATE TABLE IF NOT EXISTS parts (
    id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    code        TEXT NOT NULL UNIQUE,
    name        TEXT NOT NULL,
    quantity    BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    unit        TEXT NOT NULL DEFAULT 'ud.',
    price       NUMERIC(14,2) NOT NULL DEFAULT 0,
    location    TEXT NOT NULL DEFAULT 'almacén',
    min_stock   BIGINT NOT NULL DEFAULT 5 CHECK (min_stock >= 0),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS movements (
    id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    transaction_id  UUID NOT NULL,
    part_id         BIGINT NOT NULL REFERENCES parts (id),
    kind            TEXT NOT NULL CHECK (kind IN ('incoming', 'outgoing')),
    amount          BIGINT NOT NULL CHECK (amount > 0),
    document_ref    TEXT NOT NULL DEFAULT '',
    note            TEXT NOT NULL DEFAULT '',
    created_by      BIGINT NOT NULL DEFAULT 0,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_movements_part_id ON movements (part_id);

CREATE TABLE IF NOT EXISTS bot_users (
    telegram_id   BIGINT PRIMARY KEY,
    display_name  TEXT NOT NULL DEFAULT '',
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema crea las tablas si no existen. Idempotente; se ejecuta en el
// arranque antes de aceptar mensajes.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("crear esquema: %w", err)
	}
	return nil
}
