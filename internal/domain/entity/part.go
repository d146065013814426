package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Campos editables de Part desde el flujo de edición.
const (
	PartFieldName     = "name"
	PartFieldCode     = "code"
	PartFieldQuantity = "quantity"
	PartFieldUnit     = "unit"
	PartFieldPrice    = "price"
	PartFieldLocation = "location"
	PartFieldMinStock = "min_stock"
)

// Part representa un repuesto del almacén. El código es único a nivel de
// almacén y la cantidad nunca baja de cero (lo garantiza también el CHECK
// de la tabla).
type Part struct {
	ID        int64
	Code      string
	Name      string
	Quantity  int64
	Unit      string
	Price     decimal.Decimal
	Location  string
	MinStock  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LowStock indica si la cantidad está en o por debajo del mínimo configurado.
func (p *Part) LowStock() bool {
	return p.Quantity <= p.MinStock
}
