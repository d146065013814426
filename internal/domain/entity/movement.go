package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementIncoming = "incoming" // entrada
	MovementOutgoing = "outgoing" // salida
)

// Movement registra un cambio de cantidad sobre un repuesto. Es inmutable:
// solo se crea junto con la mutación que lo origina y solo desaparece al
// eliminar el repuesto (borrado en cascada dentro de la misma transacción).
type Movement struct {
	ID            int64
	TransactionID string // agrupa los registros escritos por una misma operación
	PartID        int64
	Kind          string // incoming, outgoing
	Amount        int64  // magnitud, siempre > 0; la dirección la da Kind
	DocumentRef   string
	Note          string
	CreatedBy     int64 // id de Telegram del operador, 0 si no aplica
	CreatedAt     time.Time
}
