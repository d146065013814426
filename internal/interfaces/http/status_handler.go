// Package http expone la superficie de estado del bot: /health y /status,
// solo lectura.
package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-bot/internal/application/access"
	"github.com/jhoicas/almacen-bot/internal/application/inventory"
)

// StatusHandler responde las rutas de estado.
type StatusHandler struct {
	stock   *inventory.StockUseCase
	access  *access.Service
	started time.Time
}

// NewStatusHandler construye el handler.
func NewStatusHandler(stock *inventory.StockUseCase, acc *access.Service) *StatusHandler {
	return &StatusHandler{stock: stock, access: acc, started: time.Now()}
}

// Health responde 200 mientras el proceso viva.
func (h *StatusHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Status devuelve tiempo en marcha y contadores agregados.
func (h *StatusHandler) Status(c *fiber.Ctx) error {
	totals, err := h.stock.GetTotals(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "no se pudo leer el almacén"})
	}
	return c.JSON(fiber.Map{
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"parts":          totals.Parts,
		"total_quantity": totals.TotalQuantity,
		"movements":      totals.Movements,
		"users":          len(h.access.List()),
	})
}
