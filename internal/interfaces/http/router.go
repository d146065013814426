package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-bot/internal/application/access"
	"github.com/jhoicas/almacen-bot/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Stock  *inventory.StockUseCase
	Access *access.Service
}

// Router registra las rutas de estado.
func Router(app *fiber.App, deps RouterDeps) {
	handler := NewStatusHandler(deps.Stock, deps.Access)
	app.Get("/health", handler.Health)
	app.Get("/status", handler.Status)
}
