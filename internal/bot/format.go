package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/almacen-bot/internal/application/inventory"
	"github.com/jhoicas/almacen-bot/internal/domain/entity"
)

func formatPart(p *entity.Part) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 %s\n", p.Name)
	fmt.Fprintf(&b, "Código: %s\n", p.Code)
	fmt.Fprintf(&b, "Cantidad: %d %s", p.Quantity, p.Unit)
	if p.LowStock() {
		b.WriteString(" ⚠️")
	}
	b.WriteString("\n")
	if !p.Price.IsZero() {
		fmt.Fprintf(&b, "Precio: %s\n", p.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "Ubicación: %s\n", p.Location)
	fmt.Fprintf(&b, "Stock mínimo: %d", p.MinStock)
	return b.String()
}

func formatPartLine(p *entity.Part) string {
	line := fmt.Sprintf("• %s (%s): %d %s", p.Name, p.Code, p.Quantity, p.Unit)
	if p.LowStock() {
		line += " ⚠️"
	}
	return line
}

func formatStockPage(parts []*entity.Part, page, totalPages int, total int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Existencias — página %d de %d (%d repuestos)\n\n", page, totalPages, total)
	for _, p := range parts {
		b.WriteString(formatPartLine(p))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSearchResults(term string, parts []*entity.Part) string {
	if len(parts) == 0 {
		return fmt.Sprintf("🔍 Sin resultados para «%s».", term)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 %d resultado(s) para «%s»:\n\n", len(parts), term)
	for _, p := range parts {
		b.WriteString(formatPartLine(p))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatLowStockReport(parts []*entity.Part) string {
	if len(parts) == 0 {
		return "📋 Ningún repuesto por debajo del mínimo. Todo en orden."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Repuestos en o bajo el mínimo (%d):\n\n", len(parts))
	for _, p := range parts {
		fmt.Fprintf(&b, "⚠️ %s (%s): %d %s (mínimo %d)\n", p.Name, p.Code, p.Quantity, p.Unit, p.MinStock)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatUserList(users []*entity.BotUser) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👥 Usuarios permitidos (%d):\n\n", len(users))
	for _, u := range users {
		mark := "👤"
		if u.Role == entity.RoleAdmin {
			mark = "👑"
		}
		fmt.Fprintf(&b, "%s %s (ID: %d)\n", mark, u.DisplayName, u.TelegramID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStatus(uptime time.Duration, totals inventory.Totals, userCount int) string {
	return fmt.Sprintf(
		"🤖 Bot en marcha desde hace %s\n\n📦 Repuestos: %d\n🔢 Unidades totales: %d\n🔁 Movimientos: %d\n👥 Usuarios: %d",
		formatDuration(uptime), totals.Parts, totals.TotalQuantity, totals.Movements, userCount)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	minutes := (d - hours*time.Hour) / time.Minute
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

const helpText = `❓ Ayuda

📦 Entrada / 📤 Salida — registrar movimiento con "código | cantidad".
  Opcionalmente "código | cantidad | documento | nota".
📊 Existencias — listado paginado del almacén.
🔍 Buscar — por nombre o código.
➕ Añadir repuesto — alta guiada paso a paso.
✏️ Editar repuesto — cambiar un campo de un repuesto.
🗑️ Eliminar repuesto — borrar repuesto y su historial.
📋 Informe — repuestos en o bajo el stock mínimo.
❌ Cancelar — abandona el flujo en curso en cualquier momento.

Comandos: /start /help /status`
