package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/almacen-bot/internal/application/inventory"
	"github.com/jhoicas/almacen-bot/internal/domain"
)

// handleAddPart alta guiada: nombre, código, cantidad, unidad y stock
// mínimo. La creación escribe repuesto y movimiento inicial en una sola
// transacción.
func (d *Dispatcher) handleAddPart(ctx context.Context, sess *Session, text string) Reply {
	switch sess.Step {
	case StepAddName:
		if text == "" {
			return reply("El nombre no puede estar vacío. ¿Nombre del repuesto?", cancelKeyboard())
		}
		sess.Draft.Name = text
		sess.Step = StepAddCode
		return reply("¿Código? Debe ser único y sin espacios.", cancelKeyboard())

	case StepAddCode:
		if text == "" || strings.ContainsAny(text, " |") {
			return reply("Código no válido. Sin espacios ni «|». ¿Código?", cancelKeyboard())
		}
		existing, err := d.stock.GetPartByCode(ctx, text)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return d.fail(sess, err)
		}
		if existing != nil {
			return reply(fmt.Sprintf("Ya existe un repuesto con código %s. Elige otro código.", text), cancelKeyboard())
		}
		sess.Draft.Code = text
		sess.Step = StepAddQuantity
		return reply("¿Cantidad inicial? (número entero, 0 o más)", cancelKeyboard())

	case StepAddQuantity:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil || n < 0 {
			return reply("Cantidad no válida. Escribe un número entero, 0 o más.", cancelKeyboard())
		}
		sess.Draft.Quantity = n
		sess.Step = StepAddUnit
		return reply("¿Unidad de medida? (por ejemplo: ud., kg, l)", cancelKeyboard())

	case StepAddUnit:
		if text == "" {
			return reply("La unidad no puede estar vacía. ¿Unidad de medida?", cancelKeyboard())
		}
		sess.Draft.Unit = text
		sess.Step = StepAddMinStock
		return reply("¿Stock mínimo para el aviso? (número entero, 0 o más)", cancelKeyboard())

	case StepAddMinStock:
		minStock, err := strconv.ParseInt(text, 10, 64)
		if err != nil || minStock < 0 {
			return reply("Stock mínimo no válido. Escribe un número entero, 0 o más.", cancelKeyboard())
		}
		part, err := d.stock.CreatePart(ctx, inventory.CreatePartInput{
			Code:     sess.Draft.Code,
			Name:     sess.Draft.Name,
			Quantity: sess.Draft.Quantity,
			Unit:     sess.Draft.Unit,
			MinStock: minStock,
			By:       sess.UserID,
		})
		if err != nil {
			// otro usuario pudo registrar el mismo código entre paso y paso
			if errors.Is(err, domain.ErrDuplicate) {
				sess.Step = StepAddCode
				return reply(fmt.Sprintf("El código %s acaba de ocuparse. Elige otro código.", sess.Draft.Code), cancelKeyboard())
			}
			return d.fail(sess, err)
		}
		sess.Reset()
		return reply("✅ Repuesto dado de alta.\n\n"+formatPart(part), d.menu(sess.UserID))
	}
	return d.fail(sess, fmt.Errorf("paso inesperado %d en alta", sess.Step))
}
