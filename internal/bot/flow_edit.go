package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-bot/internal/domain"
	"github.com/jhoicas/almacen-bot/internal/domain/entity"
)

// handleEditPart edición de un campo: código del repuesto, campo a cambiar
// y valor nuevo. Editar la cantidad registra el movimiento derivado del
// delta sin pasar por la comprobación de saldo (corrección manual).
func (d *Dispatcher) handleEditPart(ctx context.Context, sess *Session, text string) Reply {
	switch sess.Step {
	case StepEditCode:
		part, err := d.stock.GetPartByCode(ctx, text)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return reply(fmt.Sprintf("No existe ningún repuesto con código %s. Prueba con otro código.", text), cancelKeyboard())
			}
			return d.fail(sess, err)
		}
		sess.Draft.PartID = part.ID
		sess.Draft.PartCode = part.Code
		sess.Step = StepEditField
		return reply(formatPart(part)+"\n\n¿Qué campo quieres cambiar?", editFieldsKeyboard())

	case StepEditField:
		field, ok := editableFields[text]
		if !ok {
			return reply("Elige un campo de la lista.", editFieldsKeyboard())
		}
		sess.Draft.EditField = field
		sess.Step = StepEditValue
		return reply(editValuePrompt(field), cancelKeyboard())

	case StepEditValue:
		value, prompt := parseEditValue(sess.Draft.EditField, text)
		if prompt != "" {
			return reply(prompt, cancelKeyboard())
		}
		part, err := d.stock.UpdatePartField(ctx, sess.Draft.PartID, sess.Draft.EditField, value, sess.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return reply(fmt.Sprintf("El código %s ya está en uso. Escribe otro valor.", text), cancelKeyboard())
			}
			if errors.Is(err, domain.ErrInvalidInput) {
				return reply(editValuePrompt(sess.Draft.EditField), cancelKeyboard())
			}
			return d.fail(sess, err)
		}
		sess.Reset()
		return reply("✅ Campo actualizado.\n\n"+formatPart(part), d.menu(sess.UserID))
	}
	return d.fail(sess, fmt.Errorf("paso inesperado %d en edición", sess.Step))
}

func editValuePrompt(field string) string {
	switch field {
	case entity.PartFieldQuantity:
		return "Nueva cantidad (número entero, 0 o más). Se registrará el ajuste como movimiento."
	case entity.PartFieldMinStock:
		return "Nuevo stock mínimo (número entero, 0 o más)."
	case entity.PartFieldPrice:
		return "Nuevo precio (por ejemplo 12.50)."
	case entity.PartFieldCode:
		return "Nuevo código. Debe ser único y sin espacios."
	}
	return "Nuevo valor."
}

// parseEditValue valida el texto según el tipo del campo. Si el segundo
// valor no es vacío, es el mensaje para repetir el paso.
func parseEditValue(field, text string) (any, string) {
	switch field {
	case entity.PartFieldQuantity, entity.PartFieldMinStock:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil || n < 0 {
			return nil, "Valor no válido. Escribe un número entero, 0 o más."
		}
		return n, ""
	case entity.PartFieldPrice:
		p, err := decimal.NewFromString(strings.ReplaceAll(text, ",", "."))
		if err != nil || p.IsNegative() {
			return nil, "Precio no válido. Escribe un número, por ejemplo 12.50."
		}
		return p, ""
	case entity.PartFieldCode:
		if text == "" || strings.ContainsAny(text, " |") {
			return nil, "Código no válido. Sin espacios ni «|»."
		}
		return text, ""
	default:
		if text == "" {
			return nil, "El valor no puede estar vacío."
		}
		return text, ""
	}
}
