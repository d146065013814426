package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/almacen-bot/internal/domain"
)

// handleDeletePart borrado con confirmación. Elimina primero el historial
// de movimientos y después el repuesto, todo en una transacción.
func (d *Dispatcher) handleDeletePart(ctx context.Context, sess *Session, text string) Reply {
	switch sess.Step {
	case StepDeleteCode:
		part, err := d.stock.GetPartByCode(ctx, text)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return reply(fmt.Sprintf("No existe ningún repuesto con código %s. Prueba con otro código.", text), cancelKeyboard())
			}
			return d.fail(sess, err)
		}
		sess.Draft.PartID = part.ID
		sess.Draft.PartCode = part.Code
		sess.Draft.Name = part.Name
		sess.Step = StepDeleteConfirm
		return reply(fmt.Sprintf("¿Eliminar «%s» (%s) y todo su historial de movimientos?", part.Name, part.Code), confirmKeyboard())

	case StepDeleteConfirm:
		switch text {
		case btnYes:
			removed, err := d.stock.DeletePart(ctx, sess.Draft.PartID)
			if err != nil {
				return d.fail(sess, err)
			}
			name, code := sess.Draft.Name, sess.Draft.PartCode
			sess.Reset()
			return reply(fmt.Sprintf("🗑️ Eliminado «%s» (%s) junto con %d movimiento(s).", name, code, removed), d.menu(sess.UserID))
		case btnNo:
			sess.Reset()
			return reply("Borrado descartado. No se ha tocado nada.", d.menu(sess.UserID))
		}
		return reply("Responde ✅ Sí o ❌ No.", confirmKeyboard())
	}
	return d.fail(sess, fmt.Errorf("paso inesperado %d en borrado", sess.Step))
}
