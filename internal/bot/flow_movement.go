package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/almacen-bot/internal/application/inventory"
	"github.com/jhoicas/almacen-bot/internal/domain"
	"github.com/jhoicas/almacen-bot/internal/domain/entity"
)

const movementFormatHint = "Formato: código | cantidad\nOpcional: código | cantidad | documento | nota"

// handleMovement entrada y salida de stock en una sola línea. Un código
// inexistente termina el flujo; el formato incorrecto o la falta de saldo
// repiten el paso.
func (d *Dispatcher) handleMovement(ctx context.Context, sess *Session, text string) Reply {
	input, ok := parseMovementLine(text)
	if !ok {
		return reply("No entiendo esa línea.\n"+movementFormatHint, cancelKeyboard())
	}
	input.By = sess.UserID

	var part *entity.Part
	var err error
	if sess.Flow == FlowIncoming {
		part, err = d.stock.RegisterIncoming(ctx, input)
	} else {
		part, err = d.stock.RegisterOutgoing(ctx, input)
	}

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			sess.Reset()
			return reply(fmt.Sprintf("No existe ningún repuesto con código %s. Operación terminada.", input.Code), d.menu(sess.UserID))
		}
		var shortage *domain.StockShortage
		if errors.As(err, &shortage) {
			return reply(fmt.Sprintf("🚫 Stock insuficiente: hay %d y pides %d. Ajusta la cantidad.\n%s",
				shortage.Available, shortage.Requested, movementFormatHint), cancelKeyboard())
		}
		return d.fail(sess, err)
	}

	verb := "📦 Entrada registrada"
	if sess.Flow == FlowOutgoing {
		verb = "📤 Salida registrada"
	}
	sess.Reset()
	return reply(fmt.Sprintf("%s: %d x %s.\nSaldo actual: %d %s.",
		verb, input.Amount, part.Name, part.Quantity, part.Unit), d.menu(sess.UserID))
}

// parseMovementLine admite 2 a 4 segmentos separados por «|»:
// código | cantidad [| documento [| nota]].
func parseMovementLine(text string) (inventory.MovementInput, bool) {
	segments := strings.Split(text, "|")
	if len(segments) < 2 || len(segments) > 4 {
		return inventory.MovementInput{}, false
	}
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}
	code := segments[0]
	if code == "" {
		return inventory.MovementInput{}, false
	}
	amount, err := strconv.ParseInt(segments[1], 10, 64)
	if err != nil || amount <= 0 {
		return inventory.MovementInput{}, false
	}
	input := inventory.MovementInput{Code: code, Amount: amount}
	if len(segments) > 2 {
		input.DocumentRef = segments[2]
	}
	if len(segments) > 3 {
		input.Note = segments[3]
	}
	return input, true
}
