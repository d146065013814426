package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/almacen-bot/internal/domain"
)

// handleUsers submenú de gestión de usuarios, solo administrador (la puerta
// está en la tabla de entradas). Altas por id numérico, bajas eligiendo de
// la lista; el administrador nunca aparece como eliminable.
func (d *Dispatcher) handleUsers(ctx context.Context, sess *Session, text string) Reply {
	switch sess.Step {
	case StepUsersMenu:
		switch text {
		case btnUserList:
			return reply(formatUserList(d.access.List()), usersMenuKeyboard())
		case btnUserAdd:
			sess.Step = StepUsersAddID
			return reply("Envía el ID numérico de Telegram del nuevo usuario.", cancelKeyboard())
		case btnUserRemove:
			removable := d.access.Removable()
			if len(removable) == 0 {
				return reply("No hay usuarios que se puedan eliminar.", usersMenuKeyboard())
			}
			sess.Step = StepUsersRemovePick
			return reply("Elige el usuario a eliminar.", removePicklistKeyboard(removable))
		}
		return reply("Elige una opción del menú de usuarios.", usersMenuKeyboard())

	case StepUsersAddID:
		id, err := strconv.ParseInt(text, 10, 64)
		if err != nil || id <= 0 {
			return reply("Eso no es un ID válido. Envía solo el número.", cancelKeyboard())
		}
		name := fmt.Sprintf("usuario %d", id)
		if err := d.access.Add(ctx, id, name); err != nil {
			if errors.Is(err, domain.ErrUserExists) {
				sess.Step = StepUsersMenu
				return reply("Ese usuario ya tiene acceso.", usersMenuKeyboard())
			}
			return d.fail(sess, err)
		}
		sess.Step = StepUsersMenu
		return reply(fmt.Sprintf("✅ Acceso concedido al ID %d.", id), usersMenuKeyboard())

	case StepUsersRemovePick:
		id, ok := parseUserPick(text)
		if !ok {
			return reply("Elige un usuario de la lista.", removePicklistKeyboard(d.access.Removable()))
		}
		if err := d.access.Remove(ctx, id); err != nil {
			switch {
			case errors.Is(err, domain.ErrAdminImmutable):
				sess.Step = StepUsersMenu
				return reply("El administrador no se puede eliminar.", usersMenuKeyboard())
			case errors.Is(err, domain.ErrUserNotFound):
				sess.Step = StepUsersMenu
				return reply("Ese usuario ya no figura en la lista.", usersMenuKeyboard())
			}
			return d.fail(sess, err)
		}
		sess.Step = StepUsersMenu
		return reply(fmt.Sprintf("➖ Acceso retirado al ID %d.", id), usersMenuKeyboard())
	}
	return d.fail(sess, fmt.Errorf("paso inesperado %d en usuarios", sess.Step))
}

// parseUserPick extrae el id de una etiqueta «➖ Nombre (ID: 123)». Solo
// acepta la etiqueta exacta que genera userPickLabel.
func parseUserPick(text string) (int64, bool) {
	if !strings.HasPrefix(text, "➖ ") || !strings.HasSuffix(text, ")") {
		return 0, false
	}
	i := strings.LastIndex(text, "(ID: ")
	if i < 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(text[i+len("(ID: "):len(text)-1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
