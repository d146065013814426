package bot

import (
	"fmt"

	"github.com/jhoicas/almacen-bot/internal/domain/entity"
)

// Etiquetas de los botones. Son a la vez texto del teclado y frase de
// entrada que el dispatcher reconoce.
const (
	btnIncoming = "📦 Entrada"
	btnOutgoing = "📤 Salida"
	btnStock    = "📊 Existencias"
	btnSearch   = "🔍 Buscar"
	btnAdd      = "➕ Añadir repuesto"
	btnEdit     = "✏️ Editar repuesto"
	btnDelete   = "🗑️ Eliminar repuesto"
	btnReport   = "📋 Informe"
	btnUsers    = "👑 Usuarios"
	btnBackups  = "💾 Copias"
	btnHelp     = "❓ Ayuda"
	btnCancel   = "❌ Cancelar"

	btnPrev = "⬅️ Anterior"
	btnNext = "➡️ Siguiente"
	btnMenu = "🏠 Menú"

	btnYes = "✅ Sí"
	btnNo  = "❌ No"

	btnUserList   = "📋 Lista"
	btnUserAdd    = "➕ Añadir usuario"
	btnUserRemove = "➖ Eliminar usuario"

	btnBackupNow    = "💾 Crear copia"
	btnBackupStatus = "📈 Estado de copias"
)

// Nombres de campo que ofrece el flujo de edición. Coinciden con las
// constantes PartField* del dominio a través de editableFields.
const (
	fieldLabelName     = "Nombre"
	fieldLabelCode     = "Código"
	fieldLabelQuantity = "Cantidad"
	fieldLabelUnit     = "Unidad"
	fieldLabelPrice    = "Precio"
	fieldLabelLocation = "Ubicación"
	fieldLabelMinStock = "Stock mínimo"
)

var editableFields = map[string]string{
	fieldLabelName:     entity.PartFieldName,
	fieldLabelCode:     entity.PartFieldCode,
	fieldLabelQuantity: entity.PartFieldQuantity,
	fieldLabelUnit:     entity.PartFieldUnit,
	fieldLabelPrice:    entity.PartFieldPrice,
	fieldLabelLocation: entity.PartFieldLocation,
	fieldLabelMinStock: entity.PartFieldMinStock,
}

// mainMenuKeyboard teclado principal. El administrador ve además las filas
// de usuarios y copias.
func mainMenuKeyboard(admin bool) [][]string {
	rows := [][]string{
		{btnIncoming, btnOutgoing},
		{btnStock, btnSearch},
		{btnAdd, btnEdit},
		{btnDelete, btnReport},
	}
	if admin {
		rows = append(rows, []string{btnUsers, btnBackups})
	}
	rows = append(rows, []string{btnHelp})
	return rows
}

func cancelKeyboard() [][]string {
	return [][]string{{btnCancel}}
}

func confirmKeyboard() [][]string {
	return [][]string{{btnYes, btnNo}, {btnCancel}}
}

func editFieldsKeyboard() [][]string {
	return [][]string{
		{fieldLabelName, fieldLabelCode},
		{fieldLabelQuantity, fieldLabelUnit},
		{fieldLabelPrice, fieldLabelLocation},
		{fieldLabelMinStock},
		{btnCancel},
	}
}

func usersMenuKeyboard() [][]string {
	return [][]string{
		{btnUserList},
		{btnUserAdd, btnUserRemove},
		{btnCancel},
	}
}

func backupMenuKeyboard() [][]string {
	return [][]string{
		{btnBackupNow, btnBackupStatus},
		{btnCancel},
	}
}

func stockNavKeyboard() [][]string {
	return [][]string{
		{btnPrev, btnNext},
		{btnMenu},
	}
}

// userPickLabel etiqueta de la lista de eliminación. removePicklistKeyboard
// y parseUserPick deben coincidir en el formato.
func userPickLabel(u *entity.BotUser) string {
	return fmt.Sprintf("➖ %s (ID: %d)", u.DisplayName, u.TelegramID)
}

func removePicklistKeyboard(users []*entity.BotUser) [][]string {
	rows := make([][]string, 0, len(users)+1)
	for _, u := range users {
		rows = append(rows, []string{userPickLabel(u)})
	}
	rows = append(rows, []string{btnCancel})
	return rows
}
