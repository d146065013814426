package entity

import "time"

// Roles válidos para BotUser.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// BotUser es una identidad de Telegram autorizada a usar el bot. El rol de
// administrador se deriva de la identidad configurada al arranque; la fila
// en bot_users es contabilidad, no la fuente de verdad del permiso.
type BotUser struct {
	TelegramID  int64
	DisplayName string
	Role        string
	CreatedAt   time.Time
}
