// Package telegram conecta el motor de diálogo con la API de Telegram por
// long polling. Cada actualización se atiende en su propia goroutine; la
// exclusión por usuario la garantiza el dispatcher.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jhoicas/almacen-bot/internal/bot"
	"github.com/jhoicas/almacen-bot/pkg/logger"
)

// Handler procesa un mensaje de texto y devuelve la respuesta.
type Handler interface {
	Handle(ctx context.Context, userID int64, displayName, text string) bot.Reply
}

// Transport bot de Telegram por long polling.
type Transport struct {
	api     *tgbotapi.BotAPI
	handler Handler
	log     *logger.Logger
}

// New autentica contra la API de Telegram.
func New(token string, handler Handler, log *logger.Logger) (*Transport, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("autenticar bot de Telegram: %w", err)
	}
	l := log.WithComponent("telegram")
	l.Info().Str("username", api.Self.UserName).Msg("bot autenticado")
	return &Transport{api: api, handler: handler, log: l}, nil
}

// Run consume actualizaciones hasta que el contexto se cancele.
func (t *Transport) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			go t.process(ctx, update.Message)
		}
	}
}

func (t *Transport) process(ctx context.Context, msg *tgbotapi.Message) {
	reply := t.handler.Handle(ctx, msg.From.ID, displayName(msg.From), msg.Text)
	out := tgbotapi.NewMessage(msg.Chat.ID, reply.Text)
	if kb := renderKeyboard(reply.Keyboard); kb != nil {
		out.ReplyMarkup = kb
	}
	if _, err := t.api.Send(out); err != nil {
		t.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("no se pudo enviar la respuesta")
	}
}

func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}

func renderKeyboard(rows [][]string) any {
	if len(rows) == 0 {
		return nil
	}
	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		kbRows = append(kbRows, buttons)
	}
	kb := tgbotapi.NewReplyKeyboard(kbRows...)
	kb.ResizeKeyboard = true
	return kb
}
