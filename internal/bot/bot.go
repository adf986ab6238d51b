// Package bot — Telegram-бот портала: привязывает чат к аккаунту, чтобы туда шли оповещения.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Sarika191/Teacher-student-appointment/internal/booking"
	"github.com/Sarika191/Teacher-student-appointment/internal/metrics"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
	"github.com/Sarika191/Teacher-student-appointment/internal/observability"
	"github.com/Sarika191/Teacher-student-appointment/internal/tg"
)

const (
	msgWelcome = "Hi! To receive appointment notifications here, open the portal, " +
		"press \"Link Telegram\" and send me the command it shows, e.g. /link AB12CD34."
	msgLinkUsage = "Usage: /link <code>. Get the code on the portal."
	msgLinked    = "Done! Notifications for %s (%s) will come to this chat."
)

// API — *tgbotapi.BotAPI или подмена в тестах.
type API interface {
	tg.Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Linker interface {
	LinkTelegram(ctx context.Context, code string, chatID int64) (models.Profile, error)
}

type Bot struct {
	api    API
	linker Linker
	log    *zap.SugaredLogger
}

func New(api API, linker Linker, log *zap.SugaredLogger) *Bot {
	return &Bot{api: api, linker: linker, log: log}
}

// Run — long polling до отмены контекста. Сообщения обрабатываются по одному.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			if upd.Message == nil || upd.Message.Chat == nil {
				continue
			}
			b.safeHandle(ctx, upd.Message)
		}
	}
}

func (b *Bot) safeHandle(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.HandlerErrors.Inc()
			observability.CaptureErr(fmt.Errorf("panic in bot handler: %v", rec))
			b.log.Errorw("bot handler panic", "chat_id", msg.Chat.ID, "panic", rec)
		}
	}()
	b.HandleMessage(ctx, msg)
}

func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	cmd, arg := command(msg.Text)
	switch cmd {
	case "/start":
		// t.me/<bot>?start=<code> приходит как "/start <code>"
		if arg != "" {
			b.link(ctx, chatID, arg)
			return
		}
		b.reply(chatID, msgWelcome)
	case "/link":
		if arg == "" {
			b.reply(chatID, msgLinkUsage)
			return
		}
		b.link(ctx, chatID, arg)
	default:
		b.reply(chatID, msgWelcome)
	}
}

func (b *Bot) link(ctx context.Context, chatID int64, code string) {
	p, err := b.linker.LinkTelegram(ctx, code, chatID)
	if err != nil {
		if ue, ok := booking.AsUserError(err); ok {
			b.reply(chatID, ue.Msg)
			return
		}
		b.reply(chatID, booking.MsgSomethingWrong)
		return
	}
	role := "no role"
	if p.Role != nil {
		role = string(*p.Role)
	}
	b.log.Infow("telegram chat linked", "chat_id", chatID, "account_id", p.ID)
	b.reply(chatID, fmt.Sprintf(msgLinked, p.Name, role))
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := tg.Send(b.api, tgbotapi.NewMessage(chatID, text)); err != nil {
		metrics.HandlerErrors.Inc()
		b.log.Warnw("bot reply failed", "chat_id", chatID, "err", err)
	}
}

// command — "/link@PortalBot ab12" → ("/link", "ab12").
func command(text string) (string, string) {
	f := strings.Fields(text)
	if len(f) == 0 || !strings.HasPrefix(f[0], "/") {
		return "", ""
	}
	cmd := strings.ToLower(f[0])
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	if len(f) > 1 {
		return cmd, f[1]
	}
	return cmd, ""
}
