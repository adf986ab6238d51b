// Package notify — уведомления участников о записях через Telegram.
package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Sarika191/Teacher-student-appointment/internal/metrics"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
	"github.com/Sarika191/Teacher-student-appointment/internal/tg"
)

const whenLayout = "02.01.2006 15:04"

type Telegram struct {
	bot tg.Sender
	loc *time.Location
	log *zap.SugaredLogger
}

func NewTelegram(bot tg.Sender, loc *time.Location, log *zap.SugaredLogger) *Telegram {
	if loc == nil {
		loc = time.Local
	}
	return &Telegram{bot: bot, loc: loc, log: log}
}

// NewBot — клиент Bot API по токену.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

func (t *Telegram) send(chatID *int64, text string) bool {
	if chatID == nil || *chatID == 0 {
		// Telegram не привязан — молча пропускаем
		return false
	}
	if _, err := tg.Send(t.bot, tgbotapi.NewMessage(*chatID, text)); err != nil {
		metrics.HandlerErrors.Inc()
		t.log.Warnw("telegram send failed", "chat_id", *chatID, "err", err)
		return false
	}
	return true
}

func (t *Telegram) when(a models.Appointment) string {
	return a.AppointmentTime.In(t.loc).Format(whenLayout)
}

// Booked — учителю: новая заявка от ученика.
func (t *Telegram) Booked(_ context.Context, a models.Appointment, teacherChatID *int64) {
	text := fmt.Sprintf("New appointment request: %s (%s) on %s.", a.StudentName, a.StudentEmail, t.when(a))
	if a.Purpose != "" {
		text += "\nPurpose: " + a.Purpose
	}
	t.send(teacherChatID, text)
}

// StatusChanged — ученику: учитель одобрил или завершил встречу.
func (t *Telegram) StatusChanged(_ context.Context, a models.Appointment, studentChatID *int64) {
	var text string
	switch a.Status {
	case models.AppointmentApproved:
		text = fmt.Sprintf("Your appointment with %s on %s is approved.", a.Teacher, t.when(a))
	case models.AppointmentCompleted:
		text = fmt.Sprintf("Your appointment with %s on %s is marked as completed.", a.Teacher, t.when(a))
	default:
		return
	}
	t.send(studentChatID, text)
}

// Scheduled — ученику: учитель сам назначил встречу.
func (t *Telegram) Scheduled(_ context.Context, a models.Appointment, studentChatID *int64) {
	text := fmt.Sprintf("%s scheduled an appointment with you on %s.", a.Teacher, t.when(a))
	if a.Purpose != "" {
		text += "\nPurpose: " + a.Purpose
	}
	t.send(studentChatID, text)
}

// Reminder — обоим участникам; true, если дошло хотя бы одно сообщение.
func (t *Telegram) Reminder(_ context.Context, a models.Appointment, studentChatID, teacherChatID *int64) bool {
	when := t.when(a)
	s := t.send(studentChatID, fmt.Sprintf("Reminder: appointment with %s on %s.", a.Teacher, when))
	tc := t.send(teacherChatID, fmt.Sprintf("Reminder: appointment with %s on %s.", a.StudentName, when))
	return s || tc
}
