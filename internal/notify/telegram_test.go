package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

type fakeBot struct {
	mu   sync.Mutex
	sent map[int64][]string
	fail bool
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return tgbotapi.Message{}, errors.New("Bad Request: chat not found")
	}
	msg := c.(tgbotapi.MessageConfig)
	if f.sent == nil {
		f.sent = map[int64][]string{}
	}
	f.sent[msg.ChatID] = append(f.sent[msg.ChatID], msg.Text)
	return tgbotapi.Message{}, nil
}

func chat(id int64) *int64 { return &id }

func sample(status models.AppointmentStatus) models.Appointment {
	return models.Appointment{
		StudentName: "Sam", StudentEmail: "sam@x.com", Teacher: "Jane Doe", Purpose: "Help",
		AppointmentTime: time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC), Status: status,
	}
}

func TestTelegram_Booked(t *testing.T) {
	bot := &fakeBot{}
	n := NewTelegram(bot, time.FixedZone("MSK", 3*3600), zap.NewNop().Sugar())

	n.Booked(context.Background(), sample(models.AppointmentPending), chat(42))
	got := bot.sent[42]
	if len(got) != 1 || !strings.Contains(got[0], "01.06.2025 10:00") || !strings.Contains(got[0], "Purpose: Help") {
		t.Fatalf("sent = %v", got)
	}

	// без chat id ничего не отправляем
	n.Booked(context.Background(), sample(models.AppointmentPending), nil)
	if len(bot.sent) != 1 {
		t.Fatalf("unexpected sends: %v", bot.sent)
	}
}

func TestTelegram_Scheduled(t *testing.T) {
	bot := &fakeBot{}
	n := NewTelegram(bot, time.UTC, zap.NewNop().Sugar())

	n.Scheduled(context.Background(), sample(models.AppointmentPending), chat(9))
	n.Scheduled(context.Background(), sample(models.AppointmentPending), nil)

	got := bot.sent[9]
	if len(got) != 1 || !strings.HasPrefix(got[0], "Jane Doe scheduled an appointment") || !strings.Contains(got[0], "Purpose: Help") {
		t.Fatalf("sent = %v", got)
	}
}

func TestTelegram_StatusChanged(t *testing.T) {
	bot := &fakeBot{}
	n := NewTelegram(bot, time.UTC, zap.NewNop().Sugar())

	n.StatusChanged(context.Background(), sample(models.AppointmentApproved), chat(7))
	n.StatusChanged(context.Background(), sample(models.AppointmentCompleted), chat(7))
	n.StatusChanged(context.Background(), sample(models.AppointmentPending), chat(7))

	got := bot.sent[7]
	if len(got) != 2 || !strings.Contains(got[0], "approved") || !strings.Contains(got[1], "completed") {
		t.Fatalf("sent = %v", got)
	}
}

func TestTelegram_Reminder(t *testing.T) {
	bot := &fakeBot{}
	n := NewTelegram(bot, time.UTC, zap.NewNop().Sugar())
	if !n.Reminder(context.Background(), sample(models.AppointmentApproved), chat(1), nil) {
		t.Fatal("expected delivery to the student")
	}
	if n.Reminder(context.Background(), sample(models.AppointmentApproved), nil, nil) {
		t.Fatal("nobody to notify")
	}

	failing := NewTelegram(&fakeBot{fail: true}, time.UTC, zap.NewNop().Sugar())
	if failing.Reminder(context.Background(), sample(models.AppointmentApproved), chat(1), chat(2)) {
		t.Fatal("failed sends must not count as delivered")
	}
}
