package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Sarika191/Teacher-student-appointment/internal/ctxutil"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

// ReminderStore — выборка кандидатов и пометка отправленных.
type ReminderStore interface {
	DueForReminder(ctx context.Context, from, to time.Time, batch int) ([]models.Appointment, error)
	MarkReminded(ctx context.Context, ids []string) error
	GetProfile(ctx context.Context, id string) (models.Profile, error)
	GetTeacher(ctx context.Context, id string) (models.TeacherEntry, error)
}

type ReminderSender interface {
	Reminder(ctx context.Context, a models.Appointment, studentChatID, teacherChatID *int64) bool
}

// Reminders — напоминание обоим участникам о подтверждённых встречах в ближайшее окно
// (включая назначенные учителем).
type Reminders struct {
	Store  ReminderStore
	Sender ReminderSender
	Log    *zap.SugaredLogger
	Window time.Duration
	Batch  int
	Now    func() time.Time
}

func (r *Reminders) Run(ctx context.Context) error {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	from := now()
	qctx, cancel := ctxutil.WithDBTimeout(ctx)
	due, err := r.Store.DueForReminder(qctx, from, from.Add(r.Window), r.Batch)
	cancel()
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	done := make([]string, 0, len(due))
	for _, a := range due {
		var studentChat, teacherChat *int64
		if p, err := r.Store.GetProfile(ctx, a.StudentID); err == nil {
			studentChat = p.TelegramChatID
		}
		if a.TeacherID != nil {
			if t, err := r.Store.GetTeacher(ctx, *a.TeacherID); err == nil {
				teacherChat = t.TelegramChatID
			}
		}
		if studentChat == nil && teacherChat == nil {
			// некого оповещать — помечаем, чтобы не выбирать повторно
			done = append(done, a.ID)
			continue
		}
		if r.Sender.Reminder(ctx, a, studentChat, teacherChat) {
			remindersSent.Inc()
			done = append(done, a.ID)
		}
	}

	mctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	if err := r.Store.MarkReminded(mctx, done); err != nil {
		return err
	}
	r.Log.Debugw("reminders processed", "due", len(due), "marked", len(done))
	return nil
}
