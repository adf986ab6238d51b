// Package booking — сценарии портала записи: регистрация и вход, справочник учителей,
// подтверждение учеников, запись на встречи и её жизненный цикл.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sarika191/Teacher-student-appointment/internal/ctxutil"
	"github.com/Sarika191/Teacher-student-appointment/internal/identity"
	"github.com/Sarika191/Teacher-student-appointment/internal/metrics"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
	"github.com/Sarika191/Teacher-student-appointment/internal/observability"
)

// Store — справочники и журнал встреч (Postgres или память).
type Store interface {
	GetProfile(ctx context.Context, id string) (models.Profile, error)
	CreateProfile(ctx context.Context, p models.Profile) error
	ListStudents(ctx context.Context) ([]models.Profile, error)
	ListApprovedStudents(ctx context.Context) ([]models.Profile, error)
	ApproveStudent(ctx context.Context, id string, at time.Time) (models.Profile, error)
	GetApprovedStudent(ctx context.Context, id string) (models.ApprovedStudent, error)
	SetTelegramChat(ctx context.Context, accountID string, chatID int64) (models.Profile, error)

	CreateTeacherWithProfile(ctx context.Context, t models.TeacherEntry, p *models.Profile) (models.TeacherEntry, error)
	ListTeachers(ctx context.Context) ([]models.TeacherEntry, error)
	GetTeacher(ctx context.Context, id string) (models.TeacherEntry, error)
	GetTeacherByAccount(ctx context.Context, accountID string) (models.TeacherEntry, error)
	ListDepartments(ctx context.Context) ([]string, error)
	ListTeachersByDepartment(ctx context.Context, department string) ([]models.TeacherEntry, error)
	UpdateTeacher(ctx context.Context, id string, patch models.TeacherPatch) (models.TeacherEntry, error)
	DeleteTeacher(ctx context.Context, id string) (models.TeacherEntry, error)

	InsertAppointment(ctx context.Context, a models.Appointment) (models.Appointment, error)
	GetAppointment(ctx context.Context, id string) (models.Appointment, error)
	ListAppointmentsByStudent(ctx context.Context, studentID string) ([]models.Appointment, error)
	ListAppointmentsByTeacher(ctx context.Context, teacherEmail string, statuses []models.AppointmentStatus) ([]models.Appointment, error)
	SetAppointmentStatus(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus) (models.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error

	LogAction(ctx context.Context, action models.Action, detail string) error
	ListActions(ctx context.Context, limit int) ([]models.ActionLog, error)
}

// Notifier — оповещения участников; ошибки доставки наружу не возвращаются.
type Notifier interface {
	Booked(ctx context.Context, a models.Appointment, teacherChatID *int64)
	StatusChanged(ctx context.Context, a models.Appointment, studentChatID *int64)
	Scheduled(ctx context.Context, a models.Appointment, studentChatID *int64)
}

type nopNotifier struct{}

func (nopNotifier) Booked(context.Context, models.Appointment, *int64)        {}
func (nopNotifier) StatusChanged(context.Context, models.Appointment, *int64) {}
func (nopNotifier) Scheduled(context.Context, models.Appointment, *int64)     {}

// Session — явный контекст вызывающего; передаётся в каждый сценарий.
type Session struct {
	AccountID string
	Profile   models.Profile
	Token     string
}

func (s Session) Role() models.Role {
	if s.Profile.Role == nil {
		return ""
	}
	return *s.Profile.Role
}

type Deps struct {
	Store     Store
	Identity  identity.Gateway
	Sessions  *identity.Sessions
	LinkCodes identity.LinkCodes
	Notifier  Notifier
	Validate  *validator.Validate
	Log       *zap.SugaredLogger
	Location  *time.Location

	AllowAdminSignup bool
	AdminEmails      []string
	Now              func() time.Time
}

type Service struct {
	store    Store
	identity identity.Gateway
	sessions *identity.Sessions
	links    identity.LinkCodes
	notifier Notifier
	validate *validator.Validate
	log      *zap.SugaredLogger
	loc      *time.Location
	limiter  *ActorLimiter

	allowAdminSignup bool
	adminEmails      map[string]bool
	now              func() time.Time
}

func New(d Deps) *Service {
	s := &Service{
		store:            d.Store,
		identity:         d.Identity,
		sessions:         d.Sessions,
		links:            d.LinkCodes,
		notifier:         d.Notifier,
		validate:         d.Validate,
		log:              d.Log,
		loc:              d.Location,
		limiter:          NewActorLimiter(),
		allowAdminSignup: d.AllowAdminSignup,
		adminEmails:      make(map[string]bool, len(d.AdminEmails)),
		now:              d.Now,
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.links == nil {
		s.links = identity.NewMemoryLinkCodes()
	}
	if s.validate == nil {
		s.validate = validator.New()
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	for _, e := range d.AdminEmails {
		s.adminEmails[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return s
}

func (s *Service) Location() *time.Location { return s.loc }

// internal — сбой хранилища/провайдера: лог, метрика, Sentry; пользователю общий текст.
func (s *Service) internal(ctx context.Context, op string, err error, msg string) error {
	metrics.HandlerErrors.Inc()
	ctx = ctxutil.WithOp(ctx, op)
	fields := []any{"op", op, "err", err}
	if id, ok := ctxutil.RequestID(ctx); ok {
		fields = append(fields, "request_id", id)
	}
	s.log.Errorw("operation failed", fields...)
	observability.CaptureErrCtx(ctx, fmt.Errorf("%s: %w", op, err))
	return &UserError{Kind: KindInternal, Msg: msg, Err: err}
}

// audit — запись в журнал действий; сбой журнала операцию не ломает.
func (s *Service) audit(ctx context.Context, action models.Action, detail string) {
	if err := s.store.LogAction(ctx, action, detail); err != nil {
		metrics.HandlerErrors.Inc()
		s.log.Warnw("action log write failed", "action", action, "err", err)
	}
}

func (s *Service) require(sess Session, role models.Role) error {
	if sess.AccountID == "" {
		return &UserError{Kind: KindAuth, Msg: MsgNotLoggedIn, Redirect: entryPage}
	}
	if !sess.Profile.HasRole(role) {
		return &UserError{Kind: KindForbidden, Msg: MsgWrongRole, Redirect: entryPage}
	}
	return nil
}

// requireApprovedStudent — кабинет ученика доступен только после подтверждения.
func (s *Service) requireApprovedStudent(sess Session) error {
	if err := s.require(sess, models.Student); err != nil {
		return err
	}
	if !sess.Profile.IsApprovedStudent() {
		return &UserError{Kind: KindForbidden, Msg: MsgNotApproved, Redirect: entryPage}
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
