// Package inmem — хранилище в памяти с тем же контрактом, что и db.Store.
// Используется в тестах сервисов и HTTP-слоя.
package inmem

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sarika191/Teacher-student-appointment/internal/appointments"
	"github.com/Sarika191/Teacher-student-appointment/internal/db"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

type Store struct {
	mu sync.RWMutex

	accounts     map[string]models.Account
	profiles     map[string]models.Profile
	approved     map[string]models.ApprovedStudent
	teachers     map[string]models.TeacherEntry
	appointments map[string]models.Appointment
	actions      []models.ActionLog

	fail map[string]error
	now  func() time.Time
}

func New() *Store {
	return &Store{
		accounts:     map[string]models.Account{},
		profiles:     map[string]models.Profile{},
		approved:     map[string]models.ApprovedStudent{},
		teachers:     map[string]models.TeacherEntry{},
		appointments: map[string]models.Appointment{},
		fail:         map[string]error{},
		now:          time.Now,
	}
}

// FailOn — следующая операция op вернёт err (один раз).
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

func (s *Store) injected(op string) error {
	if err, ok := s.fail[op]; ok {
		delete(s.fail, op)
		return err
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

// ── accounts ──────────────────────────────────────────────

func (s *Store) CreateAccount(_ context.Context, email, passwordHash string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("CreateAccount"); err != nil {
		return models.Account{}, err
	}
	email = strings.ToLower(email)
	for _, a := range s.accounts {
		if a.Email == email {
			return models.Account{}, db.ErrDuplicate
		}
	}
	acc := models.Account{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash, CreatedAt: s.now()}
	s.accounts[acc.ID] = acc
	return acc, nil
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return models.Account{}, db.ErrNotFound
}

func (s *Store) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}

// AccountCount — для проверок компенсации в тестах.
func (s *Store) AccountCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// ── profiles ──────────────────────────────────────────────

func (s *Store) GetProfile(_ context.Context, id string) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("GetProfile"); err != nil {
		return models.Profile{}, err
	}
	p, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, db.ErrNotFound
	}
	return p, nil
}

func (s *Store) putProfile(p models.Profile) error {
	if _, ok := s.profiles[p.ID]; ok {
		return db.ErrDuplicate
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.profiles[p.ID] = p
	return nil
}

func (s *Store) SetTelegramChat(_ context.Context, accountID string, chatID int64) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("SetTelegramChat"); err != nil {
		return models.Profile{}, err
	}
	p, ok := s.profiles[accountID]
	if !ok {
		return models.Profile{}, db.ErrNotFound
	}
	p.TelegramChatID = &chatID
	s.profiles[accountID] = p
	for id, t := range s.teachers {
		if t.AccountID != nil && *t.AccountID == accountID {
			c := chatID
			t.TelegramChatID = &c
			s.teachers[id] = t
		}
	}
	return p, nil
}

func (s *Store) CreateProfile(_ context.Context, p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("CreateProfile"); err != nil {
		return err
	}
	return s.putProfile(p)
}

func (s *Store) listProfiles(keep func(models.Profile) bool) []models.Profile {
	out := []models.Profile{}
	for _, p := range s.profiles {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) ListStudents(context.Context) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listProfiles(func(p models.Profile) bool { return p.HasRole(models.Student) }), nil
}

func (s *Store) ListApprovedStudents(context.Context) ([]models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listProfiles(models.Profile.IsApprovedStudent), nil
}

func (s *Store) ApproveStudent(_ context.Context, id string, at time.Time) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("ApproveStudent"); err != nil {
		return models.Profile{}, err
	}
	p, ok := s.profiles[id]
	if !ok || !p.HasRole(models.Student) {
		return models.Profile{}, db.ErrNotFound
	}
	if p.Status == nil || *p.Status != models.StudentPending {
		return models.Profile{}, db.ErrConflict
	}
	st := models.StudentApproved
	p.Status = &st
	s.profiles[id] = p
	s.approved[id] = models.ApprovedStudent{
		AccountID: p.ID, Name: p.Name, Email: p.Email,
		Role: models.Student, Status: models.StudentApproved, ApprovedAt: at,
	}
	return p, nil
}

func (s *Store) GetApprovedStudent(_ context.Context, id string) (models.ApprovedStudent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.approved[id]
	if !ok {
		return models.ApprovedStudent{}, db.ErrNotFound
	}
	return a, nil
}

// ── teachers ──────────────────────────────────────────────

func (s *Store) CreateTeacherWithProfile(_ context.Context, t models.TeacherEntry, p *models.Profile) (models.TeacherEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("CreateTeacherWithProfile"); err != nil {
		return models.TeacherEntry{}, err
	}
	if p != nil {
		if err := s.putProfile(*p); err != nil {
			return models.TeacherEntry{}, err
		}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = s.now()
	s.teachers[t.ID] = t
	return t, nil
}

func (s *Store) listTeachers(keep func(models.TeacherEntry) bool) []models.TeacherEntry {
	out := []models.TeacherEntry{}
	for _, t := range s.teachers {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) ListTeachers(context.Context) ([]models.TeacherEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listTeachers(func(models.TeacherEntry) bool { return true }), nil
}

func (s *Store) GetTeacher(_ context.Context, id string) (models.TeacherEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teachers[id]
	if !ok {
		return models.TeacherEntry{}, db.ErrNotFound
	}
	return t, nil
}

func (s *Store) GetTeacherByAccount(_ context.Context, accountID string) (models.TeacherEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.listTeachers(func(t models.TeacherEntry) bool { return t.AccountID != nil && *t.AccountID == accountID })
	if len(list) == 0 {
		return models.TeacherEntry{}, db.ErrNotFound
	}
	return list[0], nil
}

func (s *Store) ListDepartments(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	out := []string{}
	for _, t := range s.teachers {
		if t.Department != "" && !seen[t.Department] {
			seen[t.Department] = true
			out = append(out, t.Department)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) ListTeachersByDepartment(_ context.Context, department string) ([]models.TeacherEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listTeachers(func(t models.TeacherEntry) bool { return t.Department == department }), nil
}

func (s *Store) UpdateTeacher(_ context.Context, id string, patch models.TeacherPatch) (models.TeacherEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("UpdateTeacher"); err != nil {
		return models.TeacherEntry{}, err
	}
	t, ok := s.teachers[id]
	if !ok {
		return models.TeacherEntry{}, db.ErrNotFound
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Department != nil {
		t.Department = *patch.Department
	}
	if patch.Subject != nil {
		t.Subject = *patch.Subject
	}
	if patch.TelegramChatID != nil {
		t.TelegramChatID = patch.TelegramChatID
	}
	s.teachers[id] = t

	if t.AccountID != nil {
		if p, ok := s.profiles[*t.AccountID]; ok {
			if patch.Name != nil {
				p.Name = *patch.Name
			}
			if patch.Department != nil {
				p.Department = patch.Department
			}
			if patch.Subject != nil {
				p.Subject = patch.Subject
			}
			if patch.TelegramChatID != nil {
				p.TelegramChatID = patch.TelegramChatID
			}
			s.profiles[p.ID] = p
		}
	}
	return t, nil
}

func (s *Store) DeleteTeacher(_ context.Context, id string) (models.TeacherEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teachers[id]
	if !ok {
		return models.TeacherEntry{}, db.ErrNotFound
	}
	delete(s.teachers, id)
	if t.AccountID != nil {
		delete(s.profiles, *t.AccountID)
	}
	return t, nil
}

// ── appointments ──────────────────────────────────────────

func (s *Store) InsertAppointment(_ context.Context, a models.Appointment) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("InsertAppointment"); err != nil {
		return models.Appointment{}, err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = models.AppointmentPending
	}
	if a.CreatedBy == "" {
		a.CreatedBy = models.CreatedByStudent
	}
	a.CreatedAt = s.now()
	s.appointments[a.ID] = a
	return a, nil
}

func (s *Store) GetAppointment(_ context.Context, id string) (models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appointments[id]
	if !ok {
		return models.Appointment{}, db.ErrNotFound
	}
	return a, nil
}

func (s *Store) listAppointments(keep func(models.Appointment) bool) []models.Appointment {
	out := []models.Appointment{}
	for _, a := range s.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppointmentTime.Equal(out[j].AppointmentTime) {
			return out[i].AppointmentTime.Before(out[j].AppointmentTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) ListAppointmentsByStudent(_ context.Context, studentID string) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAppointments(func(a models.Appointment) bool { return a.StudentID == studentID }), nil
}

func (s *Store) ListAppointmentsByTeacher(_ context.Context, teacherEmail string, statuses []models.AppointmentStatus) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAppointments(func(a models.Appointment) bool {
		return strings.EqualFold(a.TeacherEmail, teacherEmail) && statusIn(a.Status, statuses)
	}), nil
}

func statusIn(st models.AppointmentStatus, set []models.AppointmentStatus) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == st {
			return true
		}
	}
	return false
}

func (s *Store) SetAppointmentStatus(_ context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("SetAppointmentStatus"); err != nil {
		return models.Appointment{}, err
	}
	a, ok := s.appointments[id]
	if !ok || !statusIn(a.Status, from) {
		return models.Appointment{}, db.ErrConflict
	}
	a.Status = to
	s.appointments[id] = a
	return a, nil
}

func (s *Store) DeleteAppointment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injected("DeleteAppointment"); err != nil {
		return err
	}
	if _, ok := s.appointments[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.appointments, id)
	return nil
}

func (s *Store) DueForReminder(_ context.Context, from, to time.Time, batch int) ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.listAppointments(func(a models.Appointment) bool {
		return appointments.EffectivelyApproved(a) && !a.ReminderSent &&
			!a.AppointmentTime.Before(from) && a.AppointmentTime.Before(to)
	})
	if batch > 0 && len(out) > batch {
		out = out[:batch]
	}
	return out, nil
}

func (s *Store) MarkReminded(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if a, ok := s.appointments[id]; ok {
			a.ReminderSent = true
			s.appointments[id] = a
		}
	}
	return nil
}

// ── action log ────────────────────────────────────────────

func (s *Store) LogAction(_ context.Context, action models.Action, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, models.ActionLog{
		ID: int64(len(s.actions) + 1), Action: action, Detail: detail, CreatedAt: s.now(),
	})
	return nil
}

func (s *Store) ListActions(_ context.Context, limit int) ([]models.ActionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	out := []models.ActionLog{}
	for i := len(s.actions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.actions[i])
	}
	return out, nil
}
