// Package appointments — жизненный цикл записи на встречу:
// pending → approved → Completed, либо pending → Completed. Назад переходов нет.
package appointments

import (
	"errors"
	"fmt"

	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

var ErrInvalidTransition = errors.New("invalid appointment status transition")

// CanApprove — кнопка "Approve" есть только у pending-записей, созданных не учителем.
func CanApprove(a models.Appointment) bool {
	return a.Status == models.AppointmentPending && a.CreatedBy != models.CreatedByTeacher
}

// CanComplete — завершить можно из любого статуса, кроме Completed.
func CanComplete(a models.Appointment) bool {
	return a.Status != models.AppointmentCompleted
}

// EffectivelyApproved — запись, созданная учителем, хранится как pending,
// но в интерфейсе ведёт себя как уже одобренная.
func EffectivelyApproved(a models.Appointment) bool {
	if a.Status == models.AppointmentApproved {
		return true
	}
	return a.Status == models.AppointmentPending && a.CreatedBy == models.CreatedByTeacher
}

// Next проверяет переход и возвращает набор допустимых исходных статусов
// (нужен для compare-and-set в хранилище).
func Next(a models.Appointment, to models.AppointmentStatus) ([]models.AppointmentStatus, error) {
	switch to {
	case models.AppointmentApproved:
		if !CanApprove(a) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
		}
		return []models.AppointmentStatus{models.AppointmentPending}, nil
	case models.AppointmentCompleted:
		if !CanComplete(a) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
		}
		return []models.AppointmentStatus{models.AppointmentPending, models.AppointmentApproved}, nil
	}
	return nil, fmt.Errorf("%w: unknown target %q", ErrInvalidTransition, to)
}

// VisibleToStudent — завершённые встречи ученику не показываем.
func VisibleToStudent(a models.Appointment) bool {
	return a.Status != models.AppointmentCompleted
}

// InTeacherQueue — очередь учителя "pending" = ещё не завершённые.
func InTeacherQueue(a models.Appointment) bool {
	return a.Status == models.AppointmentPending || a.Status == models.AppointmentApproved
}

// OpenStatuses — статусы очереди учителя.
func OpenStatuses() []models.AppointmentStatus {
	return []models.AppointmentStatus{models.AppointmentPending, models.AppointmentApproved}
}

type View string

const (
	ViewPending View = "pending"
	ViewAll     View = "all"
)

func ParseView(s string) (View, bool) {
	switch View(s) {
	case "", ViewPending:
		return ViewPending, true
	case ViewAll:
		return ViewAll, true
	}
	return "", false
}

func Filter(list []models.Appointment, keep func(models.Appointment) bool) []models.Appointment {
	out := make([]models.Appointment, 0, len(list))
	for _, a := range list {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// Actions — какие действия доступны над записью (аналог кнопок в таблице).
type Actions struct {
	Approve  bool `json:"approve"`
	Complete bool `json:"complete"`
	Delete   bool `json:"delete"`
}

func TeacherActions(a models.Appointment) Actions {
	return Actions{Approve: CanApprove(a), Complete: CanComplete(a), Delete: true}
}

func StudentActions(models.Appointment) Actions {
	return Actions{Delete: true}
}
