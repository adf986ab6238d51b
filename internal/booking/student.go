package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sarika191/Teacher-student-appointment/internal/appointments"
	"github.com/Sarika191/Teacher-student-appointment/internal/db"
	"github.com/Sarika191/Teacher-student-appointment/internal/metrics"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

// TimeLayout — формат времени встречи из формы (datetime-local), в поясе школы.
const TimeLayout = "2006-01-02T15:04"

// AppointmentView — запись с доступными действиями для текущего пользователя.
type AppointmentView struct {
	models.Appointment
	Actions             appointments.Actions
	EffectivelyApproved bool
}

func views(list []models.Appointment, actions func(models.Appointment) appointments.Actions) []AppointmentView {
	out := make([]AppointmentView, 0, len(list))
	for _, a := range list {
		out = append(out, AppointmentView{
			Appointment:         a,
			Actions:             actions(a),
			EffectivelyApproved: appointments.EffectivelyApproved(a),
		})
	}
	return out
}

// parseWhen разбирает время встречи и отклоняет прошедшее.
func (s *Service) parseWhen(raw string) (time.Time, error) {
	at, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(raw), s.loc)
	if err != nil {
		return time.Time{}, userErr(KindValidation, MsgInvalidTime)
	}
	if at.Before(s.now().Truncate(time.Minute)) {
		return time.Time{}, userErr(KindValidation, MsgPastTime)
	}
	return at, nil
}

// Departments — кафедры из справочника учителей.
func (s *Service) Departments(ctx context.Context, sess Session) ([]string, error) {
	if sess.AccountID == "" {
		return nil, &UserError{Kind: KindAuth, Msg: MsgNotLoggedIn, Redirect: entryPage}
	}
	list, err := s.store.ListDepartments(ctx)
	if err != nil {
		return nil, s.internal(ctx, "departments.list", err, MsgSomethingWrong)
	}
	return list, nil
}

func (s *Service) TeachersInDepartment(ctx context.Context, sess Session, department string) ([]models.TeacherEntry, error) {
	if sess.AccountID == "" {
		return nil, &UserError{Kind: KindAuth, Msg: MsgNotLoggedIn, Redirect: entryPage}
	}
	list, err := s.store.ListTeachersByDepartment(ctx, strings.TrimSpace(department))
	if err != nil {
		return nil, s.internal(ctx, "departments.teachers", err, MsgSomethingWrong)
	}
	return list, nil
}

type BookInput struct {
	Department string `json:"department" validate:"required"`
	TeacherID  string `json:"teacherId" validate:"required"`
	Time       string `json:"appointmentTime" validate:"required"`
	Purpose    string `json:"purpose"`
}

// Book — запись ученика к учителю. Имя и email учителя берём из справочника по id.
func (s *Service) Book(ctx context.Context, sess Session, in BookInput) (models.Appointment, error) {
	if err := s.requireApprovedStudent(sess); err != nil {
		return models.Appointment{}, err
	}
	in.Department = strings.TrimSpace(in.Department)
	in.TeacherID = strings.TrimSpace(in.TeacherID)
	in.Purpose = strings.TrimSpace(in.Purpose)
	if err := s.validate.Struct(in); err != nil {
		return models.Appointment{}, userErr(KindValidation, MsgFillAllFields)
	}
	at, err := s.parseWhen(in.Time)
	if err != nil {
		return models.Appointment{}, err
	}
	if !validID(in.TeacherID) {
		return models.Appointment{}, userErr(KindNotFound, MsgTeacherNotFound)
	}

	unlock := s.limiter.Lock(sess.AccountID)
	defer unlock()

	teacher, err := s.store.GetTeacher(ctx, in.TeacherID)
	if errors.Is(err, db.ErrNotFound) {
		return models.Appointment{}, userErr(KindNotFound, MsgTeacherNotFound)
	}
	if err != nil {
		return models.Appointment{}, s.internal(ctx, "student.book.teacher", err, MsgBookFailed)
	}
	if teacher.Department != in.Department {
		return models.Appointment{}, userErr(KindValidation, MsgTeacherNotInDept)
	}

	a, err := s.store.InsertAppointment(ctx, models.Appointment{
		StudentID:       sess.AccountID,
		StudentName:     sess.Profile.Name,
		StudentEmail:    sess.Profile.Email,
		Department:      teacher.Department,
		TeacherID:       &teacher.ID,
		Teacher:         teacher.Name,
		TeacherEmail:    teacher.Email,
		AppointmentTime: at,
		Purpose:         in.Purpose,
		Status:          models.AppointmentPending,
		CreatedBy:       models.CreatedByStudent,
	})
	if err != nil {
		return models.Appointment{}, s.internal(ctx, "student.book", err, MsgBookFailed)
	}
	metrics.AppointmentTransitions.WithLabelValues(string(models.AppointmentPending)).Inc()
	s.audit(ctx, models.ActionAppointmentBooked, fmt.Sprintf("%s with %s at %s", a.StudentEmail, a.TeacherEmail, at.Format(TimeLayout)))
	s.notifier.Booked(ctx, a, teacher.TelegramChatID)
	return a, nil
}

// MyAppointments — записи ученика без завершённых.
func (s *Service) MyAppointments(ctx context.Context, sess Session) ([]AppointmentView, error) {
	if err := s.requireApprovedStudent(sess); err != nil {
		return nil, err
	}
	list, err := s.store.ListAppointmentsByStudent(ctx, sess.AccountID)
	if err != nil {
		return nil, s.internal(ctx, "student.list", err, MsgSomethingWrong)
	}
	return views(appointments.Filter(list, appointments.VisibleToStudent), appointments.StudentActions), nil
}

// CancelAppointment — ученик удаляет только свою запись, в любом статусе.
func (s *Service) CancelAppointment(ctx context.Context, sess Session, id string) error {
	if err := s.requireApprovedStudent(sess); err != nil {
		return err
	}
	if !validID(id) {
		return userErr(KindNotFound, MsgAppointmentNotFnd)
	}
	unlock := s.limiter.Lock(sess.AccountID)
	defer unlock()

	a, err := s.store.GetAppointment(ctx, id)
	if errors.Is(err, db.ErrNotFound) || (err == nil && a.StudentID != sess.AccountID) {
		return userErr(KindNotFound, MsgAppointmentNotFnd)
	}
	if err != nil {
		return s.internal(ctx, "student.cancel.get", err, MsgDeleteFailed)
	}
	if err := s.store.DeleteAppointment(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return userErr(KindNotFound, MsgAppointmentNotFnd)
		}
		return s.internal(ctx, "student.cancel", err, MsgDeleteFailed)
	}
	metrics.AppointmentTransitions.WithLabelValues("deleted").Inc()
	s.audit(ctx, models.ActionAppointmentDeleted, fmt.Sprintf("%s by student %s", id, sess.Profile.Email))
	return nil
}
