package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Sarika191/Teacher-student-appointment/internal/appointments"
	"github.com/Sarika191/Teacher-student-appointment/internal/db"
	"github.com/Sarika191/Teacher-student-appointment/internal/export"
	"github.com/Sarika191/Teacher-student-appointment/internal/metrics"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

// teacherIdentity — как учитель выглядит в журнале: имя, email, кафедра и запись справочника.
type teacherIdentity struct {
	Name       string
	Email      string
	Department string
	Entry      *models.TeacherEntry
}

func (s *Service) teacherOf(ctx context.Context, sess Session) (teacherIdentity, error) {
	if err := s.require(sess, models.Teacher); err != nil {
		return teacherIdentity{}, err
	}
	ti := teacherIdentity{Name: sess.Profile.Name, Email: sess.Profile.Email}
	if sess.Profile.Department != nil {
		ti.Department = *sess.Profile.Department
	}
	entry, err := s.store.GetTeacherByAccount(ctx, sess.AccountID)
	switch {
	case err == nil:
		ti.Entry = &entry
		if ti.Department == "" {
			ti.Department = entry.Department
		}
	case !errors.Is(err, db.ErrNotFound):
		return teacherIdentity{}, s.internal(ctx, "teacher.entry", err, MsgSomethingWrong)
	}
	if ti.Email == "" {
		return teacherIdentity{}, &UserError{Kind: KindForbidden, Msg: MsgTeacherProfileNotFnd, Redirect: entryPage}
	}
	return ti, nil
}

// ownAppointment — запись из очереди учителя (сопоставление по email); чужие = не найдено.
func (s *Service) ownAppointment(ctx context.Context, ti teacherIdentity, id, failMsg string) (models.Appointment, error) {
	if !validID(id) {
		return models.Appointment{}, userErr(KindNotFound, MsgAppointmentNotFnd)
	}
	a, err := s.store.GetAppointment(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return models.Appointment{}, userErr(KindNotFound, MsgAppointmentNotFnd)
	}
	if err != nil {
		return models.Appointment{}, s.internal(ctx, "teacher.appointment.get", err, failMsg)
	}
	if !strings.EqualFold(a.TeacherEmail, ti.Email) {
		return models.Appointment{}, userErr(KindNotFound, MsgAppointmentNotFnd)
	}
	return a, nil
}

// ApprovedStudents — список для планирования встречи учителем.
func (s *Service) ApprovedStudents(ctx context.Context, sess Session) ([]models.Profile, error) {
	if err := s.require(sess, models.Teacher); err != nil {
		return nil, err
	}
	list, err := s.store.ListApprovedStudents(ctx)
	if err != nil {
		return nil, s.internal(ctx, "teacher.students", err, MsgSomethingWrong)
	}
	return list, nil
}

type ScheduleInput struct {
	StudentID string `json:"studentId" validate:"required"`
	Time      string `json:"appointmentTime" validate:"required"`
	Purpose   string `json:"purpose"`
}

// Schedule — встреча, назначенная учителем. Хранится как pending с createdBy=teacher,
// кнопки Approve у неё нет.
func (s *Service) Schedule(ctx context.Context, sess Session, in ScheduleInput) (models.Appointment, error) {
	ti, err := s.teacherOf(ctx, sess)
	if err != nil {
		return models.Appointment{}, err
	}
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Purpose = strings.TrimSpace(in.Purpose)
	if err := s.validate.Struct(in); err != nil {
		return models.Appointment{}, userErr(KindValidation, MsgFillAllFields)
	}
	at, err := s.parseWhen(in.Time)
	if err != nil {
		return models.Appointment{}, err
	}

	unlock := s.limiter.Lock(sess.AccountID)
	defer unlock()

	student, err := s.store.GetProfile(ctx, in.StudentID)
	if errors.Is(err, db.ErrNotFound) || (err == nil && !student.IsApprovedStudent()) {
		return models.Appointment{}, userErr(KindNotFound, MsgStudentNotFound)
	}
	if err != nil {
		return models.Appointment{}, s.internal(ctx, "teacher.schedule.student", err, MsgSomethingWrong)
	}

	a := models.Appointment{
		StudentID:       student.ID,
		StudentName:     student.Name,
		StudentEmail:    student.Email,
		Department:      ti.Department,
		Teacher:         ti.Name,
		TeacherEmail:    ti.Email,
		AppointmentTime: at,
		Purpose:         in.Purpose,
		Status:          models.AppointmentPending,
		CreatedBy:       models.CreatedByTeacher,
	}
	if ti.Entry != nil {
		a.TeacherID = &ti.Entry.ID
	}
	a, err = s.store.InsertAppointment(ctx, a)
	if err != nil {
		return models.Appointment{}, s.internal(ctx, "teacher.schedule", err, MsgSomethingWrong)
	}
	metrics.AppointmentTransitions.WithLabelValues(string(models.AppointmentPending)).Inc()
	s.audit(ctx, models.ActionAppointmentBooked, fmt.Sprintf("%s with %s at %s (by teacher)", a.StudentEmail, a.TeacherEmail, at.Format(TimeLayout)))
	s.notifier.Scheduled(ctx, a, student.TelegramChatID)
	return a, nil
}

// TeacherAppointments — очередь учителя: pending = ещё не завершённые, all = все.
func (s *Service) TeacherAppointments(ctx context.Context, sess Session, view appointments.View) ([]AppointmentView, error) {
	ti, err := s.teacherOf(ctx, sess)
	if err != nil {
		return nil, err
	}
	var statuses []models.AppointmentStatus
	keep := func(models.Appointment) bool { return true }
	if view == appointments.ViewPending {
		statuses = appointments.OpenStatuses()
		keep = appointments.InTeacherQueue
	}
	list, err := s.store.ListAppointmentsByTeacher(ctx, ti.Email, statuses)
	if err != nil {
		return nil, s.internal(ctx, "teacher.list", err, MsgSomethingWrong)
	}
	return views(appointments.Filter(list, keep), appointments.TeacherActions), nil
}

func (s *Service) Approve(ctx context.Context, sess Session, id string) (models.Appointment, error) {
	return s.transition(ctx, sess, id, models.AppointmentApproved)
}

func (s *Service) Complete(ctx context.Context, sess Session, id string) (models.Appointment, error) {
	return s.transition(ctx, sess, id, models.AppointmentCompleted)
}

// transition — проверка по жизненному циклу и compare-and-set в хранилище:
// повторный клик увидит новый статус и получит отказ.
func (s *Service) transition(ctx context.Context, sess Session, id string, to models.AppointmentStatus) (models.Appointment, error) {
	ti, err := s.teacherOf(ctx, sess)
	if err != nil {
		return models.Appointment{}, err
	}
	unlock := s.limiter.Lock(sess.AccountID)
	defer unlock()

	a, err := s.ownAppointment(ctx, ti, id, MsgUpdateApptFailed)
	if err != nil {
		return models.Appointment{}, err
	}
	from, err := appointments.Next(a, to)
	if err != nil {
		return models.Appointment{}, &UserError{Kind: KindConflict, Msg: MsgInvalidTransition, Err: err}
	}
	updated, err := s.store.SetAppointmentStatus(ctx, a.ID, from, to)
	if errors.Is(err, db.ErrConflict) {
		return models.Appointment{}, &UserError{Kind: KindConflict, Msg: MsgInvalidTransition, Err: appointments.ErrInvalidTransition}
	}
	if err != nil {
		return models.Appointment{}, s.internal(ctx, "teacher.transition", err, MsgUpdateApptFailed)
	}

	metrics.AppointmentTransitions.WithLabelValues(string(to)).Inc()
	s.audit(ctx, models.ActionAppointmentStatus, fmt.Sprintf("%s: %s -> %s by %s", a.ID, a.Status, to, ti.Email))
	if student, err := s.store.GetProfile(ctx, updated.StudentID); err == nil {
		s.notifier.StatusChanged(ctx, updated, student.TelegramChatID)
	}
	return updated, nil
}

// DeleteTeacherAppointment — учитель удаляет любую запись своей очереди.
func (s *Service) DeleteTeacherAppointment(ctx context.Context, sess Session, id string) error {
	ti, err := s.teacherOf(ctx, sess)
	if err != nil {
		return err
	}
	unlock := s.limiter.Lock(sess.AccountID)
	defer unlock()

	a, err := s.ownAppointment(ctx, ti, id, MsgDeleteApptFailed)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAppointment(ctx, a.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return userErr(KindNotFound, MsgAppointmentNotFnd)
		}
		return s.internal(ctx, "teacher.delete", err, MsgDeleteApptFailed)
	}
	metrics.AppointmentTransitions.WithLabelValues("deleted").Inc()
	s.audit(ctx, models.ActionAppointmentDeleted, fmt.Sprintf("%s by teacher %s", a.ID, ti.Email))
	return nil
}

// ExportAppointments — все записи учителя в xlsx; возвращает имя файла.
func (s *Service) ExportAppointments(ctx context.Context, sess Session, w io.Writer) (string, error) {
	ti, err := s.teacherOf(ctx, sess)
	if err != nil {
		return "", err
	}
	list, err := s.store.ListAppointmentsByTeacher(ctx, ti.Email, nil)
	if err != nil {
		return "", s.internal(ctx, "teacher.export.list", err, MsgExportFailed)
	}
	now := s.now()
	if err := export.WriteAppointments(w, ti.Name, list, s.loc, now); err != nil {
		return "", s.internal(ctx, "teacher.export.write", err, MsgExportFailed)
	}
	return export.AppointmentsFilename(ti.Name, now.In(s.loc)), nil
}
