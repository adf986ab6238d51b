package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

const appointmentCols = `id, student_id, student_name, student_email, department, teacher_id, teacher, teacher_email,
	appointment_time, purpose, status, created_by, created_at, reminder_sent`

func scanAppointment(row scanner) (models.Appointment, error) {
	var (
		a                 models.Appointment
		teacherID         sql.NullString
		status, createdBy string
	)
	err := row.Scan(&a.ID, &a.StudentID, &a.StudentName, &a.StudentEmail, &a.Department, &teacherID, &a.Teacher, &a.TeacherEmail,
		&a.AppointmentTime, &a.Purpose, &status, &createdBy, &a.CreatedAt, &a.ReminderSent)
	if err != nil {
		return models.Appointment{}, err
	}
	a.TeacherID = strPtr(teacherID)
	a.Status = models.AppointmentStatus(status)
	a.CreatedBy = models.CreatedBy(createdBy)
	return a, nil
}

func scanAppointments(rows *sql.Rows) ([]models.Appointment, error) {
	defer func() { _ = rows.Close() }()
	out := []models.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func statusStrings(ss []models.AppointmentStatus) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, string(s))
	}
	return out
}

// InsertAppointment — id назначаем здесь, created_at проставляет БД.
func (s *Store) InsertAppointment(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = models.AppointmentPending
	}
	if a.CreatedBy == "" {
		a.CreatedBy = models.CreatedByStudent
	}
	return scanAppointment(s.db.QueryRowContext(ctx, `
		INSERT INTO appointments (id, student_id, student_name, student_email, department, teacher_id, teacher, teacher_email,
			appointment_time, purpose, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+appointmentCols,
		a.ID, a.StudentID, a.StudentName, a.StudentEmail, a.Department, nullString(a.TeacherID), a.Teacher, a.TeacherEmail,
		a.AppointmentTime.UTC(), a.Purpose, string(a.Status), string(a.CreatedBy)))
}

func (s *Store) GetAppointment(ctx context.Context, id string) (models.Appointment, error) {
	a, err := scanAppointment(s.db.QueryRowContext(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Appointment{}, ErrNotFound
	}
	return a, err
}

// ListAppointmentsByStudent — все записи ученика; фильтр Completed делает вызывающий.
func (s *Store) ListAppointmentsByStudent(ctx context.Context, studentID string) ([]models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+appointmentCols+` FROM appointments
		WHERE student_id = $1
		ORDER BY appointment_time
	`, studentID)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

// ListAppointmentsByTeacher — записи учителя по email; statuses пустой = все статусы.
func (s *Store) ListAppointmentsByTeacher(ctx context.Context, teacherEmail string, statuses []models.AppointmentStatus) ([]models.Appointment, error) {
	q := `SELECT ` + appointmentCols + ` FROM appointments WHERE lower(teacher_email) = $1`
	args := []any{strings.ToLower(teacherEmail)}
	if len(statuses) > 0 {
		q += ` AND status = ANY($2)`
		args = append(args, pq.Array(statusStrings(statuses)))
	}
	q += ` ORDER BY appointment_time`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

// SetAppointmentStatus — compare-and-set: меняем статус, только если текущий входит в from.
func (s *Store) SetAppointmentStatus(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus) (models.Appointment, error) {
	a, err := scanAppointment(s.db.QueryRowContext(ctx, `
		UPDATE appointments SET status = $2
		WHERE id = $1 AND status = ANY($3)
		RETURNING `+appointmentCols,
		id, string(to), pq.Array(statusStrings(from))))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Appointment{}, ErrConflict
	}
	return a, err
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DueForReminder — подтверждённые встречи в окне [from, to), по которым ещё не напоминали.
// Назначенные учителем записи (pending, created_by=teacher) считаются подтверждёнными.
func (s *Store) DueForReminder(ctx context.Context, from, to time.Time, batch int) ([]models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+appointmentCols+` FROM appointments
		WHERE (status = 'approved' OR (status = 'pending' AND created_by = 'teacher'))
		  AND NOT reminder_sent
		  AND appointment_time >= $1 AND appointment_time < $2
		ORDER BY appointment_time
		LIMIT $3
	`, from.UTC(), to.UTC(), batch)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

// MarkReminded — пометить, что напоминания отправлены.
func (s *Store) MarkReminded(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE appointments SET reminder_sent = TRUE
		WHERE id = ANY($1::uuid[])
	`, pq.Array(ids))
	return err
}
