package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

const profileCols = `id, name, email, role, status, department, subject, telegram_chat_id, created_at`

func scanProfile(row scanner) (models.Profile, error) {
	var (
		p                   models.Profile
		role, status        sql.NullString
		department, subject sql.NullString
		chatID              sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &role, &status, &department, &subject, &chatID, &p.CreatedAt); err != nil {
		return models.Profile{}, err
	}
	if role.Valid && role.String != "" {
		r := models.Role(role.String)
		p.Role = &r
	}
	if status.Valid && status.String != "" {
		st := models.StudentStatus(status.String)
		p.Status = &st
	}
	p.Department = strPtr(department)
	p.Subject = strPtr(subject)
	p.TelegramChatID = int64Ptr(chatID)
	return p, nil
}

func scanProfiles(rows *sql.Rows) ([]models.Profile, error) {
	defer func() { _ = rows.Close() }()
	out := []models.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProfile — профиль по идентификатору аккаунта.
func (s *Store) GetProfile(ctx context.Context, id string) (models.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileCols+` FROM profiles WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrNotFound
	}
	return p, err
}

func insertProfile(ctx context.Context, tx *sql.Tx, p models.Profile) error {
	var role, status sql.NullString
	if p.Role != nil {
		role = sql.NullString{String: string(*p.Role), Valid: true}
	}
	if p.Status != nil {
		status = sql.NullString{String: string(*p.Status), Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO profiles (id, name, email, role, status, department, subject, telegram_chat_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Name, p.Email, role, status, nullString(p.Department), nullString(p.Subject), nullInt64(p.TelegramChatID))
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// CreateProfile — одиночная запись профиля (ученик, админ).
func (s *Store) CreateProfile(ctx context.Context, p models.Profile) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		return insertProfile(ctx, tx, p)
	})
}

// ListStudents — все профили с ролью student (для консоли подтверждения).
func (s *Store) ListStudents(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+profileCols+`
		FROM profiles
		WHERE role = 'student'
		ORDER BY created_at, name
	`)
	if err != nil {
		return nil, err
	}
	return scanProfiles(rows)
}

// ListApprovedStudents — подтверждённые ученики (выпадающий список учителя).
func (s *Store) ListApprovedStudents(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+profileCols+`
		FROM profiles
		WHERE role = 'student' AND status = 'approved'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	return scanProfiles(rows)
}

// ApproveStudent — pending → approved и копия в approved_students одной транзакцией.
// ErrConflict, если ученик уже подтверждён.
func (s *Store) ApproveStudent(ctx context.Context, id string, at time.Time) (models.Profile, error) {
	var out models.Profile
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := scanProfile(tx.QueryRowContext(ctx, `
			UPDATE profiles SET status = 'approved'
			WHERE id = $1 AND role = 'student' AND status = 'pending'
			RETURNING `+profileCols, id))
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1 AND role = 'student')`, id).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrConflict
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO approved_students (account_id, name, email, role, status, approved_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (account_id) DO UPDATE
			SET name = excluded.name, email = excluded.email, status = excluded.status, approved_at = excluded.approved_at
		`, p.ID, p.Name, p.Email, string(models.Student), string(models.StudentApproved), at); err != nil {
			return fmt.Errorf("approved_students: %w", err)
		}
		out = p
		return nil
	})
	return out, err
}

func (s *Store) GetApprovedStudent(ctx context.Context, id string) (models.ApprovedStudent, error) {
	var a models.ApprovedStudent
	var role, status string
	err := s.db.QueryRowContext(ctx, `
		SELECT account_id, name, email, role, status, approved_at
		FROM approved_students WHERE account_id = $1
	`, id).Scan(&a.AccountID, &a.Name, &a.Email, &role, &status, &a.ApprovedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ApprovedStudent{}, ErrNotFound
	}
	a.Role = models.Role(role)
	a.Status = models.StudentStatus(status)
	return a, err
}

// SetTelegramChat — привязка чата для оповещений: профиль и, если есть, запись учителя.
func (s *Store) SetTelegramChat(ctx context.Context, accountID string, chatID int64) (models.Profile, error) {
	var out models.Profile
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := scanProfile(tx.QueryRowContext(ctx, `
			UPDATE profiles SET telegram_chat_id = $2 WHERE id = $1
			RETURNING `+profileCols, accountID, chatID))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE teachers SET telegram_chat_id = $2 WHERE account_id = $1`, accountID, chatID); err != nil {
			return fmt.Errorf("teachers: %w", err)
		}
		out = p
		return nil
	})
	return out, err
}
