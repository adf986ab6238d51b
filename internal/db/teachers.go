package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

const teacherCols = `id, name, department, subject, email, account_id, telegram_chat_id, created_at`

func scanTeacher(row scanner) (models.TeacherEntry, error) {
	var (
		t         models.TeacherEntry
		accountID sql.NullString
		chatID    sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Department, &t.Subject, &t.Email, &accountID, &chatID, &t.CreatedAt); err != nil {
		return models.TeacherEntry{}, err
	}
	t.AccountID = strPtr(accountID)
	t.TelegramChatID = int64Ptr(chatID)
	return t, nil
}

func scanTeachers(rows *sql.Rows) ([]models.TeacherEntry, error) {
	defer func() { _ = rows.Close() }()
	out := []models.TeacherEntry{}
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTeacherWithProfile — запись в справочник учителей и профиль одной транзакцией.
// Профиль может отсутствовать (nil) — тогда пишется только справочник.
func (s *Store) CreateTeacherWithProfile(ctx context.Context, t models.TeacherEntry, p *models.Profile) (models.TeacherEntry, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	var out models.TeacherEntry
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if p != nil {
			if err := insertProfile(ctx, tx, *p); err != nil {
				return err
			}
		}
		var err error
		out, err = scanTeacher(tx.QueryRowContext(ctx, `
			INSERT INTO teachers (id, name, department, subject, email, account_id, telegram_chat_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+teacherCols,
			t.ID, t.Name, t.Department, t.Subject, t.Email, nullString(t.AccountID), nullInt64(t.TelegramChatID)))
		return err
	})
	return out, err
}

func (s *Store) ListTeachers(ctx context.Context) ([]models.TeacherEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+teacherCols+` FROM teachers ORDER BY name, created_at`)
	if err != nil {
		return nil, err
	}
	return scanTeachers(rows)
}

func (s *Store) GetTeacher(ctx context.Context, id string) (models.TeacherEntry, error) {
	t, err := scanTeacher(s.db.QueryRowContext(ctx, `SELECT `+teacherCols+` FROM teachers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.TeacherEntry{}, ErrNotFound
	}
	return t, err
}

// GetTeacherByAccount — запись справочника, привязанная к аккаунту учителя.
func (s *Store) GetTeacherByAccount(ctx context.Context, accountID string) (models.TeacherEntry, error) {
	t, err := scanTeacher(s.db.QueryRowContext(ctx, `
		SELECT `+teacherCols+` FROM teachers
		WHERE account_id = $1
		ORDER BY created_at
		LIMIT 1
	`, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.TeacherEntry{}, ErrNotFound
	}
	return t, err
}

// ListDepartments — уникальные кафедры из справочника учителей.
func (s *Store) ListDepartments(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT department FROM teachers
		WHERE department <> ''
		ORDER BY department
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) ListTeachersByDepartment(ctx context.Context, department string) ([]models.TeacherEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+teacherCols+` FROM teachers
		WHERE department = $1
		ORDER BY name
	`, department)
	if err != nil {
		return nil, err
	}
	return scanTeachers(rows)
}

// UpdateTeacher — правка записи учителя; связанный профиль обновляется в той же транзакции.
func (s *Store) UpdateTeacher(ctx context.Context, id string, patch models.TeacherPatch) (models.TeacherEntry, error) {
	var out models.TeacherEntry
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		t, err := scanTeacher(tx.QueryRowContext(ctx, `
			UPDATE teachers SET
				name             = COALESCE($2, name),
				department       = COALESCE($3, department),
				subject          = COALESCE($4, subject),
				telegram_chat_id = COALESCE($5, telegram_chat_id)
			WHERE id = $1
			RETURNING `+teacherCols,
			id, nullString(patch.Name), nullString(patch.Department), nullString(patch.Subject), nullInt64(patch.TelegramChatID)))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if t.AccountID != nil {
			if _, err := tx.ExecContext(ctx, `
				UPDATE profiles SET
					name             = COALESCE($2, name),
					department       = COALESCE($3, department),
					subject          = COALESCE($4, subject),
					telegram_chat_id = COALESCE($5, telegram_chat_id)
				WHERE id = $1
			`, *t.AccountID, nullString(patch.Name), nullString(patch.Department), nullString(patch.Subject), nullInt64(patch.TelegramChatID)); err != nil {
				return err
			}
		}
		out = t
		return nil
	})
	return out, err
}

// DeleteTeacher — удаляет запись справочника и связанный профиль. Учётные данные не трогаем,
// записи журнала встреч остаются как есть.
func (s *Store) DeleteTeacher(ctx context.Context, id string) (models.TeacherEntry, error) {
	var out models.TeacherEntry
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		t, err := scanTeacher(tx.QueryRowContext(ctx, `DELETE FROM teachers WHERE id = $1 RETURNING `+teacherCols, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if t.AccountID != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, *t.AccountID); err != nil {
				return err
			}
		}
		out = t
		return nil
	})
	return out, err
}
