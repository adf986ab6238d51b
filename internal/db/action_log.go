package db

import (
	"context"

	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

// LogAction — журнал действий (вход, регистрация, правки справочников).
func (s *Store) LogAction(ctx context.Context, action models.Action, detail string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO action_log (action, detail) VALUES ($1, $2)`, string(action), detail)
	return err
}

func (s *Store) ListActions(ctx context.Context, limit int) ([]models.ActionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, detail, created_at FROM action_log
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.ActionLog{}
	for rows.Next() {
		var (
			l      models.ActionLog
			action string
		)
		if err := rows.Scan(&l.ID, &action, &l.Detail, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Action = models.Action(action)
		out = append(out, l)
	}
	return out, rows.Err()
}
