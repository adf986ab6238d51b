package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

// CreateAccount — ErrDuplicate, если email уже занят.
func (s *Store) CreateAccount(ctx context.Context, email, passwordHash string) (models.Account, error) {
	acc := models.Account{ID: uuid.NewString(), Email: strings.ToLower(email), PasswordHash: passwordHash}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, acc.ID, acc.Email, acc.PasswordHash).Scan(&acc.CreatedAt)
	if isUniqueViolation(err) {
		return models.Account{}, ErrDuplicate
	}
	if err != nil {
		return models.Account{}, err
	}
	return acc, nil
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	var acc models.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at FROM accounts WHERE email = $1
	`, strings.ToLower(email)).Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrNotFound
	}
	return acc, err
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}
