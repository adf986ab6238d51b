package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sarika191/Teacher-student-appointment/internal/db"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

// AccountStore — хранилище учётных записей локального провайдера.
type AccountStore interface {
	CreateAccount(ctx context.Context, email, passwordHash string) (models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (models.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// Local — провайдер на bcrypt + таблица accounts.
type Local struct {
	store    AccountStore
	validate *validator.Validate
	cost     int
}

func NewLocal(store AccountStore, validate *validator.Validate) *Local {
	return &Local{store: store, validate: validate, cost: bcrypt.DefaultCost}
}

// WithCost — для тестов (bcrypt.MinCost).
func (l *Local) WithCost(cost int) *Local {
	l.cost = cost
	return l
}

func (l *Local) SignUp(ctx context.Context, email, password string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := l.validate.Var(email, "required,email"); err != nil {
		return Account{}, ErrInvalidEmail
	}
	if len(password) < MinPasswordLen {
		return Account{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return Account{}, err
	}
	acc, err := l.store.CreateAccount(ctx, email, string(hash))
	if errors.Is(err, db.ErrDuplicate) {
		return Account{}, ErrEmailInUse
	}
	if err != nil {
		return Account{}, err
	}
	return Account{ID: acc.ID, Email: acc.Email}, nil
}

func (l *Local) SignIn(ctx context.Context, email, password string) (Account, error) {
	acc, err := l.store.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, db.ErrNotFound) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return Account{}, ErrInvalidCredentials
	}
	return Account{ID: acc.ID, Email: acc.Email}, nil
}

func (l *Local) DeleteAccount(ctx context.Context, acc Account) error {
	return l.store.DeleteAccount(ctx, acc.ID)
}
