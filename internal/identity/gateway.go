// Package identity — выдача и проверка учётных данных, сессии.
package identity

import (
	"context"
	"errors"
)

var (
	ErrEmailInUse         = errors.New("identity: email already in use")
	ErrWeakPassword       = errors.New("identity: password is too weak")
	ErrInvalidEmail       = errors.New("identity: invalid email address")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

// MinPasswordLen — как у управляемых провайдеров: короче шести символов не принимаем.
const MinPasswordLen = 6

// Account — то, что провайдер возвращает после регистрации/входа.
type Account struct {
	ID    string
	Email string
}

// Gateway — граница с провайдером учётных данных.
type Gateway interface {
	SignUp(ctx context.Context, email, password string) (Account, error)
	SignIn(ctx context.Context, email, password string) (Account, error)
	// DeleteAccount — компенсирующее действие, если запись профиля не удалась.
	DeleteAccount(ctx context.Context, acc Account) error
}
