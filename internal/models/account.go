package models

import "time"

// Account — учётные данные локального провайдера идентификации.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
