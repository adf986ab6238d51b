package models

import (
	"strings"
	"time"
)

type Role string

const (
	Student Role = "student"
	Teacher Role = "teacher"
	Admin   Role = "admin"
)

// ParseRole нормализует роль из формы регистрации (trim + lower case).
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case Student, Teacher, Admin:
		return r, true
	}
	return r, false
}

// StudentStatus — статус подтверждения ученика администратором.
type StudentStatus string

const (
	StudentPending  StudentStatus = "pending"
	StudentApproved StudentStatus = "approved"
)

// Profile — запись справочника профилей, ключ — идентификатор аккаунта.
// Role может отсутствовать (nil): такой профиль не проходит логин ("role not set").
type Profile struct {
	ID             string
	Name           string
	Email          string
	Role           *Role
	Status         *StudentStatus
	Department     *string
	Subject        *string
	TelegramChatID *int64
	CreatedAt      time.Time
}

func (p Profile) HasRole(r Role) bool {
	return p.Role != nil && *p.Role == r
}

// IsApprovedStudent — доступ к кабинету ученика только после подтверждения.
func (p Profile) IsApprovedStudent() bool {
	return p.HasRole(Student) && p.Status != nil && *p.Status == StudentApproved
}

// ApprovedStudent — денормализованная копия профиля в таблице approved_students.
type ApprovedStudent struct {
	AccountID  string
	Name       string
	Email      string
	Role       Role
	Status     StudentStatus
	ApprovedAt time.Time
}
