package models

import "time"

// TeacherEntry — запись справочника учителей (источник списков кафедр и учителей).
type TeacherEntry struct {
	ID             string
	Name           string
	Department     string
	Subject        string
	Email          string
	AccountID      *string
	TelegramChatID *int64
	CreatedAt      time.Time
}

// TeacherPatch — структурированная правка записи учителя; nil-поля не меняются.
type TeacherPatch struct {
	Name           *string
	Department     *string
	Subject        *string
	TelegramChatID *int64
}

func (p TeacherPatch) Empty() bool {
	return p.Name == nil && p.Department == nil && p.Subject == nil && p.TelegramChatID == nil
}
