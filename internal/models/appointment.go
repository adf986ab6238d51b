package models

import "time"

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentApproved  AppointmentStatus = "approved"
	AppointmentCompleted AppointmentStatus = "Completed"
)

type CreatedBy string

const (
	CreatedByStudent CreatedBy = "student"
	CreatedByTeacher CreatedBy = "teacher"
)

// Appointment — запись журнала встреч. Имя и email учителя денормализованы на момент записи.
type Appointment struct {
	ID              string
	StudentID       string
	StudentName     string
	StudentEmail    string
	Department      string
	TeacherID       *string
	Teacher         string
	TeacherEmail    string
	AppointmentTime time.Time
	Purpose         string
	Status          AppointmentStatus
	CreatedBy       CreatedBy
	CreatedAt       time.Time
	ReminderSent    bool
}
