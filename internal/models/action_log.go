package models

import "time"

type Action string

const (
	ActionLoginSuccess       Action = "LOGIN_SUCCESS"
	ActionLoginFailed        Action = "LOGIN_FAILED"
	ActionRoleNotSet         Action = "ROLE_NOT_SET"
	ActionRoleNotFound       Action = "ROLE_NOT_FOUND"
	ActionUnknownRole        Action = "UNKNOWN_ROLE"
	ActionRegisterSuccess    Action = "REGISTER_SUCCESS"
	ActionRegisterFailed     Action = "REGISTER_FAILED"
	ActionTeacherCreated     Action = "TEACHER_CREATED"
	ActionTeacherUpdated     Action = "TEACHER_UPDATED"
	ActionTeacherDeleted     Action = "TEACHER_DELETED"
	ActionStudentApproved    Action = "STUDENT_APPROVED"
	ActionAppointmentBooked  Action = "APPOINTMENT_BOOKED"
	ActionAppointmentStatus  Action = "APPOINTMENT_STATUS"
	ActionAppointmentDeleted Action = "APPOINTMENT_DELETED"
	ActionTelegramLinked     Action = "TELEGRAM_LINKED"
)

type ActionLog struct {
	ID        int64
	Action    Action
	Detail    string
	CreatedAt time.Time
}
