package app

import (
	"time"

	"github.com/Sarika191/Teacher-student-appointment/internal/booking"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

type appointmentJSON struct {
	ID                  string  `json:"id"`
	StudentID           string  `json:"studentId"`
	StudentName         string  `json:"studentName"`
	StudentEmail        string  `json:"studentEmail"`
	Department          string  `json:"department"`
	TeacherID           *string `json:"teacherId,omitempty"`
	Teacher             string  `json:"teacher"`
	TeacherEmail        string  `json:"teacherEmail"`
	AppointmentTime     string  `json:"appointmentTime"`
	Purpose             string  `json:"purpose"`
	Status              string  `json:"status"`
	CreatedBy           string  `json:"createdBy"`
	CreatedAt           string  `json:"createdAt"`
	CanApprove          bool    `json:"canApprove"`
	CanComplete         bool    `json:"canComplete"`
	CanDelete           bool    `json:"canDelete"`
	EffectivelyApproved bool    `json:"effectivelyApproved"`
}

func toAppointment(a models.Appointment, loc *time.Location) appointmentJSON {
	return appointmentJSON{
		ID:              a.ID,
		StudentID:       a.StudentID,
		StudentName:     a.StudentName,
		StudentEmail:    a.StudentEmail,
		Department:      a.Department,
		TeacherID:       a.TeacherID,
		Teacher:         a.Teacher,
		TeacherEmail:    a.TeacherEmail,
		AppointmentTime: a.AppointmentTime.In(loc).Format(booking.TimeLayout),
		Purpose:         a.Purpose,
		Status:          string(a.Status),
		CreatedBy:       string(a.CreatedBy),
		CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toAppointmentViews(list []booking.AppointmentView, loc *time.Location) []appointmentJSON {
	out := make([]appointmentJSON, 0, len(list))
	for _, v := range list {
		j := toAppointment(v.Appointment, loc)
		j.CanApprove = v.Actions.Approve
		j.CanComplete = v.Actions.Complete
		j.CanDelete = v.Actions.Delete
		j.EffectivelyApproved = v.EffectivelyApproved
		out = append(out, j)
	}
	return out
}

type teacherJSON struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Department     string  `json:"department"`
	Subject        string  `json:"subject"`
	Email          string  `json:"email"`
	AccountID      *string `json:"accountId,omitempty"`
	TelegramChatID *int64  `json:"telegramChatId,omitempty"`
	CreatedAt      string  `json:"createdAt"`
}

func toTeacher(t models.TeacherEntry) teacherJSON {
	return teacherJSON{
		ID:             t.ID,
		Name:           t.Name,
		Department:     t.Department,
		Subject:        t.Subject,
		Email:          t.Email,
		AccountID:      t.AccountID,
		TelegramChatID: t.TelegramChatID,
		CreatedAt:      t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toTeachers(list []models.TeacherEntry) []teacherJSON {
	out := make([]teacherJSON, 0, len(list))
	for _, t := range list {
		out = append(out, toTeacher(t))
	}
	return out
}

type profileJSON struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role,omitempty"`
	Status     string  `json:"status,omitempty"`
	Department *string `json:"department,omitempty"`
	Subject    *string `json:"subject,omitempty"`
}

func toProfile(p models.Profile) profileJSON {
	j := profileJSON{ID: p.ID, Name: p.Name, Email: p.Email, Department: p.Department, Subject: p.Subject}
	if p.Role != nil {
		j.Role = string(*p.Role)
	}
	if p.Status != nil {
		j.Status = string(*p.Status)
	}
	return j
}

func toProfiles(list []models.Profile) []profileJSON {
	out := make([]profileJSON, 0, len(list))
	for _, p := range list {
		out = append(out, toProfile(p))
	}
	return out
}

type approvalJSON struct {
	AccountID  string `json:"accountId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Status     string `json:"status"`
	ApprovedAt string `json:"approvedAt"`
}

func toApproval(a models.ApprovedStudent) approvalJSON {
	return approvalJSON{
		AccountID:  a.AccountID,
		Name:       a.Name,
		Email:      a.Email,
		Status:     string(a.Status),
		ApprovedAt: a.ApprovedAt.UTC().Format(time.RFC3339),
	}
}

type actionJSON struct {
	ID        int64  `json:"id"`
	Action    string `json:"action"`
	Detail    string `json:"detail"`
	CreatedAt string `json:"createdAt"`
}

func toActions(list []models.ActionLog) []actionJSON {
	out := make([]actionJSON, 0, len(list))
	for _, a := range list {
		out = append(out, actionJSON{ID: a.ID, Action: string(a.Action), Detail: a.Detail, CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339)})
	}
	return out
}
