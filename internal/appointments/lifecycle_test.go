package appointments

import (
	"errors"
	"testing"

	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

func appt(status models.AppointmentStatus, by models.CreatedBy) models.Appointment {
	return models.Appointment{ID: "a1", Status: status, CreatedBy: by}
}

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		a       models.Appointment
		to      models.AppointmentStatus
		wantErr bool
	}{
		{"student pending -> approved", appt(models.AppointmentPending, models.CreatedByStudent), models.AppointmentApproved, false},
		{"student pending -> completed", appt(models.AppointmentPending, models.CreatedByStudent), models.AppointmentCompleted, false},
		{"approved -> completed", appt(models.AppointmentApproved, models.CreatedByStudent), models.AppointmentCompleted, false},
		{"teacher pending -> approved", appt(models.AppointmentPending, models.CreatedByTeacher), models.AppointmentApproved, true},
		{"teacher pending -> completed", appt(models.AppointmentPending, models.CreatedByTeacher), models.AppointmentCompleted, false},
		{"approved -> approved", appt(models.AppointmentApproved, models.CreatedByStudent), models.AppointmentApproved, true},
		{"completed -> approved", appt(models.AppointmentCompleted, models.CreatedByStudent), models.AppointmentApproved, true},
		{"completed -> completed", appt(models.AppointmentCompleted, models.CreatedByStudent), models.AppointmentCompleted, true},
		{"back to pending", appt(models.AppointmentApproved, models.CreatedByStudent), models.AppointmentPending, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, err := Next(tt.a, tt.to)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("Next() error = %v, want ErrInvalidTransition", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Next() unexpected error: %v", err)
			}
			found := false
			for _, s := range from {
				if s == tt.a.Status {
					found = true
				}
			}
			if !found {
				t.Fatalf("allowed sources %v do not include current status %q", from, tt.a.Status)
			}
		})
	}
}

func TestApproveControl(t *testing.T) {
	statuses := []models.AppointmentStatus{models.AppointmentPending, models.AppointmentApproved, models.AppointmentCompleted}
	origins := []models.CreatedBy{models.CreatedByStudent, models.CreatedByTeacher}
	for _, s := range statuses {
		for _, by := range origins {
			a := appt(s, by)
			want := !(by == models.CreatedByTeacher || s != models.AppointmentPending)
			if got := TeacherActions(a).Approve; got != want {
				t.Errorf("approve control for %s/%s = %v, want %v", s, by, got, want)
			}
		}
	}
}

func TestViews(t *testing.T) {
	list := []models.Appointment{
		appt(models.AppointmentPending, models.CreatedByStudent),
		appt(models.AppointmentApproved, models.CreatedByStudent),
		appt(models.AppointmentCompleted, models.CreatedByStudent),
		appt(models.AppointmentPending, models.CreatedByTeacher),
	}
	student := Filter(list, VisibleToStudent)
	for _, a := range student {
		if a.Status == models.AppointmentCompleted {
			t.Fatal("student view must not include Completed")
		}
	}
	if len(student) != 3 {
		t.Fatalf("student view len = %d, want 3", len(student))
	}
	queue := Filter(list, InTeacherQueue)
	if len(queue) != 3 {
		t.Fatalf("teacher queue len = %d, want 3", len(queue))
	}
}

// Запись учителя: в хранилище pending, но одобрять её нельзя — оба прочтения.
func TestTeacherCreatedReadings(t *testing.T) {
	a := appt(models.AppointmentPending, models.CreatedByTeacher)
	if a.Status != models.AppointmentPending {
		t.Fatal("stored status should stay pending")
	}
	if !EffectivelyApproved(a) {
		t.Fatal("teacher-created pending appointment should read as approved")
	}
	if CanApprove(a) {
		t.Fatal("teacher-created appointment must not be approvable")
	}
	if EffectivelyApproved(appt(models.AppointmentPending, models.CreatedByStudent)) {
		t.Fatal("student pending appointment is not approved")
	}
}

func TestParseView(t *testing.T) {
	if v, ok := ParseView(""); !ok || v != ViewPending {
		t.Fatalf("empty view = %q, %v", v, ok)
	}
	if v, ok := ParseView("all"); !ok || v != ViewAll {
		t.Fatalf("all view = %q, %v", v, ok)
	}
	if _, ok := ParseView("done"); ok {
		t.Fatal("unknown view accepted")
	}
}
