//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Sarika191/Teacher-student-appointment/internal/db"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
	"github.com/Sarika191/Teacher-student-appointment/internal/testutil/testdb"
)

func startStore(t *testing.T) *db.Store {
	t.Helper()
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Close)
	return h.Store
}

func ptr[T any](v T) *T { return &v }

func TestAccounts_DuplicateEmail(t *testing.T) {
	s := startStore(t)
	ctx := context.Background()

	acc, err := s.CreateAccount(ctx, "Ravi@X.com", "hash")
	if err != nil {
		t.Fatal(err)
	}
	if acc.Email != "ravi@x.com" {
		t.Fatalf("email not normalized: %q", acc.Email)
	}
	if _, err := s.CreateAccount(ctx, "ravi@x.com", "hash"); !errors.Is(err, db.ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
	if err := s.DeleteAccount(ctx, acc.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetAccountByEmail(ctx, "ravi@x.com"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestTeachers_ProfileKeptInSync(t *testing.T) {
	s := startStore(t)
	ctx := context.Background()

	role := models.Teacher
	p := models.Profile{ID: "acc-1", Name: "Dr. Rao", Email: "rao@x.com", Role: &role,
		Department: ptr("Math"), Subject: ptr("Algebra")}
	te, err := s.CreateTeacherWithProfile(ctx, models.TeacherEntry{
		Name: "Dr. Rao", Department: "Math", Subject: "Algebra", Email: "rao@x.com", AccountID: ptr("acc-1"),
	}, &p)
	if err != nil {
		t.Fatal(err)
	}

	deps, _ := s.ListDepartments(ctx)
	if len(deps) != 1 || deps[0] != "Math" {
		t.Fatalf("departments: %v", deps)
	}

	if _, err := s.UpdateTeacher(ctx, te.ID, models.TeacherPatch{Department: ptr("Physics")}); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetProfile(ctx, "acc-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Department == nil || *got.Department != "Physics" {
		t.Fatalf("profile department not mirrored: %v", got.Department)
	}

	if _, err := s.DeleteTeacher(ctx, te.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetProfile(ctx, "acc-1"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("linked profile must be deleted, got %v", err)
	}
	if _, err := s.GetTeacher(ctx, te.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// Дубль id профиля откатывает и запись справочника.
func TestTeachers_CreateIsAtomic(t *testing.T) {
	s := startStore(t)
	ctx := context.Background()

	if err := s.CreateProfile(ctx, models.Profile{ID: "acc-1", Name: "X", Email: "x@x.com"}); err != nil {
		t.Fatal(err)
	}
	role := models.Teacher
	_, err := s.CreateTeacherWithProfile(ctx, models.TeacherEntry{
		Name: "Dr. Rao", Department: "Math", Subject: "Algebra", Email: "rao@x.com", AccountID: ptr("acc-1"),
	}, &models.Profile{ID: "acc-1", Name: "Dr. Rao", Email: "rao@x.com", Role: &role})
	if err == nil {
		t.Fatal("expected error")
	}
	list, _ := s.ListTeachers(ctx)
	if len(list) != 0 {
		t.Fatalf("teacher entry leaked: %v", list)
	}
}

func TestStudents_ApproveOnce(t *testing.T) {
	s := startStore(t)
	ctx := context.Background()

	role, st := models.Student, models.StudentPending
	if err := s.CreateProfile(ctx, models.Profile{ID: "st-1", Name: "Ravi", Email: "ravi@x.com", Role: &role, Status: &st}); err != nil {
		t.Fatal(err)
	}
	p, err := s.ApproveStudent(ctx, "st-1", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsApprovedStudent() {
		t.Fatalf("not approved: %+v", p)
	}
	if _, err := s.ApproveStudent(ctx, "st-1", time.Now()); !errors.Is(err, db.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	if _, err := s.GetApprovedStudent(ctx, "st-1"); err != nil {
		t.Fatal(err)
	}
	approved, _ := s.ListApprovedStudents(ctx)
	if len(approved) != 1 {
		t.Fatalf("approved list: %v", approved)
	}
}

// Параллельные approve/complete: переход выигрывает ровно один.
func TestAppointments_StatusCompareAndSet(t *testing.T) {
	s := startStore(t)
	ctx := context.Background()

	a, err := s.InsertAppointment(ctx, models.Appointment{
		StudentID: "st-1", StudentName: "Ravi", StudentEmail: "ravi@x.com",
		Department: "Math", Teacher: "Dr. Rao", TeacherEmail: "Rao@x.com",
		AppointmentTime: time.Now().Add(48 * time.Hour), CreatedBy: models.CreatedByStudent,
	})
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != models.AppointmentPending {
		t.Fatalf("default status: %s", a.Status)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.SetAppointmentStatus(ctx, a.ID,
				[]models.AppointmentStatus{models.AppointmentPending}, models.AppointmentApproved)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if successes != 1 {
		t.Fatalf("successes = %d, want 1", successes)
	}

	open, err := s.ListAppointmentsByTeacher(ctx, "rao@x.com",
		[]models.AppointmentStatus{models.AppointmentPending, models.AppointmentApproved})
	if err != nil || len(open) != 1 {
		t.Fatalf("teacher queue: %v %v", open, err)
	}

	if err := s.DeleteAppointment(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteAppointment(ctx, a.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestAppointments_Reminders(t *testing.T) {
	s := startStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	soon, err := s.InsertAppointment(ctx, models.Appointment{
		StudentID: "st-1", StudentName: "Ravi", StudentEmail: "ravi@x.com",
		Department: "Math", Teacher: "Dr. Rao", TeacherEmail: "rao@x.com",
		AppointmentTime: now.Add(30 * time.Minute), Status: models.AppointmentApproved,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertAppointment(ctx, models.Appointment{
		StudentID: "st-1", StudentName: "Ravi", StudentEmail: "ravi@x.com",
		Department: "Math", Teacher: "Dr. Rao", TeacherEmail: "rao@x.com",
		AppointmentTime: now.Add(5 * time.Hour), Status: models.AppointmentApproved,
	}); err != nil {
		t.Fatal(err)
	}

	scheduled, err := s.InsertAppointment(ctx, models.Appointment{
		StudentID: "st-1", StudentName: "Ravi", StudentEmail: "ravi@x.com",
		Department: "Math", Teacher: "Dr. Rao", TeacherEmail: "rao@x.com",
		AppointmentTime: now.Add(45 * time.Minute), Status: models.AppointmentPending,
		CreatedBy: models.CreatedByTeacher,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertAppointment(ctx, models.Appointment{
		StudentID: "st-1", StudentName: "Ravi", StudentEmail: "ravi@x.com",
		Department: "Math", Teacher: "Dr. Rao", TeacherEmail: "rao@x.com",
		AppointmentTime: now.Add(50 * time.Minute), Status: models.AppointmentPending,
		CreatedBy: models.CreatedByStudent,
	}); err != nil {
		t.Fatal(err)
	}

	due, err := s.DueForReminder(ctx, now, now.Add(time.Hour), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 2 || due[0].ID != soon.ID || due[1].ID != scheduled.ID {
		t.Fatalf("due: %v", due)
	}
	if err := s.MarkReminded(ctx, []string{soon.ID, scheduled.ID}); err != nil {
		t.Fatal(err)
	}
	due, _ = s.DueForReminder(ctx, now, now.Add(time.Hour), 10)
	if len(due) != 0 {
		t.Fatalf("reminded appointment returned again: %v", due)
	}
}

func TestActionLog_NewestFirst(t *testing.T) {
	s := startStore(t)
	ctx := context.Background()

	for _, a := range []models.Action{models.ActionLoginSuccess, models.ActionLoginFailed} {
		if err := s.LogAction(ctx, a, "x@x.com"); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.ListActions(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Action != models.ActionLoginFailed {
		t.Fatalf("actions: %v", list)
	}
}
