package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sarika191/Teacher-student-appointment/internal/db"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

type CreateTeacherInput struct {
	Name       string `json:"name" validate:"required"`
	Department string `json:"department" validate:"required"`
	Subject    string `json:"subject" validate:"required"`
	Email      string `json:"email" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// CreateTeacher — учётная запись учителя, затем справочник + профиль одной транзакцией.
// Если транзакция не прошла, учётная запись удаляется.
func (s *Service) CreateTeacher(ctx context.Context, sess Session, in CreateTeacherInput) (models.TeacherEntry, error) {
	if err := s.require(sess, models.Admin); err != nil {
		return models.TeacherEntry{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Department = strings.TrimSpace(in.Department)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return models.TeacherEntry{}, userErr(KindValidation, MsgFillAllFields)
	}

	acc, err := s.identity.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		if ue := credentialErr(err); ue != nil {
			return models.TeacherEntry{}, ue
		}
		return models.TeacherEntry{}, s.internal(ctx, "admin.teacher.signup", err, MsgAddTeacherFailed)
	}

	role := models.Teacher
	profile := models.Profile{
		ID:         acc.ID,
		Name:       in.Name,
		Email:      acc.Email,
		Role:       &role,
		Department: &in.Department,
		Subject:    &in.Subject,
	}
	t, err := s.store.CreateTeacherWithProfile(ctx, models.TeacherEntry{
		Name:       in.Name,
		Department: in.Department,
		Subject:    in.Subject,
		Email:      acc.Email,
		AccountID:  &acc.ID,
	}, &profile)
	if err != nil {
		s.compensate(ctx, acc)
		return models.TeacherEntry{}, s.internal(ctx, "admin.teacher.create", err, MsgAddTeacherFailed)
	}
	s.audit(ctx, models.ActionTeacherCreated, fmt.Sprintf("%s (%s) by %s", t.Name, t.Email, sess.Profile.Email))
	return t, nil
}

// UpdateTeacher — структурированная правка; хотя бы одно поле, пустые строки не принимаем.
func (s *Service) UpdateTeacher(ctx context.Context, sess Session, id string, patch models.TeacherPatch) (models.TeacherEntry, error) {
	if err := s.require(sess, models.Admin); err != nil {
		return models.TeacherEntry{}, err
	}
	if patch.Empty() {
		return models.TeacherEntry{}, userErr(KindValidation, MsgInvalidField)
	}
	patch.Name = trimmed(patch.Name)
	patch.Department = trimmed(patch.Department)
	patch.Subject = trimmed(patch.Subject)
	for _, v := range []*string{patch.Name, patch.Department, patch.Subject} {
		if v != nil && *v == "" {
			return models.TeacherEntry{}, userErr(KindValidation, MsgEmptyValue)
		}
	}
	if !validID(id) {
		return models.TeacherEntry{}, userErr(KindNotFound, MsgTeacherNotFound)
	}

	t, err := s.store.UpdateTeacher(ctx, id, patch)
	if errors.Is(err, db.ErrNotFound) {
		return models.TeacherEntry{}, userErr(KindNotFound, MsgTeacherNotFound)
	}
	if err != nil {
		return models.TeacherEntry{}, s.internal(ctx, "admin.teacher.update", err, MsgUpdateTeacherFailed)
	}
	s.audit(ctx, models.ActionTeacherUpdated, fmt.Sprintf("%s (%s) by %s", t.Name, t.Email, sess.Profile.Email))
	return t, nil
}

// DeleteTeacher — справочник и связанный профиль. Учётная запись остаётся.
func (s *Service) DeleteTeacher(ctx context.Context, sess Session, id string) error {
	if err := s.require(sess, models.Admin); err != nil {
		return err
	}
	if !validID(id) {
		return userErr(KindNotFound, MsgTeacherNotFound)
	}
	t, err := s.store.DeleteTeacher(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return userErr(KindNotFound, MsgTeacherNotFound)
	}
	if err != nil {
		return s.internal(ctx, "admin.teacher.delete", err, MsgDeleteTeacherFailed)
	}
	s.audit(ctx, models.ActionTeacherDeleted, fmt.Sprintf("%s (%s) by %s", t.Name, t.Email, sess.Profile.Email))
	return nil
}

func (s *Service) ListTeachers(ctx context.Context, sess Session) ([]models.TeacherEntry, error) {
	if err := s.require(sess, models.Admin); err != nil {
		return nil, err
	}
	list, err := s.store.ListTeachers(ctx)
	if err != nil {
		return nil, s.internal(ctx, "admin.teacher.list", err, MsgSomethingWrong)
	}
	return list, nil
}

// ListStudents — консоль подтверждения: все ученики со статусом.
func (s *Service) ListStudents(ctx context.Context, sess Session) ([]models.Profile, error) {
	if err := s.require(sess, models.Admin); err != nil {
		return nil, err
	}
	list, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, s.internal(ctx, "admin.student.list", err, MsgSomethingWrong)
	}
	return list, nil
}

// ApproveStudent — pending → approved и копия в approved_students.
// Повторное подтверждение отклоняется.
func (s *Service) ApproveStudent(ctx context.Context, sess Session, id string) (models.Profile, error) {
	if err := s.require(sess, models.Admin); err != nil {
		return models.Profile{}, err
	}
	if strings.TrimSpace(id) == "" {
		return models.Profile{}, userErr(KindNotFound, MsgStudentNotFound)
	}
	unlock := s.limiter.Lock(sess.AccountID)
	defer unlock()

	p, err := s.store.ApproveStudent(ctx, id, s.now())
	switch {
	case errors.Is(err, db.ErrNotFound):
		return models.Profile{}, userErr(KindNotFound, MsgStudentNotFound)
	case errors.Is(err, db.ErrConflict):
		return models.Profile{}, userErr(KindConflict, MsgAlreadyApproved)
	case err != nil:
		return models.Profile{}, s.internal(ctx, "admin.student.approve", err, MsgApproveFailed)
	}
	s.audit(ctx, models.ActionStudentApproved, fmt.Sprintf("%s (%s) by %s", p.Name, p.Email, sess.Profile.Email))
	return p, nil
}

// StudentApproval — запись из approved_students: кто и когда подтверждён.
func (s *Service) StudentApproval(ctx context.Context, sess Session, id string) (models.ApprovedStudent, error) {
	if err := s.require(sess, models.Admin); err != nil {
		return models.ApprovedStudent{}, err
	}
	a, err := s.store.GetApprovedStudent(ctx, strings.TrimSpace(id))
	switch {
	case errors.Is(err, db.ErrNotFound):
		return models.ApprovedStudent{}, userErr(KindNotFound, MsgNotApprovedYet)
	case err != nil:
		return models.ApprovedStudent{}, s.internal(ctx, "admin.student.approval", err, MsgSomethingWrong)
	}
	return a, nil
}

func (s *Service) ListActions(ctx context.Context, sess Session, limit int) ([]models.ActionLog, error) {
	if err := s.require(sess, models.Admin); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	list, err := s.store.ListActions(ctx, limit)
	if err != nil {
		return nil, s.internal(ctx, "admin.actions", err, MsgSomethingWrong)
	}
	return list, nil
}
