package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sarika191/Teacher-student-appointment/internal/db"
	"github.com/Sarika191/Teacher-student-appointment/internal/identity"
	"github.com/Sarika191/Teacher-student-appointment/internal/menu"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

const (
	entryPage = menu.EntryPage
	// RedirectDelay — пауза перед переходом в кабинет после входа/регистрации.
	RedirectDelay = time.Second
)

type RegisterInput struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required"`
	Password   string `json:"password" validate:"required"`
	Role       string `json:"role" validate:"required"`
	Department string `json:"department"`
	Subject    string `json:"subject"`
}

// Grant — результат успешного входа/регистрации.
type Grant struct {
	Token     string
	ExpiresAt time.Time
	AccountID string
	Role      models.Role
	Redirect  string
	Message   string
}

// Register — учётная запись + профиль (для учителя ещё и запись справочника).
// Если профиль не записался, учётную запись удаляем.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Grant, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Department = strings.TrimSpace(in.Department)
	in.Subject = strings.TrimSpace(in.Subject)
	if err := s.validate.Struct(in); err != nil {
		return Grant{}, userErr(KindValidation, MsgFillAllFields)
	}

	role, ok := models.ParseRole(in.Role)
	if !ok {
		return Grant{}, userErr(KindValidation, MsgInvalidRole)
	}
	if role == models.Teacher && (in.Department == "" || in.Subject == "") {
		return Grant{}, userErr(KindValidation, MsgFillTeacherFields)
	}
	if role == models.Admin && !s.allowAdminSignup {
		return Grant{}, userErr(KindForbidden, MsgAdminSignupOff)
	}

	acc, err := s.identity.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		s.audit(ctx, models.ActionRegisterFailed, fmt.Sprintf("%s: %v", in.Email, err))
		if ue := credentialErr(err); ue != nil {
			return Grant{}, ue
		}
		return Grant{}, s.internal(ctx, "register.signup", err, MsgRegisterFailed)
	}

	profile := models.Profile{ID: acc.ID, Name: in.Name, Email: acc.Email, Role: &role}
	switch role {
	case models.Student:
		st := models.StudentPending
		profile.Status = &st
		err = s.store.CreateProfile(ctx, profile)
	case models.Teacher:
		profile.Department = &in.Department
		profile.Subject = &in.Subject
		_, err = s.store.CreateTeacherWithProfile(ctx, models.TeacherEntry{
			Name:       in.Name,
			Department: in.Department,
			Subject:    in.Subject,
			Email:      acc.Email,
			AccountID:  &acc.ID,
		}, &profile)
	default:
		err = s.store.CreateProfile(ctx, profile)
	}
	if err != nil {
		s.compensate(ctx, acc)
		s.audit(ctx, models.ActionRegisterFailed, fmt.Sprintf("%s: profile write: %v", acc.Email, err))
		return Grant{}, s.internal(ctx, "register.profile", err, MsgRegisterFailed)
	}
	s.audit(ctx, models.ActionRegisterSuccess, fmt.Sprintf("%s as %s", acc.Email, role))

	g, err := s.grant(acc.ID, role)
	if err != nil {
		return Grant{}, s.internal(ctx, "register.session", err, MsgRegisterFailed)
	}
	g.Message = fmt.Sprintf("Registration successful! Redirecting as %s...", role)
	return g, nil
}

// compensate — откат выданной учётной записи.
func (s *Service) compensate(ctx context.Context, acc identity.Account) {
	if err := s.identity.DeleteAccount(ctx, acc); err != nil {
		_ = s.internal(ctx, "identity.compensate", err, MsgSomethingWrong)
	}
}

func credentialErr(err error) *UserError {
	switch {
	case errors.Is(err, identity.ErrEmailInUse):
		return &UserError{Kind: KindConflict, Msg: MsgEmailInUse, Err: err}
	case errors.Is(err, identity.ErrWeakPassword):
		return &UserError{Kind: KindValidation, Msg: MsgWeakPassword, Err: err}
	case errors.Is(err, identity.ErrInvalidEmail):
		return &UserError{Kind: KindValidation, Msg: MsgInvalidEmail, Err: err}
	}
	return nil
}

func (s *Service) grant(accountID string, role models.Role) (Grant, error) {
	tok, err := s.sessions.Issue(accountID, string(role))
	if err != nil {
		return Grant{}, err
	}
	page, _ := menu.HomePage(role)
	return Grant{Token: tok.Value, ExpiresAt: tok.ExpiresAt, AccountID: accountID, Role: role, Redirect: page}, nil
}

// Login — проверка учётных данных и разбор профиля по роли.
func (s *Service) Login(ctx context.Context, email, password string) (Grant, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Grant{}, userErr(KindValidation, MsgFillAllFields)
	}

	acc, err := s.identity.SignIn(ctx, email, password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		s.audit(ctx, models.ActionLoginFailed, email)
		return Grant{}, &UserError{Kind: KindAuth, Msg: MsgLoginFailed, Err: err}
	}
	if err != nil {
		s.audit(ctx, models.ActionLoginFailed, fmt.Sprintf("%s: %v", email, err))
		return Grant{}, s.internal(ctx, "login.signin", err, MsgSomethingWrong)
	}

	profile, err := s.store.GetProfile(ctx, acc.ID)
	if errors.Is(err, db.ErrNotFound) && s.adminEmails[strings.ToLower(acc.Email)] {
		profile, err = s.seedAdmin(ctx, acc)
	}
	if errors.Is(err, db.ErrNotFound) {
		s.audit(ctx, models.ActionRoleNotFound, acc.Email)
		return Grant{}, userErr(KindForbidden, MsgUserDataMissing)
	}
	if err != nil {
		return Grant{}, s.internal(ctx, "login.profile", err, MsgSomethingWrong)
	}

	if profile.Role == nil {
		s.audit(ctx, models.ActionRoleNotSet, acc.Email)
		return Grant{}, userErr(KindForbidden, MsgRoleNotSet)
	}
	role := *profile.Role
	if _, known := menu.HomePage(role); !known {
		s.audit(ctx, models.ActionUnknownRole, fmt.Sprintf("%s: %q", acc.Email, role))
		return Grant{}, userErr(KindForbidden, MsgUnknownRole)
	}

	g, err := s.grant(acc.ID, role)
	if err != nil {
		return Grant{}, s.internal(ctx, "login.session", err, MsgSomethingWrong)
	}
	s.audit(ctx, models.ActionLoginSuccess, fmt.Sprintf("%s as %s", acc.Email, role))
	g.Message = fmt.Sprintf("Login successful! Redirecting as %s...", role)
	return g, nil
}

// seedAdmin — профиль администратора для адресов из ADMIN_EMAILS при первом входе.
func (s *Service) seedAdmin(ctx context.Context, acc identity.Account) (models.Profile, error) {
	role := models.Admin
	p := models.Profile{ID: acc.ID, Name: acc.Email, Email: acc.Email, Role: &role}
	if err := s.store.CreateProfile(ctx, p); err != nil && !errors.Is(err, db.ErrDuplicate) {
		return models.Profile{}, err
	}
	s.log.Infow("admin profile seeded", "email", acc.Email)
	return s.store.GetProfile(ctx, acc.ID)
}

// Logout — отзыв токена сессии.
func (s *Service) Logout(ctx context.Context, sess Session) error {
	if err := s.sessions.Revoke(ctx, sess.Token); err != nil {
		if errors.Is(err, identity.ErrInvalidSession) {
			return &UserError{Kind: KindAuth, Msg: MsgNotLoggedIn, Redirect: entryPage, Err: err}
		}
		return s.internal(ctx, "logout", err, MsgLogoutFailed)
	}
	return nil
}

// ResolveSession — токен → аккаунт → профиль. Любая неудача ведёт на страницу входа.
func (s *Service) ResolveSession(ctx context.Context, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, &UserError{Kind: KindAuth, Msg: MsgNotLoggedIn, Redirect: entryPage}
	}
	claims, err := s.sessions.Parse(ctx, token)
	if errors.Is(err, identity.ErrInvalidSession) {
		return Session{}, &UserError{Kind: KindAuth, Msg: MsgNotLoggedIn, Redirect: entryPage, Err: err}
	}
	if err != nil {
		return Session{}, s.internal(ctx, "session.parse", err, MsgSomethingWrong)
	}

	profile, err := s.store.GetProfile(ctx, claims.Subject)
	if errors.Is(err, db.ErrNotFound) {
		return Session{}, &UserError{Kind: KindForbidden, Msg: MsgProfileNotFound, Redirect: entryPage}
	}
	if err != nil {
		return Session{}, s.internal(ctx, "session.profile", err, MsgSomethingWrong)
	}
	return Session{AccountID: claims.Subject, Profile: profile, Token: token}, nil
}

// RequireRole — проверка доступа к кабинету; ученику нужен ещё и статус approved.
func (s *Service) RequireRole(sess Session, role models.Role) error {
	if role == models.Student {
		return s.requireApprovedStudent(sess)
	}
	return s.require(sess, role)
}
