package booking

import "errors"

// Kind — класс ошибки для отображения пользователю (и HTTP-статуса).
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// UserError — ошибка с текстом для пользователя. Err — исходная причина (в логи, не наружу).
type UserError struct {
	Kind     Kind
	Msg      string
	Redirect string
	Err      error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *UserError) Unwrap() error { return e.Err }

func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	ok := errors.As(err, &ue)
	return ue, ok
}

func userErr(kind Kind, msg string) *UserError {
	return &UserError{Kind: kind, Msg: msg}
}

// Тексты сообщений пользователю.
const (
	MsgFillAllFields     = "Please fill all fields."
	MsgFillTeacherFields = "Please fill department and subject for teacher."
	MsgEmailInUse        = "This email is already in use."
	MsgWeakPassword      = "Password is too weak."
	MsgInvalidEmail      = "Invalid email address."
	MsgRegisterFailed    = "Registration failed!"
	MsgInvalidRole       = "Invalid role. Use student, teacher or admin."
	MsgAdminSignupOff    = "Admin registration is disabled."

	MsgLoginFailed     = "Login failed: invalid email or password."
	MsgUserDataMissing = "Login successful, but user data not found."
	MsgRoleNotSet      = "Role not set for this user."
	MsgUnknownRole     = "Unknown role. Please contact support."
	MsgNotLoggedIn     = "Not logged in."
	MsgLogoutFailed    = "Could not logout."
	MsgProfileNotFound = "User profile not found."
	MsgNotApproved     = "Access Denied: Your account is not approved yet."
	MsgWrongRole       = "Access Denied: this page is not available for your role."
	MsgSomethingWrong  = "Something went wrong."

	MsgTeacherNotFound      = "Teacher not found."
	MsgTeacherProfileNotFnd = "Teacher profile not found."
	MsgTeacherNotInDept     = "Selected teacher does not belong to this department."
	MsgAddTeacherFailed     = "Failed to add teacher."
	MsgUpdateTeacherFailed  = "Failed to update teacher."
	MsgDeleteTeacherFailed  = "Failed to delete teacher."
	MsgInvalidField         = "Invalid field."
	MsgEmptyValue           = "Value cannot be empty."

	MsgStudentNotFound   = "Student not found."
	MsgAlreadyApproved   = "Student is already approved."
	MsgNotApprovedYet    = "Student is not approved yet."
	MsgApproveFailed     = "Failed to approve student."
	MsgInvalidTime       = "Invalid appointment time."
	MsgPastTime          = "Appointment time cannot be in the past."
	MsgBookFailed        = "Failed to book appointment."
	MsgAppointmentNotFnd = "Appointment not found."
	MsgDeleteFailed      = "Failed to delete."
	MsgUpdateApptFailed  = "Failed to update appointment."
	MsgDeleteApptFailed  = "Failed to delete appointment."
	MsgInvalidTransition = "This action is not available for the appointment."
	MsgExportFailed      = "Failed to export appointments."

	MsgLinkCodeInvalid = "Link code is invalid or expired."
	MsgLinkFailed      = "Failed to link Telegram chat."
)
