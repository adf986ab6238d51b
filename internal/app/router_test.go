package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sarika191/Teacher-student-appointment/internal/booking"
	"github.com/Sarika191/Teacher-student-appointment/internal/db/inmem"
	"github.com/Sarika191/Teacher-student-appointment/internal/identity"
	"github.com/Sarika191/Teacher-student-appointment/internal/logging"
)

var testNow = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func init() { gin.SetMode(gin.TestMode) }

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type env struct {
	t      *testing.T
	router *gin.Engine
}

func newEnv(t *testing.T, mutate ...func(*Deps)) *env {
	t.Helper()
	store := inmem.New()
	v := validator.New()
	svc := booking.New(booking.Deps{
		Store:            store,
		Identity:         identity.NewLocal(store, v).WithCost(bcrypt.MinCost),
		Sessions:         identity.NewSessions("router-test", "portal-test", time.Hour, identity.NewMemoryRevoker()),
		Validate:         v,
		Location:         time.UTC,
		AllowAdminSignup: true,
		Now:              func() time.Time { return testNow },
	})
	d := Deps{Service: svc, Log: logging.Nop().Sugar, DB: store}
	for _, m := range mutate {
		m(&d)
	}
	return &env{t: t, router: NewRouter(d)}
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *env) register(name, email, role string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "pw123456", "role": role,
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode(e.t, w)["token"].(string)
}

func (e *env) login(email string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "pw123456"})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return decode(e.t, w)["token"].(string)
}

// approvedStudent — регистрация ученика и подтверждение администратором.
func (e *env) approvedStudent(admin, name, email string) string {
	e.t.Helper()
	tok := e.register(name, email, "student")

	w := e.do(http.MethodGet, "/api/admin/students", admin, nil)
	require.Equal(e.t, http.StatusOK, w.Code)
	var id string
	for _, s := range decode(e.t, w)["students"].([]any) {
		m := s.(map[string]any)
		if m["email"] == email {
			id = m["id"].(string)
		}
	}
	require.NotEmpty(e.t, id)

	w = e.do(http.MethodPost, "/api/admin/students/"+id+"/approve", admin, nil)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return tok
}

func (e *env) teacher(admin, name, dept, email string) (token, id string) {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/admin/teachers", admin, map[string]string{
		"name": name, "department": dept, "subject": "Algebra", "email": email, "password": "pw123456",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	id = decode(e.t, w)["teacher"].(map[string]any)["id"].(string)
	return e.login(email), id
}

func TestAppointmentFlow(t *testing.T) {
	e := newEnv(t)
	admin := e.register("Admin", "admin@x.com", "admin")
	teacherTok, teacherID := e.teacher(admin, "Dr. Rao", "Math", "rao@x.com")

	pending := e.register("Asha", "asha@x.com", "student")
	w := e.do(http.MethodGet, "/api/student/appointments", pending, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, booking.MsgNotApproved, decode(t, w)["error"])

	student := e.approvedStudent(admin, "Ravi", "ravi@x.com")

	w = e.do(http.MethodGet, "/api/departments", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"Math"}, decode(t, w)["departments"])

	w = e.do(http.MethodGet, "/api/departments/Math/teachers", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["teachers"], 1)

	w = e.do(http.MethodPost, "/api/student/appointments", student, map[string]string{
		"department": "Math", "teacherId": teacherID, "appointmentTime": "2025-05-02T09:30", "purpose": "Exam prep",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	appt := decode(t, w)["appointment"].(map[string]any)
	apptID := appt["id"].(string)
	assert.Equal(t, "pending", appt["status"])
	assert.Equal(t, "Dr. Rao", appt["teacher"])
	assert.Equal(t, "2025-05-02T09:30", appt["appointmentTime"])

	w = e.do(http.MethodGet, "/api/teacher/appointments", teacherTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["appointments"].([]any)
	require.Len(t, list, 1)
	row := list[0].(map[string]any)
	assert.Equal(t, true, row["canApprove"])
	assert.Equal(t, true, row["canComplete"])

	w = e.do(http.MethodPost, "/api/teacher/appointments/"+apptID+"/approve", teacherTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", decode(t, w)["appointment"].(map[string]any)["status"])

	w = e.do(http.MethodPost, "/api/teacher/appointments/"+apptID+"/approve", teacherTok, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodPost, "/api/teacher/appointments/"+apptID+"/complete", teacherTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/student/appointments", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["appointments"])

	w = e.do(http.MethodGet, "/api/teacher/appointments?view=all", teacherTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["appointments"], 1)

	w = e.do(http.MethodGet, "/api/admin/actions?limit=5", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["actions"], 5)
}

func TestUnauthenticatedRedirectsToEntryPage(t *testing.T) {
	e := newEnv(t)
	for _, path := range []string{"/api/session", "/api/student/appointments", "/api/admin/teachers"} {
		w := e.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
		body := decode(t, w)
		assert.Equal(t, "index.html", body["redirect"], path)
		assert.Equal(t, booking.MsgNotLoggedIn, body["error"], path)
	}

	w := e.do(http.MethodGet, "/api/session", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWrongRoleForbidden(t *testing.T) {
	e := newEnv(t)
	admin := e.register("Admin", "admin@x.com", "admin")
	student := e.approvedStudent(admin, "Ravi", "ravi@x.com")

	w := e.do(http.MethodGet, "/api/admin/teachers", student, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = e.do(http.MethodGet, "/api/teacher/appointments", admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSessionEndpoint(t *testing.T) {
	e := newEnv(t)
	admin := e.register("Admin", "admin@x.com", "admin")

	w := e.do(http.MethodGet, "/api/session", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "admin.html", body["home"])
	assert.Equal(t, "admin", body["profile"].(map[string]any)["role"])
	assert.NotEmpty(t, body["menu"])
}

func TestLoginSetsCookieAndLogoutRevokes(t *testing.T) {
	e := newEnv(t)
	e.register("Admin", "admin@x.com", "admin")

	w := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ADMIN@x.com", "password": "pw123456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "admin.html", body["redirect"])
	assert.EqualValues(t, 1000, body["redirectDelayMs"])
	assert.Contains(t, w.Header().Get("Set-Cookie"), sessionCookie+"=")
	tok := body["token"].(string)

	w = e.do(http.MethodPost, "/api/auth/logout", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "index.html", decode(t, w)["redirect"])

	w = e.do(http.MethodGet, "/api/session", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCookieSession(t *testing.T) {
	e := newEnv(t)
	tok := e.register("Admin", "admin@x.com", "admin")

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: tok})
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterErrors(t *testing.T) {
	e := newEnv(t)
	e.register("Asha", "asha@x.com", "student")

	w := e.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Asha 2", "email": "asha@x.com", "password": "pw123456", "role": "student",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, booking.MsgEmailInUse, decode(t, w)["error"])

	w = e.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "X", "email": "x@x.com", "password": "pw123456", "role": "janitor",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgBadRequest, decode(t, rec)["error"])
}

func TestTeacherViewValidation(t *testing.T) {
	e := newEnv(t)
	admin := e.register("Admin", "admin@x.com", "admin")
	tok, _ := e.teacher(admin, "Dr. Rao", "Math", "rao@x.com")

	w := e.do(http.MethodGet, "/api/teacher/appointments?view=archived", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminTeacherPatchAndDelete(t *testing.T) {
	e := newEnv(t)
	admin := e.register("Admin", "admin@x.com", "admin")
	_, id := e.teacher(admin, "Dr. Rao", "Math", "rao@x.com")

	w := e.do(http.MethodPatch, "/api/admin/teachers/"+id, admin, map[string]string{"department": "Physics"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Physics", decode(t, w)["teacher"].(map[string]any)["department"])

	w = e.do(http.MethodDelete, "/api/admin/teachers/"+id, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodDelete, "/api/admin/teachers/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportAppointments(t *testing.T) {
	e := newEnv(t)
	admin := e.register("Admin", "admin@x.com", "admin")
	teacherTok, teacherID := e.teacher(admin, "Dr. Rao", "Math", "rao@x.com")
	student := e.approvedStudent(admin, "Ravi", "ravi@x.com")

	w := e.do(http.MethodPost, "/api/student/appointments", student, map[string]string{
		"department": "Math", "teacherId": teacherID, "appointmentTime": "2025-05-02T09:30",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/api/teacher/appointments/export", teacherTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Appointments - Dr. Rao - 2025-05-01.xlsx")
	// xlsx — zip-архив
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["db"])

	e = newEnv(t, func(d *Deps) { d.Redis = failingPinger{} })
	w = e.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", decode(t, w)["redis"])
}

func TestRateLimit(t *testing.T) {
	e := newEnv(t, func(d *Deps) { d.RateLimitPerMin = 2 })
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, e.do(http.MethodGet, "/healthz", "", nil).Code)
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get(requestIDHdr))

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSAllowList(t *testing.T) {
	e := newEnv(t, func(d *Deps) { d.CORSOrigins = []string{"https://portal.school.io"} })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		return rec
	}

	ok := preflight("https://portal.school.io")
	assert.Equal(t, http.StatusNoContent, ok.Code)
	assert.Equal(t, "https://portal.school.io", ok.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", ok.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", ok.Header().Get("Vary"))

	evil := preflight("https://evil.example")
	assert.Empty(t, evil.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, evil.Header().Get("Access-Control-Allow-Credentials"))
}

func TestStudentApprovalRecord(t *testing.T) {
	e := newEnv(t)
	admin := e.register("Admin", "admin@x.com", "admin")
	stu := e.approvedStudent(admin, "Ravi", "ravi@x.com")

	w := e.do(http.MethodGet, "/api/session", stu, nil)
	require.Equal(t, http.StatusOK, w.Code)
	id := decode(t, w)["accountId"].(string)

	w = e.do(http.MethodGet, "/api/admin/students/"+id+"/approval", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec := decode(t, w)["approval"].(map[string]any)
	assert.Equal(t, "ravi@x.com", rec["email"])
	assert.Equal(t, "approved", rec["status"])
	assert.Equal(t, "2025-05-01T10:00:00Z", rec["approvedAt"])

	w = e.do(http.MethodGet, "/api/admin/students/"+id+"/approval", stu, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	pending := e.register("Nina", "nina@x.com", "student")
	w = e.do(http.MethodGet, "/api/session", pending, nil)
	pid := decode(t, w)["accountId"].(string)
	w = e.do(http.MethodGet, "/api/admin/students/"+pid+"/approval", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTelegramLinkCode(t *testing.T) {
	e := newEnv(t)
	tok := e.register("Admin", "admin@x.com", "admin")

	w := e.do(http.MethodPost, "/api/profile/telegram-link", tok, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	code := body["code"].(string)
	assert.Len(t, code, 8)
	assert.Equal(t, "/link "+code, body["command"])

	w = e.do(http.MethodPost, "/api/profile/telegram-link", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
