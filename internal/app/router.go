// Package app — HTTP-поверхность портала (gin) и жизненный цикл сервера.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Sarika191/Teacher-student-appointment/internal/booking"
	"github.com/Sarika191/Teacher-student-appointment/internal/ctxutil"
	"github.com/Sarika191/Teacher-student-appointment/internal/metrics"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

// Pinger — зависимость, проверяемая в /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Service         *booking.Service
	Log             *zap.SugaredLogger
	DB              Pinger
	Redis           Pinger // nil, если Redis не используется
	RateLimitPerMin int
	CORSOrigins     []string
}

type handlers struct {
	svc *booking.Service
	log *zap.SugaredLogger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestContext())
	r.Use(accessLog(d.Log))
	r.Use(corsMiddleware(d.CORSOrigins))
	r.Use(securityHeaders())
	if d.RateLimitPerMin > 0 {
		r.Use(newTokenBucket(d.RateLimitPerMin).middleware())
	}

	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/healthz", healthz(d.DB, d.Redis))

	h := &handlers{svc: d.Service, log: d.Log}
	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)

	authed := api.Group("", sessionAuth(d.Service))
	authed.POST("/auth/logout", h.logout)
	authed.GET("/session", h.session)
	authed.POST("/profile/telegram-link", h.telegramLink)
	authed.GET("/departments", h.departments)
	authed.GET("/departments/:department/teachers", h.teachersInDepartment)

	student := authed.Group("/student", requireRole(d.Service, models.Student))
	student.GET("/appointments", h.myAppointments)
	student.POST("/appointments", h.book)
	student.DELETE("/appointments/:id", h.cancel)

	teacher := authed.Group("/teacher", requireRole(d.Service, models.Teacher))
	teacher.GET("/students", h.approvedStudents)
	teacher.POST("/appointments", h.schedule)
	teacher.GET("/appointments", h.teacherAppointments)
	teacher.GET("/appointments/export", h.exportAppointments)
	teacher.POST("/appointments/:id/approve", h.approve)
	teacher.POST("/appointments/:id/complete", h.complete)
	teacher.DELETE("/appointments/:id", h.deleteAppointment)

	admin := authed.Group("/admin", requireRole(d.Service, models.Admin))
	admin.GET("/teachers", h.listTeachers)
	admin.POST("/teachers", h.createTeacher)
	admin.PATCH("/teachers/:id", h.updateTeacher)
	admin.DELETE("/teachers/:id", h.deleteTeacher)
	admin.GET("/students", h.listStudents)
	admin.POST("/students/:id/approve", h.approveStudent)
	admin.GET("/students/:id/approval", h.studentApproval)
	admin.GET("/actions", h.listActions)

	return r
}

func healthz(database, redis Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := ctxutil.WithTimeout(c.Request.Context(), 800*time.Millisecond)
		defer cancel()

		body := gin.H{"status": "ok"}
		status := http.StatusOK
		if database != nil {
			t0 := time.Now()
			if err := database.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["db"] = "down"
			} else {
				metrics.ObserveDBPing(time.Since(t0))
				body["db"] = "ok"
			}
		}
		if redis != nil {
			if err := redis.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["redis"] = "down"
			} else {
				body["redis"] = "ok"
			}
		}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	}
}
