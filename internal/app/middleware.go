package app

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sarika191/Teacher-student-appointment/internal/booking"
	"github.com/Sarika191/Teacher-student-appointment/internal/ctxutil"
	"github.com/Sarika191/Teacher-student-appointment/internal/metrics"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

const (
	sessionKey    = "session"
	sessionCookie = "portal_session"
	requestIDHdr  = "X-Request-ID"
)

// requestContext — id запроса в заголовке и в context.Context для логов/Sentry.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHdr)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHdr, id)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// accessLog — метод, путь, статус, длительность; /healthz и /metrics пропускаем.
func accessLog(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		path := c.Request.URL.Path
		if path == "/healthz" || path == "/metrics" {
			return
		}
		rid, _ := ctxutil.RequestID(c.Request.Context())
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"request_id", rid,
		}
		if acc, ok := ctxutil.AccountID(c.Request.Context()); ok {
			fields = append(fields, "account_id", acc)
		}
		switch {
		case status >= 500:
			log.Errorw("request", fields...)
		case status >= 400:
			log.Warnw("request", fields...)
		default:
			log.Infow("request", fields...)
		}
	}
}

// corsMiddleware — пустой allowed: любой origin, но без cookie ("*").
// Иначе origin отражается только из списка, и тогда разрешаем credentials.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	allow := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allow[strings.ToLower(strings.TrimRight(o, "/"))] = true
	}
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case len(allow) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && allow[strings.ToLower(origin)]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authz := c.GetHeader("Authorization")
	if len(authz) > len("bearer ") && strings.EqualFold(authz[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	if v, err := c.Cookie(sessionCookie); err == nil {
		return v
	}
	return ""
}

// sessionAuth — токен → booking.Session в контексте gin.
func sessionAuth(svc *booking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := svc.ResolveSession(c.Request.Context(), bearerToken(c))
		if err != nil {
			abortErr(c, err)
			return
		}
		c.Set(sessionKey, sess)
		c.Request = c.Request.WithContext(ctxutil.WithAccountID(c.Request.Context(), sess.AccountID))
		c.Next()
	}
}

// requireRole — доступ к кабинету; ученику нужен статус approved.
func requireRole(svc *booking.Service, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.RequireRole(session(c), role); err != nil {
			abortErr(c, err)
			return
		}
		c.Next()
	}
}

func session(c *gin.Context) booking.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return booking.Session{}
	}
	sess, _ := v.(booking.Session)
	return sess
}
