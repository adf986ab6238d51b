package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sarika191/Teacher-student-appointment/internal/booking"
)

const (
	msgBadRequest      = "Invalid request."
	msgTooManyRequests = "Too many requests. Please slow down."
)

type errorBody struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func statusOf(kind booking.Kind) int {
	switch kind {
	case booking.KindValidation:
		return http.StatusBadRequest
	case booking.KindAuth:
		return http.StatusUnauthorized
	case booking.KindForbidden:
		return http.StatusForbidden
	case booking.KindNotFound:
		return http.StatusNotFound
	case booking.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortErr — ошибка сценария в JSON. Текст причины наружу не отдаём.
func abortErr(c *gin.Context, err error) {
	ue, ok := booking.AsUserError(err)
	if !ok {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: booking.MsgSomethingWrong})
		return
	}
	c.AbortWithStatusJSON(statusOf(ue.Kind), errorBody{Error: ue.Msg, Redirect: ue.Redirect})
}

func badRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: msgBadRequest})
}
