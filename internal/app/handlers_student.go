package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sarika191/Teacher-student-appointment/internal/booking"
)

func (h *handlers) myAppointments(c *gin.Context) {
	list, err := h.svc.MyAppointments(c.Request.Context(), session(c))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": toAppointmentViews(list, h.svc.Location())})
}

func (h *handlers) book(c *gin.Context) {
	var in booking.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}
	a, err := h.svc.Book(c.Request.Context(), session(c), in)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Appointment booked successfully!",
		"appointment": toAppointment(a, h.svc.Location()),
	})
}

func (h *handlers) cancel(c *gin.Context) {
	if err := h.svc.CancelAppointment(c.Request.Context(), session(c), c.Param("id")); err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted."})
}
