package app

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sarika191/Teacher-student-appointment/internal/appointments"
	"github.com/Sarika191/Teacher-student-appointment/internal/booking"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *handlers) approvedStudents(c *gin.Context) {
	list, err := h.svc.ApprovedStudents(c.Request.Context(), session(c))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": toProfiles(list)})
}

func (h *handlers) schedule(c *gin.Context) {
	var in booking.ScheduleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}
	a, err := h.svc.Schedule(c.Request.Context(), session(c), in)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Appointment scheduled successfully!",
		"appointment": toAppointment(a, h.svc.Location()),
	})
}

func (h *handlers) teacherAppointments(c *gin.Context) {
	view, ok := appointments.ParseView(c.Query("view"))
	if !ok {
		badRequest(c)
		return
	}
	list, err := h.svc.TeacherAppointments(c.Request.Context(), session(c), view)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": view, "appointments": toAppointmentViews(list, h.svc.Location())})
}

func (h *handlers) transitionReply(c *gin.Context, a models.Appointment, err error) {
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     fmt.Sprintf("Appointment marked as %s.", a.Status),
		"appointment": toAppointment(a, h.svc.Location()),
	})
}

func (h *handlers) approve(c *gin.Context) {
	a, err := h.svc.Approve(c.Request.Context(), session(c), c.Param("id"))
	h.transitionReply(c, a, err)
}

func (h *handlers) complete(c *gin.Context) {
	a, err := h.svc.Complete(c.Request.Context(), session(c), c.Param("id"))
	h.transitionReply(c, a, err)
}

func (h *handlers) deleteAppointment(c *gin.Context) {
	if err := h.svc.DeleteTeacherAppointment(c.Request.Context(), session(c), c.Param("id")); err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully."})
}

// exportAppointments — файл собираем в памяти: при ошибке ответ ещё можно заменить на JSON.
func (h *handlers) exportAppointments(c *gin.Context) {
	var buf bytes.Buffer
	name, err := h.svc.ExportAppointments(c.Request.Context(), session(c), &buf)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
