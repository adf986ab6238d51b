package app

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Sarika191/Teacher-student-appointment/internal/booking"
	"github.com/Sarika191/Teacher-student-appointment/internal/models"
)

func (h *handlers) listTeachers(c *gin.Context) {
	list, err := h.svc.ListTeachers(c.Request.Context(), session(c))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teachers": toTeachers(list)})
}

func (h *handlers) createTeacher(c *gin.Context) {
	var in booking.CreateTeacherInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}
	t, err := h.svc.CreateTeacher(c.Request.Context(), session(c), in)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Teacher added and account created.", "teacher": toTeacher(t)})
}

type teacherPatchRequest struct {
	Name           *string `json:"name"`
	Department     *string `json:"department"`
	Subject        *string `json:"subject"`
	TelegramChatID *int64  `json:"telegramChatId"`
}

func (h *handlers) updateTeacher(c *gin.Context) {
	var in teacherPatchRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}
	t, err := h.svc.UpdateTeacher(c.Request.Context(), session(c), c.Param("id"), models.TeacherPatch{
		Name:           in.Name,
		Department:     in.Department,
		Subject:        in.Subject,
		TelegramChatID: in.TelegramChatID,
	})
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated successfully.", "teacher": toTeacher(t)})
}

func (h *handlers) deleteTeacher(c *gin.Context) {
	if err := h.svc.DeleteTeacher(c.Request.Context(), session(c), c.Param("id")); err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Teacher deleted."})
}

func (h *handlers) listStudents(c *gin.Context) {
	list, err := h.svc.ListStudents(c.Request.Context(), session(c))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": toProfiles(list)})
}

func (h *handlers) approveStudent(c *gin.Context) {
	p, err := h.svc.ApproveStudent(c.Request.Context(), session(c), c.Param("id"))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%s is approved successfully!", p.Name),
		"student": toProfile(p),
	})
}

func (h *handlers) studentApproval(c *gin.Context) {
	a, err := h.svc.StudentApproval(c.Request.Context(), session(c), c.Param("id"))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approval": toApproval(a)})
}

func (h *handlers) listActions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.svc.ListActions(c.Request.Context(), session(c), limit)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": toActions(list)})
}
