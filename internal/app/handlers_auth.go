package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sarika191/Teacher-student-appointment/internal/booking"
	"github.com/Sarika191/Teacher-student-appointment/internal/menu"
)

type grantJSON struct {
	Token           string `json:"token"`
	ExpiresAt       int64  `json:"expiresAt"`
	Role            string `json:"role"`
	Redirect        string `json:"redirect"`
	RedirectDelayMs int64  `json:"redirectDelayMs"`
	Message         string `json:"message"`
}

func (h *handlers) writeGrant(c *gin.Context, status int, g booking.Grant) {
	maxAge := int(time.Until(g.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, g.Token, maxAge, "/", "", gin.Mode() == gin.ReleaseMode, true)
	c.JSON(status, grantJSON{
		Token:           g.Token,
		ExpiresAt:       g.ExpiresAt.Unix(),
		Role:            string(g.Role),
		Redirect:        g.Redirect,
		RedirectDelayMs: booking.RedirectDelay.Milliseconds(),
		Message:         g.Message,
	})
}

func (h *handlers) register(c *gin.Context) {
	var in booking.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}
	g, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		abortErr(c, err)
		return
	}
	h.writeGrant(c, http.StatusCreated, g)
}

func (h *handlers) login(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c)
		return
	}
	g, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		abortErr(c, err)
		return
	}
	h.writeGrant(c, http.StatusOK, g)
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), session(c)); err != nil {
		abortErr(c, err)
		return
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", gin.Mode() == gin.ReleaseMode, true)
	c.JSON(http.StatusOK, gin.H{"redirect": menu.EntryPage})
}

func (h *handlers) session(c *gin.Context) {
	sess := session(c)
	role := sess.Role()
	home, _ := menu.HomePage(role)
	c.JSON(http.StatusOK, gin.H{
		"accountId": sess.AccountID,
		"profile":   toProfile(sess.Profile),
		"approved":  sess.Profile.IsApprovedStudent(),
		"home":      home,
		"menu":      menu.ForRole(role),
	})
}

func (h *handlers) departments(c *gin.Context) {
	list, err := h.svc.Departments(c.Request.Context(), session(c))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": list})
}

func (h *handlers) teachersInDepartment(c *gin.Context) {
	list, err := h.svc.TeachersInDepartment(c.Request.Context(), session(c), c.Param("department"))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teachers": toTeachers(list)})
}

func (h *handlers) telegramLink(c *gin.Context) {
	lc, err := h.svc.StartTelegramLink(c.Request.Context(), session(c))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":      lc.Code,
		"command":   "/link " + lc.Code,
		"expiresAt": lc.ExpiresAt.Unix(),
	})
}
