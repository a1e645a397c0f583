package transport

import (
	"net/http"
	"time"

	"storefront-be/internal/auth"

	"github.com/gin-gonic/gin"
)

type adminHandler struct {
	svc auth.Service
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// login sets the token as an HttpOnly cookie and also returns it in the body
// for non-browser clients.
func (h *adminHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "password is required")
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, session.Token, maxAge, "/", "", c.Request.TLS != nil, true)
	c.JSON(http.StatusOK, session)
}

func (h *adminHandler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Status(http.StatusNoContent)
}
