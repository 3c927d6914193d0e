package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"caddy/internal/http/middleware"
	"caddy/internal/modules/auth"
)

type authService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.User, error)
	Login(ctx context.Context, in auth.LoginInput) (*auth.Session, error)
}

type AuthHandler struct {
	auth   authService
	logger *zerolog.Logger
}

func NewAuthHandler(svc authService, logger *zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var in auth.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusCreated, u)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var in auth.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	s, err := h.auth.Login(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, s)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"uid":   middleware.CallerUID(c),
		"email": middleware.CallerEmail(c),
		"role":  middleware.CallerRole(c),
	})
}
