package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"caddy/internal/modules/profile"
)

type profileService interface {
	Create(ctx context.Context, in profile.CreateInput) (*profile.Golfer, error)
	UpdateClubs(ctx context.Context, in profile.UpdateInput) (int64, error)
	GetByEmail(ctx context.Context, email string) (*profile.Profile, error)
	AllClubs(ctx context.Context) ([]profile.Club, error)
}

type ProfileHandler struct {
	profiles profileService
	logger   *zerolog.Logger
}

func NewProfileHandler(svc profileService, logger *zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: svc, logger: logger}
}

// Create handles POST /api/profiles.
func (h *ProfileHandler) Create(c *gin.Context) {
	var in profile.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	g, err := h.profiles.Create(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"message": "Profile created successfully", "golfer_id": g.ID})
}

// Update handles PUT /api/profiles; the club set is replaced wholesale.
func (h *ProfileHandler) Update(c *gin.Context) {
	var in profile.UpdateInput
	if !bindJSON(c, &in) {
		return
	}
	id, err := h.profiles.UpdateClubs(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "Profile updated successfully", "golfer_id": id})
}

// Get handles GET /api/profiles?email=.
func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.profiles.GetByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

// Clubs handles GET /api/clubs.
func (h *ProfileHandler) Clubs(c *gin.Context) {
	clubs, err := h.profiles.AllClubs(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"clubs": clubs})
}
