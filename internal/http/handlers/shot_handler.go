package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"caddy/internal/modules/profile"
	"caddy/internal/modules/recommend"
)

type recommendService interface {
	Simple(ctx context.Context, req recommend.GolferRequest) (*recommend.Recommendation, error)
	Conditions(ctx context.Context, req recommend.GolferRequest) (*recommend.Recommendation, error)
	Weather(ctx context.Context, req recommend.WeatherRequest) (*recommend.WeatherResult, error)
}

type shotTracker interface {
	TrackShot(ctx context.Context, in profile.ShotInput) (*profile.Shot, error)
	ShotHistory(ctx context.Context, golferID int64, limit int) ([]profile.Shot, error)
}

type ShotHandler struct {
	recommend recommendService
	shots     shotTracker
	logger    *zerolog.Logger
}

func NewShotHandler(rec recommendService, shots shotTracker, logger *zerolog.Logger) *ShotHandler {
	return &ShotHandler{recommend: rec, shots: shots, logger: logger}
}

// Recommend handles POST /api/shots/recommend.
func (h *ShotHandler) Recommend(c *gin.Context) {
	h.golfer(c, h.recommend.Simple)
}

// RecommendConditions handles POST /api/shots/recommend/conditions.
func (h *ShotHandler) RecommendConditions(c *gin.Context) {
	h.golfer(c, h.recommend.Conditions)
}

func (h *ShotHandler) golfer(c *gin.Context, run func(context.Context, recommend.GolferRequest) (*recommend.Recommendation, error)) {
	var req recommend.GolferRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := run(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, rec)
}

// RecommendWeather handles POST /api/shots/recommend/weather. A fallback
// suggestion is still a 200 with success=false.
func (h *ShotHandler) RecommendWeather(c *gin.Context) {
	var req recommend.WeatherRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.recommend.Weather(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

// Track handles POST /api/shots.
func (h *ShotHandler) Track(c *gin.Context) {
	var in profile.ShotInput
	if !bindJSON(c, &in) {
		return
	}
	sh, err := h.shots.TrackShot(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"message": "Shot tracked successfully", "shot": sh})
}

// History handles GET /api/shots?golfer_id=&limit=.
func (h *ShotHandler) History(c *gin.Context) {
	golferID, err := queryInt(c, "golfer_id", 0)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	shots, err := h.shots.ShotHistory(c.Request.Context(), golferID, int(limit))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"shots": shots})
}
