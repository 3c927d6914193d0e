// README: Location handlers; nearest point, radius search, point registration.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"caddy/internal/modules/location"
	"caddy/internal/types"
)

type locationService interface {
	Closest(ctx context.Context, q types.Point, category string) (location.Match, error)
	Nearby(ctx context.Context, q types.Point, radiusM float64) ([]location.Match, error)
	Add(ctx context.Context, p location.Point) (*location.Point, error)
}

type pointResponse struct {
	ID             int64     `json:"id"`
	CourseID       *int64    `json:"course_id,omitempty"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	DistanceMeters *float64  `json:"distance_meters,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toPointResponse(p location.Point) pointResponse {
	return pointResponse{
		ID:        p.ID,
		CourseID:  p.CourseID,
		Name:      p.Name,
		Category:  p.Category,
		Latitude:  p.Position.Lat,
		Longitude: p.Position.Lng,
		CreatedAt: p.CreatedAt,
	}
}

func toMatchResponse(m location.Match) pointResponse {
	r := toPointResponse(m.Point)
	d := m.DistanceMeters
	r.DistanceMeters = &d
	return r
}

type addPointReq struct {
	CourseID  *int64  `json:"course_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type LocationHandler struct {
	location locationService
	logger   *zerolog.Logger
}

func NewLocationHandler(svc locationService, logger *zerolog.Logger) *LocationHandler {
	return &LocationHandler{location: svc, logger: logger}
}

func queryPoint(c *gin.Context) (types.Point, bool) {
	lat, err := queryFloat(c, "latitude")
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return types.Point{}, false
	}
	lng, err := queryFloat(c, "longitude")
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return types.Point{}, false
	}
	return types.Point{Lat: lat, Lng: lng}, true
}

// Closest handles GET /api/locations/closest?latitude=&longitude=&category=.
func (h *LocationHandler) Closest(c *gin.Context) {
	q, ok := queryPoint(c)
	if !ok {
		return
	}
	m, err := h.location.Closest(c.Request.Context(), q, c.Query("category"))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, toMatchResponse(m))
}

// Nearby handles GET /api/locations/nearby?latitude=&longitude=&radius_m=.
func (h *LocationHandler) Nearby(c *gin.Context) {
	q, ok := queryPoint(c)
	if !ok {
		return
	}
	radius, err := queryFloat(c, "radius_m")
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	matches, err := h.location.Nearby(c.Request.Context(), q, radius)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	out := make([]pointResponse, len(matches))
	for i, m := range matches {
		out[i] = toMatchResponse(m)
	}
	writeJSON(c, http.StatusOK, gin.H{"points": out})
}

// Add handles POST /api/locations.
func (h *LocationHandler) Add(c *gin.Context) {
	var req addPointReq
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.location.Add(c.Request.Context(), location.Point{
		CourseID: req.CourseID,
		Name:     req.Name,
		Category: req.Category,
		Position: types.Point{Lat: req.Latitude, Lng: req.Longitude},
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusCreated, toPointResponse(*p))
}
