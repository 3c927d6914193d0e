package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"caddy/internal/http/middleware"
	"caddy/internal/modules/aiusage"
	"caddy/internal/service"
	"caddy/internal/types"
)

// caddieTimeout bounds one narration, model call included.
const caddieTimeout = 15 * time.Second

type caddieService interface {
	Closest(ctx context.Context, req service.CaddieRequest) (*service.CaddieReply, error)
}

type quotaService interface {
	Remaining(ctx context.Context, uid string) (aiusage.Usage, error)
}

type caddieReq struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Category  string  `json:"category"`
	Club      string  `json:"club"`
	Question  string  `json:"question"`
}

type caddieResp struct {
	Tip       string        `json:"tip"`
	Generated bool          `json:"generated"`
	Provider  string        `json:"provider,omitempty"`
	Closest   pointResponse `json:"closest"`
}

type CaddieHandler struct {
	caddie caddieService
	quota  quotaService
	logger *zerolog.Logger
}

func NewCaddieHandler(svc caddieService, quota quotaService, logger *zerolog.Logger) *CaddieHandler {
	return &CaddieHandler{caddie: svc, quota: quota, logger: logger}
}

// Closest handles POST /api/caddie/closest.
func (h *CaddieHandler) Closest(c *gin.Context) {
	var req caddieReq
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), caddieTimeout)
	defer cancel()

	reply, err := h.caddie.Closest(ctx, service.CaddieRequest{
		UID:      middleware.CallerUID(c),
		Position: types.Point{Lat: req.Latitude, Lng: req.Longitude},
		Category: req.Category,
		Club:     req.Club,
		Question: req.Question,
	})
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, caddieResp{
		Tip:       reply.Tip,
		Generated: reply.Generated,
		Provider:  reply.Provider,
		Closest:   toMatchResponse(reply.Match),
	})
}

// Quota handles GET /api/caddie/quota.
func (h *CaddieHandler) Quota(c *gin.Context) {
	usage, err := h.quota.Remaining(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	writeJSON(c, http.StatusOK, usage)
}
