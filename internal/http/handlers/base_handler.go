// README: Base handler utilities (JSON helpers, query parsing, error mapping).
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"caddy/internal/http/middleware"
	"caddy/internal/modules/aiusage"
	"caddy/internal/modules/auth"
	"caddy/internal/modules/course"
	"caddy/internal/modules/location"
	"caddy/internal/modules/profile"
	"caddy/internal/modules/recommend"
	"caddy/internal/shot"
	"caddy/internal/weather"
)

type errorResponse struct {
	Error string `json:"error"`
}

type invalidClub struct {
	Index  int    `json:"index"`
	Club   string `json:"club_name,omitempty"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type invalidClubsResponse struct {
	Error        string        `json:"error"`
	InvalidClubs []invalidClub `json:"invalid_clubs"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeServiceError maps module errors to status codes. Anything unmapped is
// logged and reported as a generic 500.
func writeServiceError(c *gin.Context, logger *zerolog.Logger, err error) {
	if ir, ok := recommend.IsInvalidRecords(err); ok {
		resp := invalidClubsResponse{Error: "invalid club records", InvalidClubs: make([]invalidClub, len(ir.Records))}
		for i, r := range ir.Records {
			resp.InvalidClubs[i] = invalidClub{Index: r.Index, Club: r.Club, Field: r.Field, Reason: r.Reason}
		}
		writeJSON(c, http.StatusBadRequest, resp)
		return
	}

	switch {
	case isAny(err, shot.ErrInvalidInput, location.ErrInvalidInput, profile.ErrInvalidInput,
		course.ErrInvalidInput, auth.ErrInvalidInput, weather.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, err.Error())
	case isAny(err, shot.ErrNoRecords, location.ErrNoPoints, profile.ErrNotFound, course.ErrNotFound, auth.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case isAny(err, profile.ErrConflict, auth.ErrEmailTaken):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, aiusage.ErrInsufficientTokens):
		writeError(c, http.StatusTooManyRequests, "monthly caddie quota exhausted")
	case isAny(err, weather.ErrUnavailable, weather.ErrNotConfigured):
		logger.Warn().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("weather provider failed")
		writeError(c, http.StatusServiceUnavailable, "weather provider unavailable")
	default:
		logger.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

// queryFloat parses a required float query parameter.
func queryFloat(c *gin.Context, name string) (float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

// queryInt parses an optional int query parameter; def is used when absent.
func queryInt(c *gin.Context, name string, def int64) (int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
