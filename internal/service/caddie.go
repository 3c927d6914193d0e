// README: Caddie narration; closest pin + quota check + LLM tip.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"caddy/internal/ai"
	"caddy/internal/modules/location"
	"caddy/internal/types"
)

type pinLocator interface {
	Closest(ctx context.Context, q types.Point, category string) (location.Match, error)
}

type tokenSpender interface {
	UseToken(ctx context.Context, uid string) error
}

// Caddie turns a nearest-point lookup into a short spoken tip.
type Caddie struct {
	locator pinLocator
	quota   tokenSpender
	llm     ai.LLMProvider
	logger  *zerolog.Logger
}

// NewCaddie wires the caddie. llm may be nil, in which case every tip is the
// plain template and no quota is consumed.
func NewCaddie(locator pinLocator, quota tokenSpender, llm ai.LLMProvider, logger *zerolog.Logger) *Caddie {
	return &Caddie{locator: locator, quota: quota, llm: llm, logger: logger}
}

type CaddieRequest struct {
	UID      string
	Position types.Point
	Category string
	Club     string
	Question string
}

type CaddieReply struct {
	Match    location.Match
	Tip      string
	Provider string
	// Generated is false when the tip is the template fallback.
	Generated bool
}

// Closest finds the nearest point to the golfer and narrates it. Lookup
// errors and aiusage.ErrInsufficientTokens are returned unchanged; a failing
// model degrades to the template tip.
func (c *Caddie) Closest(ctx context.Context, req CaddieRequest) (*CaddieReply, error) {
	if strings.TrimSpace(req.UID) == "" {
		return nil, errors.New("caddie: caller uid is required")
	}
	match, err := c.locator.Closest(ctx, req.Position, req.Category)
	if err != nil {
		return nil, err
	}

	pin := ai.ClosestPin{
		Name:           match.Point.Name,
		Category:       match.Point.Category,
		DistanceMeters: match.DistanceMeters,
		Club:           strings.TrimSpace(req.Club),
	}
	reply := &CaddieReply{Match: match, Tip: templateTip(pin)}
	if c.llm == nil {
		return reply, nil
	}

	if err := c.quota.UseToken(ctx, req.UID); err != nil {
		return nil, err
	}

	tip, err := c.llm.Complete(ctx, ai.CaddiePrompt(pin, req.Question))
	if err != nil {
		c.logger.Warn().Err(err).Str("provider", c.llm.Name()).Str("uid", req.UID).Msg("caddie narration failed, using template")
		return reply, nil
	}
	reply.Tip = tip
	reply.Provider = c.llm.Name()
	reply.Generated = true
	return reply, nil
}

func templateTip(p ai.ClosestPin) string {
	tip := fmt.Sprintf("The closest object is %s, %.0f meters away.", p.Name, p.DistanceMeters)
	if p.Club != "" {
		tip += fmt.Sprintf(" Consider your %s.", p.Club)
	}
	return tip
}
