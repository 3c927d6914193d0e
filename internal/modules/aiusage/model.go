package aiusage

import "errors"

// ErrInsufficientTokens is returned when a user has no tokens remaining for the current month.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// DefaultTokens is the monthly allowance used when none is configured.
const DefaultTokens = 100

// monthLayout formats last_reset_month.
const monthLayout = "2006-01"

// Usage is a user's quota for the current month.
type Usage struct {
	UID             string `json:"uid"`
	TokensRemaining int    `json:"tokens_remaining"`
	Month           string `json:"month"`
}
