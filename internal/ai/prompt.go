package ai

import (
	"fmt"
	"strings"
)

// ClosestPin is what the caddie knows about the golfer's position.
type ClosestPin struct {
	Name           string
	Category       string
	DistanceMeters float64
	Club           string // optional suggested club
}

// metersToYards converts for the spoken tip; golfers think in yards.
const metersToYards = 1.09361

// CaddiePrompt renders the instruction for a short spoken-style tip.
func CaddiePrompt(p ClosestPin, question string) string {
	var b strings.Builder
	b.WriteString("You are a friendly, concise golf caddie. Answer in at most two sentences, ")
	b.WriteString("as if speaking to the golfer on the course. Do not invent numbers.\n\n")
	fmt.Fprintf(&b, "Closest %s: %s\n", orDefault(p.Category, "point"), p.Name)
	fmt.Fprintf(&b, "Distance: %.0f yards (%.0f meters)\n", p.DistanceMeters*metersToYards, p.DistanceMeters)
	if p.Club != "" {
		fmt.Fprintf(&b, "Suggested club: %s\n", p.Club)
	}
	if q := strings.TrimSpace(question); q != "" {
		fmt.Fprintf(&b, "\nGolfer asks: %s\n", q)
	}
	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
