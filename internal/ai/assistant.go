package ai

import (
	"context"
)

const (
	FallbackReason = "Heuristic fallback match"
	DefaultRole    = "Teammate"
)

// MatchResult is a scored teammate suggestion. The model path and the
// fallback path produce the same shape.
type MatchResult struct {
	ID             string `json:"id"`
	Score          int    `json:"score"`
	Reason         string `json:"reason"`
	RoleSuggestion string `json:"roleSuggestion"`
}

// Completer sends a prompt to a text completion service.
type Completer interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// describer is implemented by completers that can name themselves in logs.
type describer interface {
	Provider() string
	Model() string
}

// Outcome tells how an auto-match run was resolved.
type Outcome string

const (
	OutcomeAI              Outcome = "ai"
	OutcomeFallbackCall    Outcome = "fallback_call"
	OutcomeFallbackParse   Outcome = "fallback_parse"
	OutcomeFallbackDisable Outcome = "fallback_disabled"
)

// Recorder receives auto-match telemetry.
type Recorder interface {
	ObserveMatch(outcome string, seconds float64)
}
