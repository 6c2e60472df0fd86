package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/logger"
	"github.com/spigell/hackmate/internal/profiles"
)

const (
	DefaultTimeout       = 60 * time.Second
	DefaultMaxCandidates = 50
	DefaultMaxResults    = 5
	defaultMaxLogLength  = 200
)

// Matcher asks a completion service to rank teammates for a participant and
// degrades to Fallback whenever the service cannot give a usable answer.
type Matcher struct {
	completer     Completer
	logger        *zap.Logger
	recorder      Recorder
	timeout       time.Duration
	maxCandidates int
	maxResults    int
	maxLogLen     int
}

type Option func(*Matcher)

func WithTimeout(timeout time.Duration) Option {
	return func(m *Matcher) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

func WithMaxCandidates(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxCandidates = n
		}
	}
}

func WithMaxResults(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxResults = n
		}
	}
}

func WithMaxLogLength(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxLogLen = n
		}
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(m *Matcher) {
		m.recorder = recorder
	}
}

// NewMatcher builds a Matcher. A nil completer disables the model call and every
// run returns the fallback.
func NewMatcher(completer Completer, log *zap.Logger, opts ...Option) *Matcher {
	if log == nil {
		log = zap.NewNop()
	}

	m := &Matcher{
		completer:     completer,
		logger:        log,
		timeout:       DefaultTimeout,
		maxCandidates: DefaultMaxCandidates,
		maxResults:    DefaultMaxResults,
		maxLogLen:     defaultMaxLogLength,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Provider returns the name of the wired completion provider, or "none".
func (m *Matcher) Provider() string {
	if d, ok := m.completer.(describer); ok {
		return d.Provider()
	}
	if m.completer == nil {
		return "none"
	}
	return "custom"
}

// Model returns the model name of the wired completion provider when known.
func (m *Matcher) Model() string {
	if d, ok := m.completer.(describer); ok {
		return d.Model()
	}
	return ""
}

// Candidates returns the slice that is sent to the model: candidates without
// the user and nil entries, capped at the configured maximum.
func (m *Matcher) Candidates(user *profiles.Participant, candidates []*profiles.Participant) []*profiles.Participant {
	pool := make([]*profiles.Participant, 0, min(len(candidates), m.maxCandidates))
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}
		if user != nil && candidate.ID == user.ID {
			continue
		}
		pool = append(pool, candidate)
		if len(pool) == m.maxCandidates {
			break
		}
	}
	return pool
}

// ScoreMatch ranks candidates for user. Completion failures, timeouts and
// unparseable output never fail the call: they produce the fallback for the
// candidate slice. The only error is a missing user.
func (m *Matcher) ScoreMatch(ctx context.Context, user *profiles.Participant, candidates []*profiles.Participant) ([]MatchResult, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: target participant is required", profiles.ErrInvalidInput)
	}

	started := time.Now()
	log := logger.WithRun(m.logger, uuid.NewString(), m.Provider(), m.Model())
	log = log.With(zap.String("user_id", user.ID))

	pool := m.Candidates(user, candidates)
	if len(pool) == 0 {
		log.Debug("no candidates to match")
		return []MatchResult{}, nil
	}

	results, outcome := m.run(ctx, log, user, pool)

	elapsed := time.Since(started)
	if m.recorder != nil {
		m.recorder.ObserveMatch(string(outcome), elapsed.Seconds())
	}

	log.Info("auto-match finished",
		zap.String(logger.FieldOutcome, string(outcome)),
		zap.Int("candidates", len(pool)),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", elapsed),
	)

	return results, nil
}

func (m *Matcher) run(ctx context.Context, log *zap.Logger, user *profiles.Participant, pool []*profiles.Participant) ([]MatchResult, Outcome) {
	if m.completer == nil {
		return Fallback(user, pool), OutcomeFallbackDisable
	}

	prompt, err := buildPrompt(user, pool, m.maxResults)
	if err != nil {
		log.Warn("failed to build prompt", zap.Error(err))
		return Fallback(user, pool), OutcomeFallbackCall
	}

	log.Debug("completion request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.Truncate(prompt, m.maxLogLen)),
	)

	raw, err := m.complete(ctx, prompt)
	if err != nil {
		log.Warn("completion failed, using fallback", zap.Error(err))
		return Fallback(user, pool), OutcomeFallbackCall
	}

	log.Debug("completion response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.Truncate(raw, m.maxLogLen)),
	)

	results, err := m.toResults(raw, pool)
	if err != nil {
		log.Warn("model output rejected, using fallback", zap.Error(err))
		return Fallback(user, pool), OutcomeFallbackParse
	}

	return results, OutcomeAI
}

type completion struct {
	text string
	err  error
}

// complete makes exactly one call and gives up when the timeout expires even if
// the completer ignores its context.
func (m *Matcher) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		text, err := m.completer.GenerateContent(ctx, prompt)
		done <- completion{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrExternalService, ctx.Err())
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, ErrExternalService) {
				return "", res.err
			}
			return "", fmt.Errorf("%w: %w", ErrExternalService, res.err)
		}
		return res.text, nil
	}
}

// toResults keeps entries that reference a candidate of the pool, once each,
// up to the configured maximum.
func (m *Matcher) toResults(raw string, pool []*profiles.Participant) ([]MatchResult, error) {
	entries, err := parseEntries(raw)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(pool))
	for _, candidate := range pool {
		known[candidate.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(entries))
	results := make([]MatchResult, 0, min(len(entries), m.maxResults))
	for _, entry := range entries {
		id := coerceString(entry["id"])
		if _, ok := known[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		results = append(results, MatchResult{
			ID:             id,
			Score:          clampScore(coerceFloat(entry["score"])),
			Reason:         coerceString(entry["reason"]),
			RoleSuggestion: coerceString(entry["roleSuggestion"]),
		})
		if len(results) == m.maxResults {
			break
		}
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no entry references a known candidate", ErrParse)
	}

	return results, nil
}
