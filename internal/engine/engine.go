// Package engine ties the profile store to the matching, role and AI packages.
// The CLI and the HTTP API both call it.
package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/ai"
	"github.com/spigell/hackmate/internal/graph"
	"github.com/spigell/hackmate/internal/matching"
	"github.com/spigell/hackmate/internal/profiles"
	"github.com/spigell/hackmate/internal/roles"
)

// DefaultPoolLimit caps how many stored profiles a recommendation or an
// auto-match run looks at.
const DefaultPoolLimit = 200

// Recorder receives per-operation counters.
type Recorder interface {
	ObserveRecommend(clusters int)
	ObserveSearch(results int)
	ObserveRoles()
}

type Engine struct {
	store    profiles.Store
	assigner *roles.Assigner
	matcher  *ai.Matcher
	logger   *zap.Logger
	recorder Recorder

	threshold   int
	maxResults  int
	searchLimit int
	poolLimit   int
}

type Option func(*Engine)

func WithThreshold(threshold int) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.threshold = threshold
		}
	}
}

func WithMaxResults(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxResults = n
		}
	}
}

func WithSearchLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.searchLimit = n
		}
	}
}

func WithPoolLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.poolLimit = n
		}
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(e *Engine) {
		e.recorder = recorder
	}
}

// New builds an Engine. A nil assigner uses the default role table and a nil
// matcher always answers auto-match requests with the fallback.
func New(store profiles.Store, assigner *roles.Assigner, matcher *ai.Matcher, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if assigner == nil {
		var err error
		if assigner, err = roles.NewAssigner(nil); err != nil {
			return nil, err
		}
	}
	if matcher == nil {
		matcher = ai.NewMatcher(nil, logger)
	}

	e := &Engine{
		store:       store,
		assigner:    assigner,
		matcher:     matcher,
		logger:      logger,
		threshold:   graph.DefaultThreshold,
		maxResults:  matching.DefaultMaxResults,
		searchLimit: matching.DefaultSearchLimit,
		poolLimit:   DefaultPoolLimit,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Participants returns every stored profile.
func (e *Engine) Participants(ctx context.Context) (*profiles.Participants, error) {
	ps, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return ps, nil
}

func (e *Engine) pool(ctx context.Context) (*profiles.Participants, error) {
	ps, err := e.Participants(ctx)
	if err != nil {
		return nil, err
	}
	if ps.Len() > e.poolLimit {
		e.logger.Debug("participant pool truncated", zap.Int("stored", ps.Len()), zap.Int("limit", e.poolLimit))
		ps = &profiles.Participants{Items: ps.Items[:e.poolLimit]}
	}
	return ps, nil
}

// Recommend returns the ranked team clusters of the stored profiles.
func (e *Engine) Recommend(ctx context.Context) ([]matching.Cluster, error) {
	ps, err := e.pool(ctx)
	if err != nil {
		return nil, err
	}

	clusters := matching.RecommendTeams(ps.Items,
		matching.WithThreshold(e.threshold),
		matching.WithMaxResults(e.maxResults),
	)

	e.logger.Debug("team clusters recommended",
		zap.Int("participants", ps.Len()),
		zap.Int("threshold", e.threshold),
		zap.Int("clusters", len(clusters)),
	)
	if e.recorder != nil {
		e.recorder.ObserveRecommend(len(clusters))
	}

	return clusters, nil
}

// Search scores the stored profiles against the query.
func (e *Engine) Search(ctx context.Context, q matching.Query) ([]matching.Result, error) {
	ps, err := e.Participants(ctx)
	if err != nil {
		return nil, err
	}

	if q.Limit <= 0 || q.Limit > e.searchLimit {
		q.Limit = e.searchLimit
	}

	results, err := matching.Search(ctx, ps.Items, q, e.logger)
	if err != nil {
		return nil, err
	}

	if e.recorder != nil {
		e.recorder.ObserveSearch(len(results))
	}

	return results, nil
}

// AutoMatchRequest names the target participant either by a stored id or
// by a full profile.
type AutoMatchRequest struct {
	UserID string                `json:"userId,omitempty"`
	User   *profiles.Participant `json:"userProfile,omitempty"`
}

type AutoMatchResponse struct {
	UserID   string           `json:"userId"`
	Provider string           `json:"provider"`
	Matches  []ai.MatchResult `json:"matches"`
}

// AutoMatch ranks teammates for the requested participant. A provided profile
// wins over the id. The target is removed from the stored profiles before the
// pool limit is applied.
func (e *Engine) AutoMatch(ctx context.Context, req AutoMatchRequest) (*AutoMatchResponse, error) {
	all, err := e.Participants(ctx)
	if err != nil {
		return nil, err
	}

	user := req.User
	switch {
	case user != nil:
		profiles.ApplyDefaults(user)
		if err := profiles.Validate(user); err != nil {
			return nil, err
		}
	case strings.TrimSpace(req.UserID) != "":
		selected, err := all.Select([]string{strings.TrimSpace(req.UserID)})
		if err != nil {
			return nil, err
		}
		user = selected.Items[0]
	default:
		return nil, fmt.Errorf("%w: userId or userProfile is required", profiles.ErrInvalidInput)
	}

	candidates := all.Clone()
	candidates.Exclude(user.ID)
	if candidates.Len() > e.poolLimit {
		candidates.Items = candidates.Items[:e.poolLimit]
	}

	matches, err := e.matcher.ScoreMatch(ctx, user, candidates.Items)
	if err != nil {
		return nil, err
	}

	return &AutoMatchResponse{
		UserID:   user.ID,
		Provider: e.matcher.Provider(),
		Matches:  matches,
	}, nil
}

// RolesRequest lists team members by stored id, by full profile, or both.
// Ids are resolved first and keep their order.
type RolesRequest struct {
	MemberIDs []string                `json:"memberIds,omitempty"`
	Members   []*profiles.Participant `json:"members,omitempty"`
}

// AssignRoles computes roles and the leader for the whole team.
func (e *Engine) AssignRoles(ctx context.Context, req RolesRequest) ([]roles.Assignment, error) {
	members := make([]*profiles.Participant, 0, len(req.MemberIDs)+len(req.Members))

	if len(req.MemberIDs) > 0 {
		ps, err := e.Participants(ctx)
		if err != nil {
			return nil, err
		}
		selected, err := ps.Select(req.MemberIDs)
		if err != nil {
			return nil, err
		}
		members = append(members, selected.Items...)
	}

	for _, m := range req.Members {
		if m != nil {
			profiles.ApplyDefaults(m)
		}
		members = append(members, m)
	}

	if err := profiles.ValidateAll(members); err != nil {
		return nil, err
	}

	assignments := e.assigner.Assign(members)
	if e.recorder != nil {
		e.recorder.ObserveRoles()
	}

	return assignments, nil
}
