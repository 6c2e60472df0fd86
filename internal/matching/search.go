package matching

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/filtering"
	"github.com/spigell/hackmate/internal/profiles"
)

const (
	DefaultSearchLimit = 50

	baseScore    = 30
	overlapScore = 20
	maxScore     = 100
)

// Query is a skill search with optional exact-match filters.
type Query struct {
	filtering.Criteria
	Limit int `json:"limit,omitempty"`
}

// Result is a scored search candidate.
type Result struct {
	Participant *profiles.Participant `json:"user"`
	Score       int                   `json:"score"`
}

// CompatibilityScore rates a candidate against the queried skills.
func CompatibilityScore(candidate *profiles.Participant, query map[string]struct{}) int {
	overlap := profiles.SkillOverlap(candidate.SkillSet(), query)
	return min(maxScore, baseScore+overlapScore*overlap)
}

// Search filters the pool by the query criteria and scores every remaining
// candidate. Results are ordered by score, best first; equal scores keep pool
// order. Only an invalid query returns an error.
func Search(ctx context.Context, pool []*profiles.Participant, q Query, logger *zap.Logger) ([]Result, error) {
	steps := filtering.ForCriteria(&q.Criteria)
	candidates, err := filtering.Run(ctx, &q.Criteria, filtering.Deps{Logger: logger}, steps, &profiles.Participants{Items: compact(pool)})
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Debug("search filters", zap.Any("filters", filtering.Describe(steps)))
	}

	querySkills := (&profiles.Participant{Skills: q.Skills}).SkillSet()

	results := make([]Result, 0, candidates.Len())
	for _, p := range candidates.Items {
		results = append(results, Result{Participant: p, Score: CompatibilityScore(p, querySkills)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func compact(pool []*profiles.Participant) []*profiles.Participant {
	out := make([]*profiles.Participant, 0, len(pool))
	for _, p := range pool {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
