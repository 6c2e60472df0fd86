package ai

import (
	"strings"

	"github.com/spigell/hackmate/internal/profiles"
)

const (
	fallbackBase     = 60
	fallbackSpread   = 39
	fallbackPerSkill = 10
)

// Fallback scores every candidate without the model. Scores stay in [60,100)
// and grow with the skill overlap with the user, so the result is stable for
// identical input.
func Fallback(user *profiles.Participant, candidates []*profiles.Participant) []MatchResult {
	var userSkills map[string]struct{}
	if user != nil {
		userSkills = user.SkillSet()
	}

	results := make([]MatchResult, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}

		bonus := fallbackPerSkill * profiles.SkillOverlap(userSkills, candidate.SkillSet())
		if bonus > fallbackSpread {
			bonus = fallbackSpread
		}

		role := strings.TrimSpace(candidate.PreferredRole)
		if role == "" {
			role = DefaultRole
		}

		results = append(results, MatchResult{
			ID:             candidate.ID,
			Score:          fallbackBase + bonus,
			Reason:         FallbackReason,
			RoleSuggestion: role,
		})
	}

	return results
}
