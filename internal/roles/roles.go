// Package roles suggests in-team roles and a leader from declared skills.
//
// Leader selection and role fit use separate expertise scales. Keep them apart.
package roles

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/hackmate/internal/profiles"
)

const (
	Leader   = "leader"
	Backend  = "backend"
	Frontend = "frontend"
	ML       = "ml"
	Designer = "designer"
	DevOps   = "devops"
)

const (
	// MaxRolesPerMember is the number of roles kept per member, leader excluded.
	MaxRolesPerMember = 2
	keywordPoints     = 10
)

var ErrInvalidTable = errors.New("invalid role table")

// RoleKeywords lists the skill fragments that hint at a role.
type RoleKeywords struct {
	Role     string   `mapstructure:"role" json:"role"`
	Keywords []string `mapstructure:"keywords" json:"keywords"`
}

// Table is an ordered role taxonomy. The order breaks score ties.
type Table []RoleKeywords

// DefaultTable returns the built-in taxonomy.
func DefaultTable() Table {
	return Table{
		{Role: Backend, Keywords: []string{"node", "express", "api", "database", "mongo", "sql", "python", "java"}},
		{Role: Frontend, Keywords: []string{"react", "vue", "angular", "css", "html", "tailwind", "ui"}},
		{Role: ML, Keywords: []string{"ml", "machine learning", "data", "pytorch", "tensorflow", "model", "ai"}},
		{Role: Designer, Keywords: []string{"design", "figma", "ux", "ui/ux", "wireframe", "branding"}},
		{Role: DevOps, Keywords: []string{"docker", "kubernetes", "deploy", "ci", "cd", "pipeline", "cloud", "aws", "render", "vercel"}},
	}
}

// Assignment is the ordered role list of one member.
type Assignment struct {
	ID    string   `json:"id"`
	Roles []string `json:"roles"`
}

// IsLeader reports whether the assignment carries the leader tag.
func (a Assignment) IsLeader() bool {
	return len(a.Roles) > 0 && a.Roles[0] == Leader
}

// RoleScore is the fit of a member for a single role.
type RoleScore struct {
	Role  string `json:"role"`
	Score int    `json:"score"`
}

// Assigner scores members against a role table. It is immutable and safe for
// concurrent use.
type Assigner struct {
	table Table
}

// NewAssigner validates and normalizes the table. An empty table selects
// DefaultTable.
func NewAssigner(table Table) (*Assigner, error) {
	if len(table) == 0 {
		table = DefaultTable()
	}

	normalized := make(Table, 0, len(table))
	seen := make(map[string]struct{}, len(table))
	for _, entry := range table {
		role := strings.ToLower(strings.TrimSpace(entry.Role))
		switch {
		case role == "":
			return nil, fmt.Errorf("%w: empty role name", ErrInvalidTable)
		case role == Leader:
			return nil, fmt.Errorf("%w: %q is reserved", ErrInvalidTable, Leader)
		}
		if _, ok := seen[role]; ok {
			return nil, fmt.Errorf("%w: duplicated role %q", ErrInvalidTable, role)
		}
		seen[role] = struct{}{}

		keywords := make([]string, 0, len(entry.Keywords))
		distinct := make(map[string]struct{}, len(entry.Keywords))
		for _, k := range entry.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k == "" {
				continue
			}
			if _, ok := distinct[k]; ok {
				continue
			}
			distinct[k] = struct{}{}
			keywords = append(keywords, k)
		}
		normalized = append(normalized, RoleKeywords{Role: role, Keywords: keywords})
	}

	return &Assigner{table: normalized}, nil
}

// Table returns a copy of the normalized taxonomy.
func (a *Assigner) Table() Table {
	out := make(Table, len(a.table))
	copy(out, a.table)
	return out
}

// leaderBonus weighs overall seniority when picking the leader.
func leaderBonus(e profiles.Expertise) int {
	switch e {
	case profiles.Advanced:
		return 10
	case profiles.Intermediate:
		return 5
	default:
		return 0
	}
}

// roleFitBonus weighs expertise on top of keyword hits for a role.
func roleFitBonus(e profiles.Expertise) int {
	switch e {
	case profiles.Advanced:
		return 15
	case profiles.Intermediate:
		return 7
	default:
		return 0
	}
}

// Scores rates the member for every role in table order.
func (a *Assigner) Scores(member *profiles.Participant) []RoleScore {
	skills := member.NormalizedSkills()
	bonus := roleFitBonus(member.Expertise)

	scores := make([]RoleScore, 0, len(a.table))
	for _, entry := range a.table {
		score := bonus
		for _, keyword := range entry.Keywords {
			for _, skill := range skills {
				if strings.Contains(skill, keyword) {
					score += keywordPoints
					break
				}
			}
		}
		scores = append(scores, RoleScore{Role: entry.Role, Score: score})
	}

	return scores
}

// TopRoles returns up to MaxRolesPerMember roles with a positive score, best
// first, ties resolved by table order.
func (a *Assigner) TopRoles(member *profiles.Participant) []string {
	scores := a.Scores(member)
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	roles := make([]string, 0, MaxRolesPerMember)
	for _, s := range scores {
		if s.Score <= 0 || len(roles) == MaxRolesPerMember {
			break
		}
		roles = append(roles, s.Role)
	}
	return roles
}

// PickLeader picks the member with the highest skill count plus seniority bonus.
// The earliest member wins ties. It returns -1 for an empty team.
func PickLeader(members []*profiles.Participant) int {
	best, bestScore := -1, 0
	for idx, m := range members {
		if m == nil {
			continue
		}
		score := len(m.NormalizedSkills()) + leaderBonus(m.Expertise)
		if best == -1 || score > bestScore {
			best, bestScore = idx, score
		}
	}
	return best
}

// Assign suggests roles for every member and tags exactly one leader.
// Assignments keep the member order; nil members are skipped.
func (a *Assigner) Assign(members []*profiles.Participant) []Assignment {
	assignments := make([]Assignment, 0, len(members))
	leader := PickLeader(members)

	for idx, m := range members {
		if m == nil {
			continue
		}

		roles := a.TopRoles(m)
		if idx == leader {
			roles = append([]string{Leader}, roles...)
		}
		assignments = append(assignments, Assignment{ID: m.ID, Roles: roles})
	}

	return assignments
}
