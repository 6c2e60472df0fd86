package profiles

import (
	"strings"
)

type Expertise string

const (
	Beginner     Expertise = "Beginner"
	Intermediate Expertise = "Intermediate"
	Advanced     Expertise = "Advanced"
)

// DefaultExpertise is applied to records that do not declare a tier.
const DefaultExpertise = Intermediate

// Valid reports whether e is one of the known tiers. The empty value is not valid.
func (e Expertise) Valid() bool {
	switch e {
	case Beginner, Intermediate, Advanced:
		return true
	default:
		return false
	}
}

// ParseExpertise matches s against the known tiers ignoring case and
// surrounding spaces.
func ParseExpertise(s string) (Expertise, bool) {
	s = strings.TrimSpace(s)
	for _, known := range []Expertise{Beginner, Intermediate, Advanced} {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Participant is a hackathon profile as provided by the profile store.
// It must not be mutated while a matching request is running.
type Participant struct {
	ID            string    `json:"id" validate:"required"`
	Name          string    `json:"name,omitempty"`
	Skills        []string  `json:"skills" validate:"dive,required"`
	TechStack     []string  `json:"techStack,omitempty"`
	Expertise     Expertise `json:"expertise,omitempty" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Region        string    `json:"region,omitempty"`
	Availability  string    `json:"availability,omitempty"`
	PreferredRole string    `json:"preferredRole,omitempty"`
}

// NormalizeSkill folds a skill into its comparable form.
func NormalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}

// SkillSet returns the distinct normalized skills of the participant.
// Blank skills are ignored.
func (p *Participant) SkillSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Skills))
	for _, skill := range p.Skills {
		normalized := NormalizeSkill(skill)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

// NormalizedSkills returns the distinct normalized skills in declaration order.
func (p *Participant) NormalizedSkills() []string {
	seen := make(map[string]struct{}, len(p.Skills))
	skills := make([]string, 0, len(p.Skills))
	for _, skill := range p.Skills {
		normalized := NormalizeSkill(skill)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		skills = append(skills, normalized)
	}
	return skills
}

// HasTech reports whether the participant declares the exact tech stack entry.
func (p *Participant) HasTech(tech string) bool {
	for _, t := range p.TechStack {
		if t == tech {
			return true
		}
	}
	return false
}

// SkillOverlap counts skills present in both sets.
func SkillOverlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	overlap := 0
	for skill := range a {
		if _, ok := b[skill]; ok {
			overlap++
		}
	}
	return overlap
}

// Participants is an ordered collection of profiles.
type Participants struct {
	Items []*Participant
}

func (ps *Participants) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.Items)
}

func (ps *Participants) IDs() []string {
	ids := make([]string, 0, ps.Len())
	for _, p := range ps.Items {
		ids = append(ids, p.ID)
	}
	return ids
}

func (ps *Participants) FindByID(id string) *Participant {
	for _, p := range ps.Items {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Labels returns human readable labels used by interactive pickers.
func (ps *Participants) Labels() []string {
	labels := make([]string, 0, ps.Len())
	for _, p := range ps.Items {
		name := p.Name
		if name == "" {
			name = "-"
		}
		labels = append(labels, p.ID+" "+name+" / "+strings.Join(p.Skills, ","))
	}
	return labels
}

// Select returns the participants with the given ids in the order of ids.
// Unknown ids yield ErrNotFound.
func (ps *Participants) Select(ids []string) (*Participants, error) {
	selected := &Participants{Items: make([]*Participant, 0, len(ids))}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		p := ps.FindByID(id)
		if p == nil {
			return nil, notFound(id)
		}
		selected.Items = append(selected.Items, p)
	}
	return selected, nil
}

// Keep removes every participant for which keep returns false and reports
// the removed ids. Order of the remaining participants is preserved.
func (ps *Participants) Keep(keep func(*Participant) bool) []string {
	var excluded []string
	kept := make([]*Participant, 0, len(ps.Items))
	for _, p := range ps.Items {
		if keep(p) {
			kept = append(kept, p)
			continue
		}
		excluded = append(excluded, p.ID)
	}
	ps.Items = kept
	return excluded
}

// Exclude drops participants with the given ids.
func (ps *Participants) Exclude(ids ...string) []string {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	return ps.Keep(func(p *Participant) bool {
		_, found := drop[p.ID]
		return !found
	})
}

// Clone returns a shallow copy whose item slice can be filtered independently.
func (ps *Participants) Clone() *Participants {
	if ps == nil {
		return &Participants{}
	}
	items := make([]*Participant, len(ps.Items))
	copy(items, ps.Items)
	return &Participants{Items: items}
}
