package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/profiles"
)

// toggle carries the enable/disable state shared by all criteria filters.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func apply(deps Deps, name string, v *profiles.Participants, keep func(*profiles.Participant) bool, fields ...zap.Field) (*profiles.Participants, Step) {
	initial := v.Len()
	excluded := v.Keep(keep)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Debug("excluding participants by "+name,
			append(fields,
				zap.Strings("excluded_participants", excluded),
				zap.Int("participants_left", v.Len()),
			)...,
		)
	}
	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}
}

type skillsFilter struct {
	toggle
	skills map[string]struct{}
}

// NewSkills creates a filter keeping participants that declare at least one
// of the queried skills. Matching is case-insensitive.
func NewSkills() Filter {
	return &skillsFilter{}
}

func (f *skillsFilter) Name() string { return "skills" }

func (f *skillsFilter) Validate(c *Criteria) error {
	f.skills = make(map[string]struct{}, len(c.Skills))
	for _, s := range c.Skills {
		if normalized := profiles.NormalizeSkill(s); normalized != "" {
			f.skills[normalized] = struct{}{}
		}
	}
	return nil
}

func (f *skillsFilter) Apply(_ context.Context, deps Deps, v *profiles.Participants) (*profiles.Participants, Step, error) {
	if len(f.skills) == 0 {
		return v, Step{Initial: v.Len(), Left: v.Len()}, nil
	}

	next, step := apply(deps, f.Name(), v, func(p *profiles.Participant) bool {
		return profiles.SkillOverlap(p.SkillSet(), f.skills) > 0
	})
	return next, step, nil
}

func (f *skillsFilter) Status() Status {
	details := map[string]string{}
	if len(f.skills) > 0 {
		skills := make([]string, 0, len(f.skills))
		for s := range f.skills {
			skills = append(skills, s)
		}
		details["skills"] = strings.Join(skills, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type techStackFilter struct {
	toggle
	stack []string
}

// NewTechStack creates a filter keeping participants that declare at least
// one of the queried tech stack entries verbatim.
func NewTechStack() Filter {
	return &techStackFilter{}
}

func (f *techStackFilter) Name() string { return "tech_stack" }

func (f *techStackFilter) Validate(c *Criteria) error {
	f.stack = nil
	for _, t := range c.TechStack {
		if t = strings.TrimSpace(t); t != "" {
			f.stack = append(f.stack, t)
		}
	}
	return nil
}

func (f *techStackFilter) Apply(_ context.Context, deps Deps, v *profiles.Participants) (*profiles.Participants, Step, error) {
	if len(f.stack) == 0 {
		return v, Step{Initial: v.Len(), Left: v.Len()}, nil
	}

	next, step := apply(deps, f.Name(), v, func(p *profiles.Participant) bool {
		for _, t := range f.stack {
			if p.HasTech(t) {
				return true
			}
		}
		return false
	}, zap.Strings("tech_stack", f.stack))
	return next, step, nil
}

func (f *techStackFilter) Status() Status {
	details := map[string]string{}
	if len(f.stack) > 0 {
		details["tech_stack"] = strings.Join(f.stack, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

// exactFilter keeps participants whose field equals the queried value.
type exactFilter struct {
	toggle
	name  string
	value string
	field func(*profiles.Participant) string
	pick  func(*Criteria) string
	check func(string) error
}

// NewRegion creates a filter on the exact region.
func NewRegion() Filter {
	return &exactFilter{
		name:  "region",
		field: func(p *profiles.Participant) string { return p.Region },
		pick:  func(c *Criteria) string { return c.Region },
	}
}

// NewAvailability creates a filter on the exact availability.
func NewAvailability() Filter {
	return &exactFilter{
		name:  "availability",
		field: func(p *profiles.Participant) string { return p.Availability },
		pick:  func(c *Criteria) string { return c.Availability },
	}
}

// NewExpertise creates a filter on the expertise tier. Unknown tiers are rejected.
func NewExpertise() Filter {
	return &exactFilter{
		name:  "expertise",
		field: func(p *profiles.Participant) string { return string(p.Expertise) },
		pick: func(c *Criteria) string {
			if known, ok := profiles.ParseExpertise(string(c.Expertise)); ok {
				return string(known)
			}
			return string(c.Expertise)
		},
		check: func(v string) error {
			if !profiles.Expertise(v).Valid() {
				return fmt.Errorf("%w: unknown expertise %q", profiles.ErrInvalidInput, v)
			}
			return nil
		},
	}
}

func (f *exactFilter) Name() string { return f.name }

func (f *exactFilter) Validate(c *Criteria) error {
	f.value = strings.TrimSpace(f.pick(c))
	if f.value != "" && f.check != nil {
		return f.check(f.value)
	}
	return nil
}

func (f *exactFilter) Apply(_ context.Context, deps Deps, v *profiles.Participants) (*profiles.Participants, Step, error) {
	if f.value == "" {
		return v, Step{Initial: v.Len(), Left: v.Len()}, nil
	}

	next, step := apply(deps, f.name, v, func(p *profiles.Participant) bool {
		return f.field(p) == f.value
	}, zap.String(f.name, f.value))
	return next, step, nil
}

func (f *exactFilter) Status() Status {
	details := map[string]string{}
	if f.value != "" {
		details[f.name] = f.value
	}
	return Status{Name: f.name, Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
