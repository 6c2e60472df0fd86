package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hackmate/internal/profiles"
)

// Filter represents a single filtering step applied to a participant pool.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(c *Criteria) error
	Apply(ctx context.Context, deps Deps, p *profiles.Participants) (*profiles.Participants, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Criteria holds the optional search filters. Empty fields do not filter.
type Criteria struct {
	Skills       []string           `json:"skills,omitempty"`
	TechStack    []string           `json:"techStack,omitempty"`
	Region       string             `json:"region,omitempty"`
	Availability string             `json:"availability,omitempty"`
	Expertise    profiles.Expertise `json:"expertise,omitempty"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Default returns a fresh set of the criteria filters. Filters keep state
// between Validate and Apply, so every search needs its own set.
func Default() []Filter {
	return []Filter{
		NewSkills(),
		NewTechStack(),
		NewRegion(),
		NewAvailability(),
		NewExpertise(),
	}
}

// ForCriteria returns the default filters with every filter the criteria do
// not use disabled, so logs and Describe show what a search actually applied.
func ForCriteria(c *Criteria) []Filter {
	steps := Default()
	if c == nil {
		c = &Criteria{}
	}

	unused := map[string]bool{
		"skills":       len(c.Skills) == 0,
		"tech_stack":   len(c.TechStack) == 0,
		"region":       c.Region == "",
		"availability": c.Availability == "",
		"expertise":    c.Expertise == "",
	}
	for name, skip := range unused {
		if skip {
			DisableByName(steps, name, "not requested")
		}
	}

	return steps
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates and then executes the supplied filters sequentially on a copy
// of the pool. The input collection is never modified.
func Run(ctx context.Context, c *Criteria, deps Deps, steps []Filter, pool *profiles.Participants) (*profiles.Participants, error) {
	if c == nil {
		c = &Criteria{}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(c); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	current := pool.Clone()
	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		current = next
	}

	return current, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
