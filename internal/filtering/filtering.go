// Package filtering narrows a ranked shortlist before it is shown to a recruiter.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/recruiting"
)

// Filter represents a single filtering step applied to a shortlist.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, deps Deps, s *Shortlist) (*Shortlist, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger     *zap.Logger
	Candidates *recruiting.Candidates
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	ExcludeStatuses []string `mapstructure:"exclude-statuses"`
	ScoreAbove      float64  `mapstructure:"score-above" validate:"gte=0,lte=1"`
	ExcludeFile     string   `mapstructure:"exclude-file"`
	OnlyNew         bool     `mapstructure:"only-new"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Shortlist is an ordered list of match results for a single job.
type Shortlist struct {
	JobID string
	Items []recruiting.MatchResult
}

func (s *Shortlist) Len() int {
	return len(s.Items)
}

// Exclude drops every result for which drop returns true and returns the dropped candidate ids.
// Order of the remaining results is preserved.
func (s *Shortlist) Exclude(drop func(recruiting.MatchResult) bool) []string {
	kept := s.Items[:0]
	var removed []string
	for _, r := range s.Items {
		if drop(r) {
			removed = append(removed, r.CandidateID)
			continue
		}
		kept = append(kept, r)
	}
	s.Items = kept
	return removed
}

// New builds the default filter chain from cfg. Steps that have nothing to do are disabled, not omitted.
func New(cfg Config) ([]Filter, error) {
	statuses := make([]recruiting.Status, 0, len(cfg.ExcludeStatuses))
	for _, name := range cfg.ExcludeStatuses {
		st, err := recruiting.ParseStatus(name)
		if err != nil {
			return nil, fmt.Errorf("filters: %w", err)
		}
		statuses = append(statuses, st)
	}

	steps := []Filter{
		NewExcludeFile(cfg.ExcludeFile),
		NewExcludedStatuses(statuses),
		NewOnlyNew(),
		NewScoreAbove(cfg.ScoreAbove),
	}
	if !cfg.OnlyNew {
		DisableByName(steps, onlyNewName, "only-new is not set")
	}
	return steps, nil
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the remaining shortlist.
func Run(ctx context.Context, deps Deps, steps []Filter, s *Shortlist) (*Shortlist, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		s = next
	}

	return s, nil
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
