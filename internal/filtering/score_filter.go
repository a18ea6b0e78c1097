package filtering

import (
	"context"
	"errors"
	"strconv"

	"github.com/spigell/talent-matcher/internal/recruiting"
)

const scoreAboveName = "score_above"

type scoreAboveFilter struct {
	threshold float64
	enabled   bool
	reason    string
}

// NewScoreAbove creates a filter that keeps results scoring strictly above threshold.
// A zero threshold disables the step.
func NewScoreAbove(threshold float64) Filter {
	f := &scoreAboveFilter{threshold: threshold, enabled: true}
	if threshold == 0 {
		f.Disable("threshold is not set")
	}
	return f
}

func (f *scoreAboveFilter) Name() string { return scoreAboveName }

func (f *scoreAboveFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *scoreAboveFilter) IsEnabled() bool { return f.enabled }

func (f *scoreAboveFilter) Validate() error {
	if f.threshold < 0 || f.threshold > 1 {
		return errors.New("threshold must be within [0, 1]")
	}
	return nil
}

func (f *scoreAboveFilter) Apply(_ context.Context, _ Deps, s *Shortlist) (*Shortlist, Step, error) {
	initial := s.Len()
	removed := s.Exclude(func(r recruiting.MatchResult) bool {
		return r.CombinedScore <= f.threshold
	})
	return s, Step{Initial: initial, Dropped: len(removed), Left: s.Len()}, nil
}

func (f *scoreAboveFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.enabled,
		Reason:  f.reason,
		Details: map[string]string{"threshold": strconv.FormatFloat(f.threshold, 'f', 2, 64)},
	}
}
