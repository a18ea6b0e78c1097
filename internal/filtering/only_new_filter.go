package filtering

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/recruiting"
)

const onlyNewName = "only_new"

type onlyNewFilter struct {
	enabled bool
	reason  string
}

// NewOnlyNew creates a filter that removes candidates already tracking the shortlisted job.
func NewOnlyNew() Filter {
	return &onlyNewFilter{enabled: true}
}

func (f *onlyNewFilter) Name() string { return onlyNewName }

func (f *onlyNewFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *onlyNewFilter) IsEnabled() bool { return f.enabled }

func (f *onlyNewFilter) Validate() error { return nil }

func (f *onlyNewFilter) Apply(_ context.Context, deps Deps, s *Shortlist) (*Shortlist, Step, error) {
	initial := s.Len()
	if deps.Candidates == nil {
		return s, Step{}, errors.New("candidates are required")
	}

	removed := s.Exclude(func(r recruiting.MatchResult) bool {
		c := deps.Candidates.FindByID(r.CandidateID)
		return c != nil && c.HasMatchedJob(s.JobID)
	})
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding candidates already matched to the job",
			zap.String("job_id", s.JobID),
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", s.Len()),
		)
	}

	return s, Step{Initial: initial, Dropped: len(removed), Left: s.Len()}, nil
}

func (f *onlyNewFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason}
}
