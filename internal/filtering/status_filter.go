package filtering

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/recruiting"
)

type excludedStatusesFilter struct {
	statuses []recruiting.Status
}

// NewExcludedStatuses creates a filter that removes candidates whose pipeline status is listed.
func NewExcludedStatuses(statuses []recruiting.Status) Filter {
	return &excludedStatusesFilter{
		statuses: statuses,
	}
}

func (f *excludedStatusesFilter) Name() string { return "excluded_statuses" }

func (f *excludedStatusesFilter) Disable(string) {}

func (f *excludedStatusesFilter) IsEnabled() bool { return true }

func (f *excludedStatusesFilter) Validate() error { return nil }

func (f *excludedStatusesFilter) Apply(_ context.Context, deps Deps, s *Shortlist) (*Shortlist, Step, error) {
	initial := s.Len()
	if len(f.statuses) == 0 {
		return s, Step{Initial: initial, Dropped: 0, Left: s.Len()}, nil
	}
	if deps.Candidates == nil {
		return s, Step{}, errors.New("candidates are required")
	}

	removed := s.Exclude(func(r recruiting.MatchResult) bool {
		c := deps.Candidates.FindByID(r.CandidateID)
		return c != nil && f.excluded(c.Status)
	})
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding candidates by status",
			zap.Strings("excluded_candidates", removed),
			zap.Int("candidates_left", s.Len()),
		)
	}

	return s, Step{Initial: initial, Dropped: len(removed), Left: s.Len()}, nil
}

func (f *excludedStatusesFilter) excluded(status recruiting.Status) bool {
	for _, st := range f.statuses {
		if st == status {
			return true
		}
	}
	return false
}

func (f *excludedStatusesFilter) Status() Status {
	details := map[string]string{}
	if len(f.statuses) > 0 {
		names := make([]string, 0, len(f.statuses))
		for _, st := range f.statuses {
			names = append(names, string(st))
		}
		details["statuses"] = strings.Join(names, ", ")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
