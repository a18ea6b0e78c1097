package filtering

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/talent-matcher/internal/recruiting"
)

func fixtures() (*recruiting.Candidates, *Shortlist) {
	candidates := &recruiting.Candidates{Items: []*recruiting.Candidate{
		{ID: "1", Name: "Ann", Status: recruiting.StatusAvailable},
		{ID: "2", Name: "Bo", Status: recruiting.StatusHired},
		{ID: "3", Name: "Cy", Status: recruiting.StatusScreening, MatchedJobs: []string{"10"}},
		{ID: "4", Name: "Di", Status: recruiting.StatusRejected},
	}}
	shortlist := &Shortlist{JobID: "10", Items: []recruiting.MatchResult{
		{CandidateID: "1", CandidateName: "Ann", CombinedScore: 0.9},
		{CandidateID: "2", CandidateName: "Bo", CombinedScore: 0.8},
		{CandidateID: "3", CandidateName: "Cy", CombinedScore: 0.7},
		{CandidateID: "4", CandidateName: "Di", CombinedScore: 0.5},
	}}
	return candidates, shortlist
}

func ids(s *Shortlist) []string {
	out := make([]string, 0, s.Len())
	for _, r := range s.Items {
		out = append(out, r.CandidateID)
	}
	return out
}

func TestShortlistExcludeKeepsOrder(t *testing.T) {
	_, s := fixtures()

	removed := s.Exclude(func(r recruiting.MatchResult) bool { return r.CandidateID == "2" })

	assert.Equal(t, []string{"2"}, removed)
	assert.Equal(t, []string{"1", "3", "4"}, ids(s))
}

func TestRunDefaultChain(t *testing.T) {
	candidates, s := fixtures()
	core, logs := observer.New(zap.InfoLevel)

	steps, err := New(Config{
		ExcludeStatuses: []string{"Hired", "Rejected"},
		ScoreAbove:      0.6,
		OnlyNew:         true,
	})
	require.NoError(t, err)

	out, err := Run(context.Background(), Deps{Logger: zap.New(core), Candidates: candidates}, steps, s)
	require.NoError(t, err)

	assert.Equal(t, []string{"1"}, ids(out))
	assert.Equal(t, 4, logs.FilterMessage("filter step").Len())
}

func TestNewDisablesIdleSteps(t *testing.T) {
	steps, err := New(Config{})
	require.NoError(t, err)

	enabled := map[string]bool{}
	for _, st := range Describe(steps) {
		enabled[st.Name] = st.Enabled
	}
	assert.Equal(t, map[string]bool{
		"exclude_file":      true,
		"excluded_statuses": true,
		"only_new":          false,
		"score_above":       false,
	}, enabled)

	candidates, s := fixtures()
	out, err := Run(context.Background(), Deps{Candidates: candidates}, steps, s)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())
}

func TestNewRejectsUnknownStatus(t *testing.T) {
	_, err := New(Config{ExcludeStatuses: []string{"Sleeping"}})
	assert.Error(t, err)
}

func TestRunValidatesBeforeApplying(t *testing.T) {
	_, s := fixtures()

	_, err := Run(context.Background(), Deps{}, []Filter{NewScoreAbove(1.5)}, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "score_above")
	assert.Equal(t, 4, s.Len())
}

func TestStatusFilterNeedsCandidates(t *testing.T) {
	_, s := fixtures()

	_, err := Run(context.Background(), Deps{}, []Filter{NewExcludedStatuses([]recruiting.Status{recruiting.StatusHired})}, s)
	assert.Error(t, err)
}

func TestExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	_, s := fixtures()

	// A missing file excludes nothing.
	out, err := Run(context.Background(), Deps{}, []Filter{NewExcludeFile(path)}, s)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Len())

	dropped := &Shortlist{JobID: "10", Items: s.Items[1:3]}
	excluded := ExcludedFromShortlist(dropped, "not a fit")
	require.Len(t, excluded.Items, 2)
	assert.Equal(t, "10", excluded.Items[0].JobID)
	require.NoError(t, excluded.ToFile(path))

	loaded, err := LoadExcludedCandidates(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, loaded.IDs())
	assert.Equal(t, "not a fit", loaded.Items[0].Reason)

	_, s = fixtures()
	out, err = Run(context.Background(), Deps{}, []Filter{NewExcludeFile(path)}, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4"}, ids(out))
}

func TestExcludedCandidatesToFileTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	long := &ExcludedCandidates{Items: []*ExcludedCandidate{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	require.NoError(t, long.ToFile(path))

	short := &ExcludedCandidates{Items: []*ExcludedCandidate{{ID: "9"}}}
	require.NoError(t, short.ToFile(path))

	loaded, err := LoadExcludedCandidates(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, loaded.IDs())
}

func TestDisableByName(t *testing.T) {
	steps := []Filter{NewOnlyNew(), NewScoreAbove(0.5)}

	DisableByName(steps, scoreAboveName, "manual")

	statuses := Describe(steps)
	assert.True(t, statuses[0].Enabled)
	assert.False(t, statuses[1].Enabled)
	assert.Equal(t, "manual", statuses[1].Reason)
}
