package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/talent-matcher/internal/recruiting"
)

var (
	_ Store = (*CSV)(nil)
	_ Store = (*SQLite)(nil)
)

func sampleCandidates() *recruiting.Candidates {
	return &recruiting.Candidates{Items: []*recruiting.Candidate{
		{
			ID:              "1",
			Name:            "Ann Lee",
			Email:           "ann@example.com",
			CurrentRole:     "Data Engineer",
			Skills:          "Python, SQL, AWS",
			YearsExperience: "5 years",
			Education:       "BSc",
			LastCompany:     "Acme, Inc.",
			ResumeSummary:   "Builds \"streaming\" pipelines\non AWS.",
			Status:          recruiting.StatusScreening,
			Score:           0.77,
			MatchedJobs:     []string{"10", "12"},
		},
		{
			ID:     "2",
			Name:   "Bo Chen",
			Status: recruiting.StatusAvailable,
		},
	}}
}

func sampleJobs() *recruiting.Jobs {
	return &recruiting.Jobs{Items: []*recruiting.Job{
		{
			ID:                 "10",
			Title:              "Data Engineer",
			Department:         "Data",
			Location:           "Remote",
			Description:        "Own the warehouse",
			Requirements:       "Python and AWS",
			SkillsRequired:     "python, aws",
			ExperienceRequired: "3-5",
			EducationRequired:  "BSc",
			SalaryRange:        "100-120k",
		},
	}}
}

func TestStoresRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	sqlite, err := OpenSQLite(ctx, filepath.Join(dir, "db", "talent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	stores := map[string]Store{
		"csv":    NewCSV(filepath.Join(dir, "candidates.csv"), filepath.Join(dir, "jobs.csv")),
		"sqlite": sqlite,
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveCandidates(ctx, sampleCandidates()))
			require.NoError(t, s.SaveJobs(ctx, sampleJobs()))

			candidates, err := s.LoadCandidates(ctx)
			require.NoError(t, err)
			assert.Equal(t, sampleCandidates(), candidates)

			jobs, err := s.LoadJobs(ctx)
			require.NoError(t, err)
			assert.Equal(t, sampleJobs(), jobs)
		})
	}
}

func TestSaveReplacesCollection(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	sqlite, err := OpenSQLite(ctx, filepath.Join(dir, "talent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	stores := map[string]Store{
		"csv":    NewCSV(filepath.Join(dir, "candidates.csv"), filepath.Join(dir, "jobs.csv")),
		"sqlite": sqlite,
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveCandidates(ctx, sampleCandidates()))

			smaller := &recruiting.Candidates{Items: sampleCandidates().Items[1:]}
			require.NoError(t, s.SaveCandidates(ctx, smaller))

			loaded, err := s.LoadCandidates(ctx)
			require.NoError(t, err)
			require.Len(t, loaded.Items, 1)
			assert.Equal(t, "2", loaded.Items[0].ID)
		})
	}
}

func TestCSVReadsLooseInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "candidates.csv")

	content := "\ufeffName,ID,Skills,Years Experience,Status,Score,Matched Jobs\n" +
		"Ann,1,\"python, go\",4, , 0.5 ,\"3, 4,3\"\n" +
		"Bo,2,java,2,Hired,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	candidates, err := NewCSV(path, "").LoadCandidates(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates.Items, 2)

	ann := candidates.Items[0]
	assert.Equal(t, "1", ann.ID)
	assert.Equal(t, "python, go", ann.Skills)
	assert.Equal(t, "4", ann.YearsExperience)
	assert.Equal(t, recruiting.StatusAvailable, ann.Status)
	assert.Equal(t, 0.5, ann.Score)
	assert.Equal(t, []string{"3", "4"}, ann.MatchedJobs)

	bo := candidates.Items[1]
	assert.Equal(t, recruiting.StatusHired, bo.Status)
	assert.Zero(t, bo.Score)
	assert.Empty(t, bo.MatchedJobs)
}

func TestCSVMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := NewCSV(filepath.Join(dir, "nope.csv"), filepath.Join(dir, "nope-jobs.csv"))

	candidates, err := s.LoadCandidates(context.Background())
	require.NoError(t, err)
	assert.Zero(t, candidates.Len())

	jobs, err := s.LoadJobs(context.Background())
	require.NoError(t, err)
	assert.Zero(t, jobs.Len())
}

func TestCSVRejectsBadRows(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown status", content: "id,status\n1,Sleeping\n"},
		{name: "bad score", content: "id,score\n1,high\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := NewCSV(path, "").LoadCandidates(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestCSVWritesJoinedMatchedJobs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "candidates.csv")

	require.NoError(t, NewCSV(path, "").SaveCandidates(context.Background(), sampleCandidates()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "id,name,email,current_role,skills,years_experience")
	assert.Contains(t, string(raw), `"10, 12"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(ctx, Config{CandidatesFile: filepath.Join(dir, "c.csv"), JobsFile: filepath.Join(dir, "j.csv")})
	require.NoError(t, err)
	assert.IsType(t, &CSV{}, s)

	s, err = Open(ctx, Config{Driver: "SQLite", SQLitePath: filepath.Join(dir, "t.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Driver: "postgres"})
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))

	_, err = Open(ctx, Config{Driver: DriverSQLite})
	assert.Error(t, err)
}
