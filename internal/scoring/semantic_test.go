package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/talent-matcher/internal/logger"
	"github.com/spigell/talent-matcher/internal/recruiting"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}

func (s *stubEmbedder) Provider() string { return "stub" }
func (s *stubEmbedder) Model() string    { return "stub-model" }

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, -1.0, Similarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 0.0, Similarity([]float32{1, 0}, []float32{0, 1}), 1e-9)

	assert.Equal(t, 0.0, Similarity(nil, []float32{1}))
	assert.Equal(t, 0.0, Similarity([]float32{1, 2}, []float32{1}))
	assert.Equal(t, 0.0, Similarity([]float32{0, 0}, []float32{1, 1}))
}

func TestTFIDFSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, TFIDFSimilarity("Go services on Kubernetes", "go services on kubernetes"), 1e-9)
	assert.Equal(t, 0.0, TFIDFSimilarity("python django", "java spring"))
	assert.Equal(t, 0.0, TFIDFSimilarity("", "java spring"))
	// Single-character tokens are ignored.
	assert.Equal(t, 0.0, TFIDFSimilarity("a b c", "a b c"))

	// Letters outside ASCII belong to the token.
	assert.Equal(t, 0.0, TFIDFSimilarity("café", "caf"))
	assert.InDelta(t, 1.0, TFIDFSimilarity("Café Größe", "café größe"), 1e-9)

	partial := TFIDFSimilarity("backend engineer building go services", "we need a go engineer")
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 1.0)
}

func TestCompareResumeToRequirementsWithoutBackend(t *testing.T) {
	s := NewSemantic(nil, nil)
	assert.False(t, s.Enabled())

	candidate := &recruiting.Candidate{ID: "1", ResumeSummary: "Built data pipelines in Python and SQL"}
	job := &recruiting.Job{ID: "2", Requirements: "Python and SQL data pipelines"}

	res := s.CompareResumeToRequirements(context.Background(), candidate, job)
	assert.Equal(t, MethodTFIDF, res.Method)
	assert.Greater(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 1.0)
}

func TestCompareResumeToRequirementsPrefersEmbeddings(t *testing.T) {
	candidate := &recruiting.Candidate{ID: "1", ResumeSummary: "resume"}
	job := &recruiting.Job{ID: "2", Description: "requirements"}

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"resume":       {1, 1},
		"requirements": {1, 0},
	}}
	s := NewSemantic(embedder, zap.NewNop())

	res := s.CompareResumeToRequirements(context.Background(), candidate, job)
	require.Equal(t, MethodEmbedding, res.Method)
	assert.InDelta(t, 0.7071, res.Score, 1e-4)
	assert.Equal(t, 2, embedder.calls)
}

func TestCompareResumeToRequirementsClampsNegative(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"resume":       {1, 0},
		"requirements": {-1, 0},
	}}
	s := NewSemantic(embedder, zap.NewNop())

	res := s.CompareResumeToRequirements(context.Background(),
		&recruiting.Candidate{ResumeSummary: "resume"},
		&recruiting.Job{Requirements: "requirements"},
	)
	assert.Equal(t, MethodEmbedding, res.Method)
	assert.Equal(t, 0.0, res.Score)
}

func TestCompareResumeToRequirementsFallsBackOnBackendFailure(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	embedder := &stubEmbedder{err: errors.New("connection refused")}
	s := NewSemantic(embedder, zap.New(core))

	res := s.CompareResumeToRequirements(context.Background(),
		&recruiting.Candidate{ResumeSummary: "golang microservices"},
		&recruiting.Job{Requirements: "golang microservices"},
	)

	assert.Equal(t, MethodTFIDF, res.Method)
	assert.InDelta(t, 1.0, res.Score, 1e-9)

	entries := observed.FilterMessage("embedding failed, falling back").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "stub", entries[0].ContextMap()[logger.FieldProvider])
}

func TestEmbedSkipsEmptyText(t *testing.T) {
	embedder := &stubEmbedder{}
	s := NewSemantic(embedder, nil)

	assert.Nil(t, s.Embed(context.Background(), "   "))
	assert.Equal(t, 0, embedder.calls)
}
