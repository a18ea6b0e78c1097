package scoring

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/ai"
	"github.com/spigell/talent-matcher/internal/logger"
	"github.com/spigell/talent-matcher/internal/recruiting"
)

const (
	MethodEmbedding = "embedding"
	MethodTFIDF     = "tfidf"
)

// SemanticResult is a resume-to-requirements similarity in [0,1] and the method that produced it.
type SemanticResult struct {
	Score  float64
	Method string
}

// Semantic compares free text by meaning. A nil embedder is valid: every comparison
// then uses the TF-IDF fallback.
type Semantic struct {
	embedder ai.Embedder
	logger   *zap.Logger
}

func NewSemantic(embedder ai.Embedder, log *zap.Logger) *Semantic {
	if d, ok := embedder.(ai.Describer); ok {
		log = logger.WithCommonFields(log, d.Provider(), d.Model())
	}
	return &Semantic{
		embedder: embedder,
		logger:   logger.WithFields(log),
	}
}

// Enabled reports whether an embedding backend is configured.
func (s *Semantic) Enabled() bool {
	return s != nil && s.embedder != nil
}

// Embed returns nil for empty text, when no backend is configured, or when the backend fails.
func (s *Semantic) Embed(ctx context.Context, text string) []float32 {
	if !s.Enabled() || strings.TrimSpace(text) == "" {
		return nil
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("embedding failed, falling back", zap.Error(err))
		return nil
	}
	if len(vec) == 0 {
		return nil
	}
	return vec
}

// Similarity is the cosine similarity of two vectors. Missing, empty, mismatched
// or zero vectors compare as 0.
func Similarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(-1, math.Min(1, sim))
}

// CompareResumeToRequirements compares the candidate's resume summary with the
// job requirements. The embedding backend is preferred; TF-IDF is used when it
// is not configured or cannot embed either text.
func (s *Semantic) CompareResumeToRequirements(ctx context.Context, candidate *recruiting.Candidate, job *recruiting.Job) SemanticResult {
	resume := candidate.ResumeSummary
	requirements := job.RequirementsText()

	if s.Enabled() {
		resumeVec := s.Embed(ctx, resume)
		requirementsVec := s.Embed(ctx, requirements)
		if resumeVec != nil && requirementsVec != nil {
			return SemanticResult{
				Score:  clamp01(Similarity(resumeVec, requirementsVec)),
				Method: MethodEmbedding,
			}
		}
		s.logger.Debug("using tfidf similarity",
			zap.String(logger.FieldCandidateID, candidate.ID),
			zap.String(logger.FieldJobID, job.ID),
		)
	}

	return SemanticResult{
		Score:  TFIDFSimilarity(resume, requirements),
		Method: MethodTFIDF,
	}
}
