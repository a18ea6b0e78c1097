package matching

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/logger"
	"github.com/spigell/talent-matcher/internal/recruiting"
	"github.com/spigell/talent-matcher/internal/scoring"
)

// ProfileMatchThreshold is the cosine similarity a full profile match must reach. Unlike
// the other thresholds it is inclusive.
const ProfileMatchThreshold = 0.6

// EmbeddingsEnabled reports whether profile matching can produce results.
func (e *Engine) EmbeddingsEnabled() bool {
	return e.semantic.Enabled()
}

// FindMatchingJobsForCandidate compares the candidate profile with every job profile by
// embedding similarity. Without an embedding backend, or when the candidate profile
// cannot be embedded, the result is empty. Jobs whose profile cannot be embedded are skipped.
func (e *Engine) FindMatchingJobsForCandidate(ctx context.Context, candidate *recruiting.Candidate, jobs []*recruiting.Job) []recruiting.ProfileMatch {
	log := e.logger.With(zap.String(logger.FieldCandidateID, candidate.ID))

	source, ok := e.embedProfile(ctx, log, candidate.ProfileText())
	if !ok {
		return nil
	}

	var matches []recruiting.ProfileMatch
	for _, job := range jobs {
		sim, ok := e.profileSimilarity(ctx, source, job.ProfileText())
		if !ok {
			log.Debug("skipping job without profile embedding", zap.String(logger.FieldJobID, job.ID))
			continue
		}
		if sim < ProfileMatchThreshold {
			continue
		}
		matches = append(matches, recruiting.ProfileMatch{
			CandidateID:   candidate.ID,
			CandidateName: candidate.Name,
			CurrentRole:   candidate.CurrentRole,
			JobID:         job.ID,
			JobTitle:      job.Title,
			Score:         scoring.Round2(sim),
		})
	}

	sortProfileMatches(matches)
	log.Info("profile matching done", zap.Int("jobs", len(jobs)), zap.Int("matches", len(matches)))
	return matches
}

// FindMatchingCandidatesForJob is FindMatchingJobsForCandidate in the other direction.
func (e *Engine) FindMatchingCandidatesForJob(ctx context.Context, job *recruiting.Job, candidates []*recruiting.Candidate) []recruiting.ProfileMatch {
	log := e.logger.With(zap.String(logger.FieldJobID, job.ID))

	source, ok := e.embedProfile(ctx, log, job.ProfileText())
	if !ok {
		return nil
	}

	var matches []recruiting.ProfileMatch
	for _, candidate := range candidates {
		sim, ok := e.profileSimilarity(ctx, source, candidate.ProfileText())
		if !ok {
			log.Debug("skipping candidate without profile embedding", zap.String(logger.FieldCandidateID, candidate.ID))
			continue
		}
		if sim < ProfileMatchThreshold {
			continue
		}
		matches = append(matches, recruiting.ProfileMatch{
			CandidateID:   candidate.ID,
			CandidateName: candidate.Name,
			CurrentRole:   candidate.CurrentRole,
			JobID:         job.ID,
			JobTitle:      job.Title,
			Score:         scoring.Round2(sim),
		})
	}

	sortProfileMatches(matches)
	log.Info("profile matching done", zap.Int("candidates", len(candidates)), zap.Int("matches", len(matches)))
	return matches
}

func (e *Engine) embedProfile(ctx context.Context, log *zap.Logger, text string) ([]float32, bool) {
	if !e.semantic.Enabled() {
		log.Debug("profile matching skipped, no embedding backend")
		return nil, false
	}
	vec := e.semantic.Embed(ctx, text)
	if vec == nil {
		log.Warn("profile matching skipped, profile could not be embedded")
		return nil, false
	}
	return vec, true
}

// profileSimilarity reports false when text cannot be embedded.
func (e *Engine) profileSimilarity(ctx context.Context, source []float32, text string) (float64, bool) {
	vec := e.semantic.Embed(ctx, text)
	if vec == nil {
		return 0, false
	}
	return scoring.Similarity(source, vec), true
}

func sortProfileMatches(matches []recruiting.ProfileMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}
