// Package matching turns candidate/job scores into match results, shortlists and rankings.
package matching

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/logger"
	"github.com/spigell/talent-matcher/internal/recruiting"
	"github.com/spigell/talent-matcher/internal/scoring"
)

const (
	// PersistThreshold is the score a candidate must exceed for a job to be tracked in matched jobs.
	PersistThreshold = 0.6
	// StrongMatchThreshold is the score a candidate must exceed to be surfaced as a strong match.
	StrongMatchThreshold = 0.65

	// ScreenBatchSize is how many matched candidates a batch screening considers.
	ScreenBatchSize = 10
	// SourceShortlistSize is how many strong matches sourcing returns.
	SourceShortlistSize = 10
)

// Strategy selects which score a match result treats as authoritative.
//
// Sourcing and batch screening rank by the lexical score while individual
// screening uses the semantic comparison.
type Strategy int

const (
	StrategyLexical Strategy = iota
	StrategySemanticOrFallback
)

func (s Strategy) String() string {
	switch s {
	case StrategyLexical:
		return "lexical"
	case StrategySemanticOrFallback:
		return "semantic_or_fallback"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

type Engine struct {
	lexical  scoring.Lexical
	semantic *scoring.Semantic
	logger   *zap.Logger
}

// New creates an engine. semantic may be nil, in which case the semantic
// strategy uses TF-IDF only.
func New(semantic *scoring.Semantic, log *zap.Logger) *Engine {
	if semantic == nil {
		semantic = scoring.NewSemantic(nil, log)
	}
	return &Engine{
		semantic: semantic,
		logger:   logger.WithFields(log),
	}
}

// ScoreCandidateForJob always computes the lexical breakdown and adds the
// semantic comparison when the strategy asks for it.
func (e *Engine) ScoreCandidateForJob(ctx context.Context, candidate *recruiting.Candidate, job *recruiting.Job, strategy Strategy) recruiting.MatchResult {
	b := e.lexical.Score(candidate, job)

	result := recruiting.MatchResult{
		CandidateID:     candidate.ID,
		CandidateName:   candidate.Name,
		JobID:           job.ID,
		LexicalScore:    b.Score,
		SkillMatch:      b.SkillMatch,
		ExperienceMatch: b.ExperienceMatch,
		CombinedScore:   b.Score,
		SkillMatches:    b.Matches.Slice(),
		SkillGaps:       b.Gaps.Slice(),
	}

	if strategy == StrategySemanticOrFallback {
		sem := e.semantic.CompareResumeToRequirements(ctx, candidate, job)
		result.SemanticScore = &sem.Score
		result.SemanticMethod = sem.Method
		result.CombinedScore = sem.Score
	}

	e.logger.Debug("scored candidate",
		append(logger.MatchFields(candidate.ID, job.ID),
			zap.Stringer(logger.FieldStrategy, strategy),
			zap.Float64("lexical_score", result.LexicalScore),
			zap.Float64("combined_score", result.CombinedScore),
		)...,
	)

	return result
}

// Assess scores one candidate with the semantic-or-fallback strategy.
func (e *Engine) Assess(ctx context.Context, candidate *recruiting.Candidate, job *recruiting.Job) recruiting.MatchResult {
	return e.ScoreCandidateForJob(ctx, candidate, job, StrategySemanticOrFallback)
}

// Rank scores every candidate with the lexical strategy and returns the best limit results.
func (e *Engine) Rank(ctx context.Context, job *recruiting.Job, candidates []*recruiting.Candidate, limit int) []recruiting.MatchResult {
	results := e.ScoreAll(ctx, job, candidates, StrategyLexical)
	SortByScore(results)
	return Top(results, limit)
}

// RankCandidatesForJob is Rank without a caller context.
func (e *Engine) RankCandidatesForJob(job *recruiting.Job, candidates []*recruiting.Candidate, limit int) []recruiting.MatchResult {
	return e.Rank(context.Background(), job, candidates, limit)
}

// ScoreAll scores candidates in input order.
func (e *Engine) ScoreAll(ctx context.Context, job *recruiting.Job, candidates []*recruiting.Candidate, strategy Strategy) []recruiting.MatchResult {
	results := make([]recruiting.MatchResult, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, e.ScoreCandidateForJob(ctx, candidate, job, strategy))
	}
	return results
}

// SortByScore orders results by combined score, highest first. Ties keep their input order.
func SortByScore(results []recruiting.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CombinedScore > results[j].CombinedScore
	})
}

// Top returns at most limit results. A non-positive limit keeps everything.
func Top(results []recruiting.MatchResult, limit int) []recruiting.MatchResult {
	if limit <= 0 || limit >= len(results) {
		return results
	}
	return results[:limit]
}

// FindMatchesAboveThreshold keeps results scoring strictly above threshold, preserving order.
func FindMatchesAboveThreshold(results []recruiting.MatchResult, threshold float64) []recruiting.MatchResult {
	kept := make([]recruiting.MatchResult, 0, len(results))
	for _, r := range results {
		if r.CombinedScore > threshold {
			kept = append(kept, r)
		}
	}
	return kept
}
