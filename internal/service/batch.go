package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/logger"
	"github.com/spigell/talent-matcher/internal/matching"
	"github.com/spigell/talent-matcher/internal/pipeline"
	"github.com/spigell/talent-matcher/internal/recruiting"
)

var ErrBatchCommitted = errors.New("batch is already committed")

// Batch holds the in-memory outcome of a batch operation until it is committed.
// Dropping an uncommitted batch leaves the store untouched.
type Batch struct {
	RunID   string
	Kind    string
	Job     *recruiting.Job
	Results []recruiting.MatchResult

	candidates *recruiting.Candidates
	changed    int
	committed  bool
	svc        *Service
	logger     *zap.Logger
}

const (
	BatchKindScreen = "screen"
	BatchKindSource = "source"
)

// Candidates returns the pool with the batch changes applied.
func (b *Batch) Candidates() *recruiting.Candidates {
	return b.candidates
}

// Changed is the number of candidates whose record the batch altered.
func (b *Batch) Changed() int {
	return b.changed
}

// Commit persists the pool with one SaveCandidates call. A batch that changed
// nothing is marked committed without writing.
func (b *Batch) Commit(ctx context.Context) error {
	if b.committed {
		return ErrBatchCommitted
	}
	if b.changed == 0 {
		b.committed = true
		b.logger.Info("batch committed without changes")
		return nil
	}
	if err := b.svc.store.SaveCandidates(ctx, b.candidates); err != nil {
		return err
	}
	b.committed = true

	b.logger.Info("batch committed", zap.Int("changed", b.changed))
	return nil
}

// PrepareBatchScreen scores, with the lexical strategy, the ScreenBatchSize candidates
// already matched to the job with the highest stored score and records a screening
// for each. Results follow that stored-score order.
func (s *Service) PrepareBatchScreen(ctx context.Context, jobID string) (*Batch, error) {
	candidates, job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}

	b := s.newBatch(BatchKindScreen, job, candidates)

	pool := candidates.MatchedTo(job.ID)
	matched := len(pool)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})
	if len(pool) > matching.ScreenBatchSize {
		pool = pool[:matching.ScreenBatchSize]
	}

	b.Results = make([]recruiting.MatchResult, 0, len(pool))
	for _, candidate := range pool {
		result := s.engine.ScoreCandidateForJob(ctx, candidate, job, matching.StrategyLexical)
		before := snapshot(candidate, job.ID)
		pipeline.RecordScreening(candidate, job.ID, result.CombinedScore)
		if snapshot(candidate, job.ID) != before {
			b.changed++
		}
		b.Results = append(b.Results, result)
	}

	b.logger.Info("batch screening prepared",
		zap.Int("matched", matched),
		zap.Int("screened", len(b.Results)),
		zap.Int("changed", b.changed),
	)
	return b, nil
}

// PrepareBatchSource scores the whole pool lexically and records every match.
// Results are the strong matches, best first, capped at SourceShortlistSize.
func (s *Service) PrepareBatchSource(ctx context.Context, jobID string) (*Batch, error) {
	candidates, job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}

	b := s.newBatch(BatchKindSource, job, candidates)

	results := s.engine.ScoreAll(ctx, job, candidates.Items, matching.StrategyLexical)
	tracked := 0
	for i, candidate := range candidates.Items {
		before := snapshot(candidate, job.ID)
		pipeline.RecordMatch(candidate, job.ID, results[i].CombinedScore)
		if snapshot(candidate, job.ID) != before {
			b.changed++
		}
		if candidate.HasMatchedJob(job.ID) {
			tracked++
		}
	}

	strong := matching.FindMatchesAboveThreshold(results, matching.StrongMatchThreshold)
	matching.SortByScore(strong)
	b.Results = matching.Top(strong, matching.SourceShortlistSize)

	b.logger.Info("batch sourcing prepared",
		zap.Int("pool", candidates.Len()),
		zap.Int("tracked", tracked),
		zap.Int("strong", len(strong)),
		zap.Int("shortlisted", len(b.Results)),
	)
	return b, nil
}

// candidateState is the part of a candidate record a batch can alter for one job.
type candidateState struct {
	status  recruiting.Status
	score   float64
	tracked bool
}

func snapshot(c *recruiting.Candidate, jobID string) candidateState {
	return candidateState{status: c.Status, score: c.Score, tracked: c.HasMatchedJob(jobID)}
}

func (s *Service) newBatch(kind string, job *recruiting.Job, candidates *recruiting.Candidates) *Batch {
	runID := uuid.NewString()
	return &Batch{
		RunID:      runID,
		Kind:       kind,
		Job:        job,
		candidates: candidates,
		svc:        s,
		logger: s.logger.With(
			zap.String(logger.FieldRunID, runID),
			zap.String(logger.FieldJobID, job.ID),
			zap.String("batch", kind),
		),
	}
}
