// Package service exposes the recruiting operations over a record store.
//
// Each call loads the collections it needs, works on them in memory and, when it
// mutates candidates, persists them with a single SaveCandidates call.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/talent-matcher/internal/logger"
	"github.com/spigell/talent-matcher/internal/matching"
	"github.com/spigell/talent-matcher/internal/pipeline"
	"github.com/spigell/talent-matcher/internal/recruiting"
	"github.com/spigell/talent-matcher/internal/store"
)

type Service struct {
	store    store.Store
	engine   *matching.Engine
	logger   *zap.Logger
	validate *validator.Validate
}

// Screening is the outcome of screening one candidate for one job.
type Screening struct {
	Result         recruiting.MatchResult  `json:"result"`
	Recommendation matching.Recommendation `json:"recommendation"`
	Status         recruiting.Status       `json:"status"`
	Score          float64                 `json:"score"`
	MatchedJobs    []string                `json:"matched_jobs"`
}

// NewCandidate holds the fields a recruiter supplies when adding a candidate by hand.
type NewCandidate struct {
	Name            string `validate:"required"`
	Email           string `validate:"omitempty,email"`
	CurrentRole     string
	Skills          string
	YearsExperience string
	Education       string
	LastCompany     string
	ResumeSummary   string
}

func New(st store.Store, engine *matching.Engine, log *zap.Logger) *Service {
	if engine == nil {
		engine = matching.New(nil, log)
	}
	return &Service{
		store:    st,
		engine:   engine,
		logger:   logger.WithFields(log),
		validate: validator.New(),
	}
}

// ScoreCandidateForJob returns the lexical match of one candidate against one job. Nothing is persisted.
func (s *Service) ScoreCandidateForJob(ctx context.Context, candidateID, jobID string) (recruiting.MatchResult, error) {
	candidates, job, err := s.load(ctx, jobID)
	if err != nil {
		return recruiting.MatchResult{}, err
	}

	candidate := candidates.FindByID(candidateID)
	if candidate == nil {
		return recruiting.MatchResult{}, recruiting.CandidateNotFound(candidateID)
	}

	return s.engine.ScoreCandidateForJob(ctx, candidate, job, matching.StrategyLexical), nil
}

// RankCandidatesForJob ranks the whole pool lexically. A non-positive limit returns every candidate.
func (s *Service) RankCandidatesForJob(ctx context.Context, jobID string, limit int) ([]recruiting.MatchResult, error) {
	candidates, job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return s.engine.Rank(ctx, job, candidates.Items, limit), nil
}

// ScreenCandidate assesses one candidate with the semantic strategy, records the
// screening and persists the candidate pool.
func (s *Service) ScreenCandidate(ctx context.Context, candidateID, jobID string) (*Screening, error) {
	candidates, job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}

	candidate := candidates.FindByID(candidateID)
	if candidate == nil {
		return nil, recruiting.CandidateNotFound(candidateID)
	}

	result := s.engine.Assess(ctx, candidate, job)
	pipeline.RecordScreening(candidate, job.ID, result.CombinedScore)

	if err := s.store.SaveCandidates(ctx, candidates); err != nil {
		return nil, err
	}

	s.logger.Info("candidate screened",
		append(logger.MatchFields(candidate.ID, job.ID),
			zap.Float64("score", result.CombinedScore),
			zap.String("method", result.SemanticMethod),
		)...,
	)

	return &Screening{
		Result:         result,
		Recommendation: matching.Recommend(result.CombinedScore, job.Title),
		Status:         candidate.Status,
		Score:          candidate.Score,
		MatchedJobs:    append([]string(nil), candidate.MatchedJobs...),
	}, nil
}

// BatchScreen screens the best already-matched candidates for a job and persists the result.
func (s *Service) BatchScreen(ctx context.Context, jobID string) ([]recruiting.MatchResult, error) {
	batch, err := s.PrepareBatchScreen(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := batch.Commit(ctx); err != nil {
		return nil, err
	}
	return batch.Results, nil
}

// BatchSourceCandidates scores the full pool for a job, persists tracked matches and
// returns the strong matches.
func (s *Service) BatchSourceCandidates(ctx context.Context, jobID string) ([]recruiting.MatchResult, error) {
	batch, err := s.PrepareBatchSource(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := batch.Commit(ctx); err != nil {
		return nil, err
	}
	return batch.Results, nil
}

// AddCandidate appends a new Available candidate with the next numeric id.
func (s *Service) AddCandidate(ctx context.Context, in NewCandidate) (*recruiting.Candidate, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid candidate: %w", err)
	}

	candidates, err := s.store.LoadCandidates(ctx)
	if err != nil {
		return nil, err
	}

	candidate := &recruiting.Candidate{
		ID:              candidates.NextID(),
		Name:            in.Name,
		Email:           in.Email,
		CurrentRole:     in.CurrentRole,
		Skills:          in.Skills,
		YearsExperience: in.YearsExperience,
		Education:       in.Education,
		LastCompany:     in.LastCompany,
		ResumeSummary:   in.ResumeSummary,
		Status:          recruiting.StatusAvailable,
	}
	candidates.Items = append(candidates.Items, candidate)

	if err := s.store.SaveCandidates(ctx, candidates); err != nil {
		return nil, err
	}

	s.logger.Info("candidate added", zap.String(logger.FieldCandidateID, candidate.ID))
	return candidate, nil
}

// UpdateStatus moves a candidate along the pipeline. Invalid moves return pipeline.ErrInvalidTransition.
func (s *Service) UpdateStatus(ctx context.Context, candidateID string, status recruiting.Status) (*recruiting.Candidate, error) {
	candidates, err := s.store.LoadCandidates(ctx)
	if err != nil {
		return nil, err
	}

	candidate := candidates.FindByID(candidateID)
	if candidate == nil {
		return nil, recruiting.CandidateNotFound(candidateID)
	}

	from := candidate.Status
	if err := pipeline.Transition(candidate, status); err != nil {
		return nil, err
	}

	if err := s.store.SaveCandidates(ctx, candidates); err != nil {
		return nil, err
	}

	s.logger.Info("candidate status changed",
		zap.String(logger.FieldCandidateID, candidate.ID),
		zap.String("from", string(from)),
		zap.String("to", string(candidate.Status)),
	)
	return candidate, nil
}

// EmbeddingsEnabled reports whether profile matching is available.
func (s *Service) EmbeddingsEnabled() bool {
	return s.engine.EmbeddingsEnabled()
}

// MatchingJobsForCandidate compares the candidate profile with every job profile by
// embeddings. Without an embedding backend the result is empty. Nothing is persisted.
func (s *Service) MatchingJobsForCandidate(ctx context.Context, candidateID string) ([]recruiting.ProfileMatch, error) {
	_, candidate, jobs, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	return s.engine.FindMatchingJobsForCandidate(ctx, candidate, jobs.Items), nil
}

// TrackMatchingJobs is MatchingJobsForCandidate that also adds every matched job to
// the candidate's matched jobs. The pool is saved only when that set grew.
func (s *Service) TrackMatchingJobs(ctx context.Context, candidateID string) ([]recruiting.ProfileMatch, error) {
	candidates, candidate, jobs, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	matches := s.engine.FindMatchingJobsForCandidate(ctx, candidate, jobs.Items)
	added := 0
	for _, m := range matches {
		if candidate.AddMatchedJob(m.JobID) {
			added++
		}
	}
	if added == 0 {
		return matches, nil
	}

	if err := s.store.SaveCandidates(ctx, candidates); err != nil {
		return nil, err
	}

	s.logger.Info("matching jobs tracked",
		zap.String(logger.FieldCandidateID, candidate.ID),
		zap.Int("added", added),
	)
	return matches, nil
}

// MatchingCandidatesForJob compares the job profile with every candidate profile by
// embeddings. Without an embedding backend the result is empty. Nothing is persisted.
func (s *Service) MatchingCandidatesForJob(ctx context.Context, jobID string) ([]recruiting.ProfileMatch, error) {
	candidates, job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return s.engine.FindMatchingCandidatesForJob(ctx, job, candidates.Items), nil
}

// CandidatesForJob lists candidates tracking jobID, in store order.
func (s *Service) CandidatesForJob(ctx context.Context, jobID string) ([]*recruiting.Candidate, error) {
	candidates, _, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return candidates.MatchedTo(jobID), nil
}

// CandidatesByStatus lists candidates currently in status, in store order.
func (s *Service) CandidatesByStatus(ctx context.Context, status recruiting.Status) ([]*recruiting.Candidate, error) {
	candidates, err := s.store.LoadCandidates(ctx)
	if err != nil {
		return nil, err
	}
	return candidates.WithStatus(status), nil
}

// Candidates returns the whole pool.
func (s *Service) Candidates(ctx context.Context) (*recruiting.Candidates, error) {
	return s.store.LoadCandidates(ctx)
}

func (s *Service) Job(ctx context.Context, jobID string) (*recruiting.Job, error) {
	jobs, err := s.store.LoadJobs(ctx)
	if err != nil {
		return nil, err
	}

	job := jobs.FindByID(jobID)
	if job == nil {
		return nil, recruiting.JobNotFound(jobID)
	}
	return job, nil
}

// load returns the candidate pool and the job with jobID.
func (s *Service) load(ctx context.Context, jobID string) (*recruiting.Candidates, *recruiting.Job, error) {
	job, err := s.Job(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	candidates, err := s.store.LoadCandidates(ctx)
	if err != nil {
		return nil, nil, err
	}
	return candidates, job, nil
}

func (s *Service) loadCandidate(ctx context.Context, candidateID string) (*recruiting.Candidates, *recruiting.Candidate, *recruiting.Jobs, error) {
	candidates, err := s.store.LoadCandidates(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	candidate := candidates.FindByID(candidateID)
	if candidate == nil {
		return nil, nil, nil, recruiting.CandidateNotFound(candidateID)
	}

	jobs, err := s.store.LoadJobs(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return candidates, candidate, jobs, nil
}
