// Package store persists candidate and job collections. Every read loads a whole
// collection and every write replaces one; there is no row-level access.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spigell/talent-matcher/internal/recruiting"
)

const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"

	matchedJobsSep = ", "
)

var ErrUnsupportedDriver = errors.New("unsupported store driver")

type Store interface {
	LoadCandidates(ctx context.Context) (*recruiting.Candidates, error)
	LoadJobs(ctx context.Context) (*recruiting.Jobs, error)
	SaveCandidates(ctx context.Context, candidates *recruiting.Candidates) error
	SaveJobs(ctx context.Context, jobs *recruiting.Jobs) error
	Close() error
}

type Config struct {
	Driver         string `mapstructure:"driver" validate:"omitempty,oneof=csv sqlite"`
	CandidatesFile string `mapstructure:"candidates-file"`
	JobsFile       string `mapstructure:"jobs-file"`
	SQLitePath     string `mapstructure:"sqlite-path"`
}

// Open returns the store selected by cfg.Driver. An empty driver means csv.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverCSV:
		return NewCSV(cfg.CandidatesFile, cfg.JobsFile), nil
	case DriverSQLite:
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, cfg.Driver)
	}
}

// candidateRecord is the flat row shape shared by the csv and sqlite drivers.
type candidateRecord struct {
	ID              string  `csv:"id"`
	Name            string  `csv:"name"`
	Email           string  `csv:"email"`
	CurrentRole     string  `csv:"current_role"`
	Skills          string  `csv:"skills"`
	YearsExperience string  `csv:"years_experience"`
	Education       string  `csv:"education"`
	LastCompany     string  `csv:"last_company"`
	ResumeSummary   string  `csv:"resume_summary"`
	Status          string  `csv:"status"`
	Score           float64 `csv:"score"`
	MatchedJobs     string  `csv:"matched_jobs"`
}

type jobRecord struct {
	ID                 string `csv:"id"`
	Title              string `csv:"title"`
	Department         string `csv:"department"`
	Location           string `csv:"location"`
	Description        string `csv:"description"`
	Requirements       string `csv:"requirements"`
	SkillsRequired     string `csv:"skills_required"`
	ExperienceRequired string `csv:"experience_required"`
	EducationRequired  string `csv:"education_required"`
	SalaryRange        string `csv:"salary_range"`
}

var (
	candidateColumns = []string{
		"id", "name", "email", "current_role", "skills", "years_experience",
		"education", "last_company", "resume_summary", "status", "score", "matched_jobs",
	}
	jobColumns = []string{
		"id", "title", "department", "location", "description", "requirements",
		"skills_required", "experience_required", "education_required", "salary_range",
	}
)

func (r candidateRecord) toCandidate() (*recruiting.Candidate, error) {
	status, err := recruiting.ParseStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return nil, fmt.Errorf("candidate %s: %w", r.ID, err)
	}
	return &recruiting.Candidate{
		ID:              strings.TrimSpace(r.ID),
		Name:            r.Name,
		Email:           r.Email,
		CurrentRole:     r.CurrentRole,
		Skills:          r.Skills,
		YearsExperience: r.YearsExperience,
		Education:       r.Education,
		LastCompany:     r.LastCompany,
		ResumeSummary:   r.ResumeSummary,
		Status:          status,
		Score:           r.Score,
		MatchedJobs:     splitMatchedJobs(r.MatchedJobs),
	}, nil
}

func fromCandidate(c *recruiting.Candidate) candidateRecord {
	status := c.Status
	if status == "" {
		status = recruiting.StatusAvailable
	}
	return candidateRecord{
		ID:              c.ID,
		Name:            c.Name,
		Email:           c.Email,
		CurrentRole:     c.CurrentRole,
		Skills:          c.Skills,
		YearsExperience: c.YearsExperience,
		Education:       c.Education,
		LastCompany:     c.LastCompany,
		ResumeSummary:   c.ResumeSummary,
		Status:          string(status),
		Score:           c.Score,
		MatchedJobs:     strings.Join(c.MatchedJobs, matchedJobsSep),
	}
}

func (r candidateRecord) values() []string {
	return []string{
		r.ID, r.Name, r.Email, r.CurrentRole, r.Skills, r.YearsExperience,
		r.Education, r.LastCompany, r.ResumeSummary, r.Status,
		strconv.FormatFloat(r.Score, 'f', -1, 64), r.MatchedJobs,
	}
}

func (r jobRecord) toJob() *recruiting.Job {
	return &recruiting.Job{
		ID:                 strings.TrimSpace(r.ID),
		Title:              r.Title,
		Department:         r.Department,
		Location:           r.Location,
		Description:        r.Description,
		Requirements:       r.Requirements,
		SkillsRequired:     r.SkillsRequired,
		ExperienceRequired: r.ExperienceRequired,
		EducationRequired:  r.EducationRequired,
		SalaryRange:        r.SalaryRange,
	}
}

func fromJob(j *recruiting.Job) jobRecord {
	return jobRecord{
		ID:                 j.ID,
		Title:              j.Title,
		Department:         j.Department,
		Location:           j.Location,
		Description:        j.Description,
		Requirements:       j.Requirements,
		SkillsRequired:     j.SkillsRequired,
		ExperienceRequired: j.ExperienceRequired,
		EducationRequired:  j.EducationRequired,
		SalaryRange:        j.SalaryRange,
	}
}

func (r jobRecord) values() []string {
	return []string{
		r.ID, r.Title, r.Department, r.Location, r.Description, r.Requirements,
		r.SkillsRequired, r.ExperienceRequired, r.EducationRequired, r.SalaryRange,
	}
}

// splitMatchedJobs parses the ", "-joined id list, dropping blanks and duplicates.
func splitMatchedJobs(s string) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
