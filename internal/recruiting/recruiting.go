package recruiting

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Status is the candidate's current stage in the hiring workflow.
type Status string

const (
	StatusAvailable          Status = "Available"
	StatusScreening          Status = "Screening"
	StatusInterviewScheduled Status = "Interview Scheduled"
	StatusOffer              Status = "Offer"
	StatusHired              Status = "Hired"
	StatusRejected           Status = "Rejected"
)

// Statuses lists every pipeline status in workflow order.
var Statuses = []Status{
	StatusAvailable,
	StatusScreening,
	StatusInterviewScheduled,
	StatusOffer,
	StatusHired,
	StatusRejected,
}

// ParseStatus returns the status with the given name. Empty input maps to Available.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusAvailable, nil
	}
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown candidate status %q", s)
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusHired || s == StatusRejected
}

type Candidate struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email,omitempty"`
	CurrentRole     string   `json:"current_role"`
	Skills          string   `json:"skills"`
	YearsExperience string   `json:"years_experience"`
	Education       string   `json:"education"`
	LastCompany     string   `json:"last_company,omitempty"`
	ResumeSummary   string   `json:"resume_summary"`
	Status          Status   `json:"status"`
	Score           float64  `json:"score"`
	MatchedJobs     []string `json:"matched_jobs,omitempty"`
}

// HasMatchedJob reports whether jobID is already tracked for the candidate.
func (c *Candidate) HasMatchedJob(jobID string) bool {
	for _, id := range c.MatchedJobs {
		if id == jobID {
			return true
		}
	}
	return false
}

// AddMatchedJob appends jobID unless it is already present. It returns true if the set changed.
func (c *Candidate) AddMatchedJob(jobID string) bool {
	if jobID == "" || c.HasMatchedJob(jobID) {
		return false
	}
	c.MatchedJobs = append(c.MatchedJobs, jobID)
	return true
}

// ProfileText is the full candidate profile compared against job profiles.
func (c *Candidate) ProfileText() string {
	return strings.Join([]string{
		c.Name,
		c.CurrentRole,
		c.Skills,
		c.ResumeSummary,
		c.YearsExperience + " years experience",
		"Education: " + c.Education,
		"Last company: " + c.LastCompany,
	}, "\n")
}

type Job struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Department         string `json:"department"`
	Location           string `json:"location,omitempty"`
	Description        string `json:"description"`
	Requirements       string `json:"requirements"`
	SkillsRequired     string `json:"skills_required"`
	ExperienceRequired string `json:"experience_required"`
	EducationRequired  string `json:"education_required"`
	SalaryRange        string `json:"salary_range"`
}

// RequirementsText is the text compared against a resume summary.
// Postings without a requirements block fall back to the description.
func (j *Job) RequirementsText() string {
	if j.Requirements != "" {
		return j.Requirements
	}
	return j.Description
}

// ProfileText is the full job profile compared against candidate profiles.
func (j *Job) ProfileText() string {
	return strings.Join([]string{
		j.Title,
		j.Department,
		j.Description,
		"Requirements: " + j.Requirements,
		"Skills required: " + j.SkillsRequired,
		"Experience required: " + j.ExperienceRequired,
		"Education required: " + j.EducationRequired,
	}, "\n")
}

type Candidates struct {
	Items []*Candidate
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) FindByID(id string) *Candidate {
	for _, candidate := range c.Items {
		if candidate.ID == id {
			return candidate
		}
	}
	return nil
}

// MatchedTo returns candidates that track jobID in their matched jobs, in store order.
func (c *Candidates) MatchedTo(jobID string) []*Candidate {
	matched := make([]*Candidate, 0)
	for _, candidate := range c.Items {
		if candidate.HasMatchedJob(jobID) {
			matched = append(matched, candidate)
		}
	}
	return matched
}

func (c *Candidates) WithStatus(status Status) []*Candidate {
	filtered := make([]*Candidate, 0)
	for _, candidate := range c.Items {
		if candidate.Status == status {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}

// NextID returns one more than the largest numeric id in the collection.
// Non-numeric ids are ignored.
func (c *Candidates) NextID() string {
	highest := 0
	for _, candidate := range c.Items {
		n, err := strconv.Atoi(candidate.ID)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

// ReportByStatus groups candidates by pipeline status for display.
func (c *Candidates) ReportByStatus() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, candidate := range c.Items {
		key := string(candidate.Status)
		report[key] = append(report[key], map[string]string{
			"id":           candidate.ID,
			"name":         candidate.Name,
			"current_role": candidate.CurrentRole,
			"score":        strconv.FormatFloat(candidate.Score, 'f', 2, 64),
		})
	}
	return report
}

type Jobs struct {
	Items []*Job
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *Job {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

// DumpToTmpFile writes v as indented JSON to a new temporary file and returns its name.
func DumpToTmpFile(pattern string, v any) (string, error) {
	file, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}
