// Package pipeline applies match and screening outcomes to candidate records.
//
// Every function mutates the candidate it is given; persisting the collection is
// the caller's job.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/spigell/talent-matcher/internal/matching"
	"github.com/spigell/talent-matcher/internal/recruiting"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// next lists the single forward step allowed from each non-terminal status.
var next = map[recruiting.Status]recruiting.Status{
	recruiting.StatusAvailable:          recruiting.StatusScreening,
	recruiting.StatusScreening:          recruiting.StatusInterviewScheduled,
	recruiting.StatusInterviewScheduled: recruiting.StatusOffer,
	recruiting.StatusOffer:              recruiting.StatusHired,
}

// WidenScore keeps the best score ever seen for the candidate, across all jobs.
// It returns true if the stored score grew.
func WidenScore(c *recruiting.Candidate, score float64) bool {
	if score > c.Score {
		c.Score = score
		return true
	}
	return false
}

// RecordMatch tracks the job for the candidate when score exceeds matching.PersistThreshold,
// then widens the stored score. Status is left alone. Calling it again with the same
// arguments changes nothing.
func RecordMatch(c *recruiting.Candidate, jobID string, score float64) {
	if score > matching.PersistThreshold {
		c.AddMatchedJob(jobID)
	}
	WidenScore(c, score)
}

// RecordScreening widens the score, tracks the job and moves the candidate to
// Screening whatever its current status is.
//
// This is a convenience transition rather than a guarded one: a Hired or
// Rejected candidate screened again goes back to Screening.
func RecordScreening(c *recruiting.Candidate, jobID string, score float64) {
	WidenScore(c, score)
	c.AddMatchedJob(jobID)
	c.Status = recruiting.StatusScreening
}

// Transition applies an explicit status change. Allowed moves are one step
// forward along the workflow or to Rejected from any non-terminal status.
func Transition(c *recruiting.Candidate, to recruiting.Status) error {
	from := c.Status
	if from == "" {
		from = recruiting.StatusAvailable
	}

	if from == to {
		return nil
	}

	if from.IsTerminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	}

	if to == recruiting.StatusRejected || next[from] == to {
		c.Status = to
		return nil
	}

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
