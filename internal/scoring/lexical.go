// Package scoring computes candidate/job similarity from keyword overlap and from text embeddings.
package scoring

import (
	"strconv"

	"github.com/spigell/talent-matcher/internal/features"
	"github.com/spigell/talent-matcher/internal/recruiting"
)

const (
	SkillWeight      = 0.7
	ExperienceWeight = 0.3

	// UnderqualifiedCeiling caps the experience match of a candidate below the required minimum.
	UnderqualifiedCeiling = 0.5
	// OverqualifiedMatch is the experience match of a candidate above the required maximum.
	OverqualifiedMatch = 0.8
	InRangeMatch       = 1.0
)

// Breakdown is a lexical score together with its parts.
type Breakdown struct {
	Score           float64
	SkillMatch      float64
	ExperienceMatch float64
	Matches         features.SkillSet
	Gaps            features.SkillSet
}

// SkillMatch is the share of required skills the candidate lists. No requirements score zero.
func SkillMatch(candidate, required features.SkillSet) float64 {
	if required.Len() == 0 {
		return 0
	}
	return float64(required.Intersect(candidate).Len()) / float64(required.Len())
}

// ExperienceMatch scores years of experience against an inclusive range.
func ExperienceMatch(years int, r features.Range) float64 {
	switch {
	case years < r.Min:
		if r.Min > 0 {
			return UnderqualifiedCeiling * (float64(years) / float64(r.Min))
		}
		return UnderqualifiedCeiling
	case years > r.Max:
		return OverqualifiedMatch
	default:
		return InRangeMatch
	}
}

// Combine weights skill and experience matches and rounds to two decimals.
func Combine(skillMatch, experienceMatch float64) float64 {
	return Round2(SkillWeight*skillMatch + ExperienceWeight*experienceMatch)
}

// Round2 rounds the exact decimal value of v to two decimals, ties to even.
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// Lexical scores candidates without any external model.
type Lexical struct{}

func (Lexical) Score(candidate *recruiting.Candidate, job *recruiting.Job) Breakdown {
	candidateSkills := features.ExtractSkills(candidate.Skills)
	required := features.ExtractSkills(job.SkillsRequired)

	skill := SkillMatch(candidateSkills, required)
	experience := ExperienceMatch(
		features.ExtractExperienceYears(candidate.YearsExperience),
		features.ExtractExperienceRange(job.ExperienceRequired),
	)

	return Breakdown{
		Score:           Combine(skill, experience),
		SkillMatch:      skill,
		ExperienceMatch: experience,
		Matches:         required.Intersect(candidateSkills),
		Gaps:            required.Minus(candidateSkills),
	}
}
