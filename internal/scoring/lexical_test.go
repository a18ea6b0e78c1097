package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spigell/talent-matcher/internal/features"
	"github.com/spigell/talent-matcher/internal/recruiting"
)

func TestSkillMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate string
		required  string
		expect    float64
	}{
		{name: "partial overlap", candidate: "python, sql, aws", required: "python, java, aws", expect: 2.0 / 3.0},
		{name: "no requirements", candidate: "python", required: "", expect: 0},
		{name: "no overlap", candidate: "go", required: "java, kotlin", expect: 0},
		{name: "superset covers all", candidate: "go, sql, docker", required: "go, sql", expect: 1},
		{name: "empty candidate", candidate: "", required: "go", expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SkillMatch(features.ExtractSkills(tt.candidate), features.ExtractSkills(tt.required))
			assert.InDelta(t, tt.expect, got, 1e-9)
		})
	}
}

func TestExperienceMatchPiecewise(t *testing.T) {
	r := features.Range{Min: 3, Max: 5}

	for years := 3; years <= 5; years++ {
		assert.Equal(t, 1.0, ExperienceMatch(years, r), "years=%d inside range", years)
	}
	for _, years := range []int{6, 10, 40} {
		assert.Equal(t, 0.8, ExperienceMatch(years, r), "years=%d above range", years)
	}

	prev := -1.0
	for years := 0; years < 3; years++ {
		got := ExperienceMatch(years, r)
		assert.Greater(t, got, prev, "must increase with years")
		assert.LessOrEqual(t, got, 0.5)
		prev = got
	}
}

func TestExperienceMatchScenarios(t *testing.T) {
	// "5 years" against "3-5".
	got := ExperienceMatch(features.ExtractExperienceYears("5 years"), features.ExtractExperienceRange("3-5"))
	assert.Equal(t, 1.0, got)

	// "1" against "5" widens to [5,7].
	got = ExperienceMatch(features.ExtractExperienceYears("1"), features.ExtractExperienceRange("5"))
	assert.InDelta(t, 0.1, got, 1e-9)

	// Negative years cannot come from the extractor, but a zero minimum still scores 0.5 below it.
	assert.Equal(t, 0.5, ExperienceMatch(-1, features.Range{Min: 0, Max: 2}))
}

func TestCombine(t *testing.T) {
	assert.Equal(t, 1.0, Combine(1, 1))
	assert.Equal(t, 0.0, Combine(0, 0))
	assert.Equal(t, 0.77, Combine(2.0/3.0, 1))
	assert.Equal(t, 0.73, Combine(1, 0.1))
	assert.Equal(t, 0.07, Combine(0, 0.25))
	assert.Equal(t, 0.38, Combine(0.5, 0.1))
}

func TestRound2(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     float64
		expect float64
	}{
		{in: 0.60499999999999998, expect: 0.6},
		{in: 0.075, expect: 0.07},
		{in: 0.125, expect: 0.12},
		{in: 0.375, expect: 0.38},
		{in: 0.6666, expect: 0.67},
		{in: 1, expect: 1},
		{in: 0, expect: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expect, Round2(tt.in), "round %v", tt.in)
	}
}

func TestLexicalScoreStaysBelowPersistBoundary(t *testing.T) {
	candidate := &recruiting.Candidate{ID: "1", Skills: "a, b, c, d", YearsExperience: "3"}
	job := &recruiting.Job{ID: "10", SkillsRequired: "a, b, c, d, e", ExperienceRequired: "10-12"}

	b := Lexical{}.Score(candidate, job)

	assert.InDelta(t, 0.8, b.SkillMatch, 1e-9)
	assert.InDelta(t, 0.15, b.ExperienceMatch, 1e-9)
	assert.Equal(t, 0.6, b.Score)
}

func TestLexicalScore(t *testing.T) {
	candidate := &recruiting.Candidate{ID: "1", Skills: "Python, SQL, AWS", YearsExperience: "5 years"}
	job := &recruiting.Job{ID: "10", SkillsRequired: "Python, Java, AWS", ExperienceRequired: "3-5"}

	b := Lexical{}.Score(candidate, job)

	assert.InDelta(t, 0.67, b.SkillMatch, 0.005)
	assert.Equal(t, 1.0, b.ExperienceMatch)
	assert.Equal(t, 0.77, b.Score)
	assert.Equal(t, []string{"python", "aws"}, b.Matches.Slice())
	assert.Equal(t, []string{"java"}, b.Gaps.Slice())
}

func TestLexicalScoreEmptyFields(t *testing.T) {
	b := Lexical{}.Score(&recruiting.Candidate{}, &recruiting.Job{})

	// No skills required; default years (1) falls inside the default 0-10 range.
	assert.Equal(t, 0.0, b.SkillMatch)
	assert.Equal(t, 1.0, b.ExperienceMatch)
	assert.Equal(t, 0.3, b.Score)
	assert.Empty(t, b.Gaps.Slice())
}
