// Package features turns free-text skill and experience fields into comparable values.
package features

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultExperienceYears is used when a candidate's experience text carries no digits.
	DefaultExperienceYears = 1
	// DefaultRangeMin and DefaultRangeMax bound a requirement that names no years at all.
	DefaultRangeMin = 0
	DefaultRangeMax = 10
	// RangeWidening turns a single "N years" requirement into the range [N, N+2].
	RangeWidening = 2
)

var digitsRe = regexp.MustCompile(`\d+`)

// SkillSet is a set of lower-cased skill tokens that remembers insertion order.
type SkillSet struct {
	order []string
	index map[string]struct{}
}

func NewSkillSet(tokens ...string) SkillSet {
	s := SkillSet{index: make(map[string]struct{}, len(tokens))}
	for _, t := range tokens {
		s.add(t)
	}
	return s
}

func (s *SkillSet) add(token string) {
	if token == "" {
		return
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[token]; ok {
		return
	}
	s.index[token] = struct{}{}
	s.order = append(s.order, token)
}

func (s SkillSet) Len() int {
	return len(s.order)
}

func (s SkillSet) Contains(token string) bool {
	_, ok := s.index[token]
	return ok
}

// Slice returns the tokens in first-seen order.
func (s SkillSet) Slice() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Intersect returns the tokens of s that are also in other, in s order.
func (s SkillSet) Intersect(other SkillSet) SkillSet {
	out := NewSkillSet()
	for _, t := range s.order {
		if other.Contains(t) {
			out.add(t)
		}
	}
	return out
}

// Minus returns the tokens of s that are not in other, in s order.
func (s SkillSet) Minus(other SkillSet) SkillSet {
	out := NewSkillSet()
	for _, t := range s.order {
		if !other.Contains(t) {
			out.add(t)
		}
	}
	return out
}

// ExtractSkills lower-cases text, drops commas and splits on whitespace.
// Multi-word skills therefore become several tokens ("machine learning" -> machine, learning).
func ExtractSkills(text string) SkillSet {
	cleaned := strings.ReplaceAll(strings.ToLower(text), ",", "")
	return NewSkillSet(strings.Fields(cleaned)...)
}

// ExtractExperienceYears reads a years-of-experience value such as "5" or "5+ years".
func ExtractExperienceYears(text string) int {
	text = strings.TrimSpace(text)
	if isDigits(text) {
		if n, err := strconv.Atoi(text); err == nil {
			return n
		}
	}
	if n, ok := firstNumber(text); ok {
		return n
	}
	return DefaultExperienceYears
}

// Range is an inclusive years-of-experience window.
type Range struct {
	Min int
	Max int
}

// ExtractExperienceRange reads a requirement such as "3-5" or "5 years".
func ExtractExperienceRange(text string) Range {
	if lo, hi, ok := strings.Cut(text, "-"); ok {
		r := Range{Min: DefaultRangeMin, Max: DefaultRangeMax}
		if n, found := firstNumber(lo); found {
			r.Min = n
		}
		// Only the text up to the next dash counts as the upper bound.
		hi, _, _ = strings.Cut(hi, "-")
		if n, found := firstNumber(hi); found {
			r.Max = n
		}
		return r
	}

	if n, ok := firstNumber(text); ok {
		return Range{Min: n, Max: n + RangeWidening}
	}
	return Range{Min: DefaultRangeMin, Max: DefaultRangeMax}
}

func firstNumber(text string) (int, bool) {
	match := digitsRe.FindString(text)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
