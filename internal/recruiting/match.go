package recruiting

// MatchResult is the ephemeral outcome of scoring one candidate against one job.
// Only its effect on the candidate record is ever persisted.
type MatchResult struct {
	CandidateID     string   `json:"candidate_id"`
	CandidateName   string   `json:"candidate_name,omitempty"`
	JobID           string   `json:"job_id"`
	LexicalScore    float64  `json:"lexical_score"`
	SkillMatch      float64  `json:"skill_match"`
	ExperienceMatch float64  `json:"experience_match"`
	SemanticScore   *float64 `json:"semantic_score,omitempty"`
	SemanticMethod  string   `json:"semantic_method,omitempty"`
	CombinedScore   float64  `json:"combined_score"`
	SkillMatches    []string `json:"skill_matches"`
	SkillGaps       []string `json:"skill_gaps"`
}

// ProfileMatch is a full-profile embedding match between a candidate and a job.
type ProfileMatch struct {
	CandidateID   string  `json:"candidate_id"`
	CandidateName string  `json:"name,omitempty"`
	CurrentRole   string  `json:"current_role,omitempty"`
	JobID         string  `json:"job_id"`
	JobTitle      string  `json:"title,omitempty"`
	Score         float64 `json:"score"`
}
