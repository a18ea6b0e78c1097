package matching

import "fmt"

// Recommendation is the screening verdict for a semantic score.
type Recommendation struct {
	Label    string  `json:"label"`
	FitScore float64 `json:"fit_score"`
	Summary  string  `json:"summary"`
}

type tier struct {
	above    float64
	label    string
	fitScore float64
	summary  string
}

// Tiers are checked top-down; the first one whose bound the score exceeds wins.
var tiers = []tier{
	{
		above:    0.8,
		label:    "Strong Match - Proceed to Interview",
		fitScore: 0.9,
		summary:  "Excellent match for the %s role. The candidate has most required skills and relevant experience.",
	},
	{
		above:    0.6,
		label:    "Good Match - Proceed to Interview",
		fitScore: 0.7,
		summary:  "Good match for the %s role. The candidate has many required skills but may lack experience in some areas.",
	},
	{
		above:    0.4,
		label:    "Moderate Match - Consider for Interview",
		fitScore: 0.5,
		summary:  "Moderate match for the %s role. The candidate has some required skills but lacks experience or education requirements.",
	},
}

var poor = tier{
	label:    "Poor Match - Do Not Proceed",
	fitScore: 0.3,
	summary:  "Poor match for the %s role. The candidate lacks many required skills and experience.",
}

func Recommend(score float64, jobTitle string) Recommendation {
	chosen := poor
	for _, t := range tiers {
		if score > t.above {
			chosen = t
			break
		}
	}
	return Recommendation{
		Label:    chosen.label,
		FitScore: chosen.fitScore,
		Summary:  fmt.Sprintf(chosen.summary, jobTitle),
	}
}
