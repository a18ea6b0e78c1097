package scoring

import (
	"math"
	"regexp"
	"strings"
)

// Tokens are runs of two or more Unicode letters, digits or underscores, lower-cased.
var termRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func terms(doc string) []string {
	return termRe.FindAllString(strings.ToLower(doc), -1)
}

// TFIDFSimilarity vectorizes exactly the two documents with smoothed TF-IDF weights
// and returns the cosine similarity of the two L2-normalized vectors.
//
// The idf statistics come from this pair alone, so the score is relative to the
// pair and not comparable across unrelated comparisons.
func TFIDFSimilarity(a, b string) float64 {
	docs := [2]map[string]float64{termCounts(a), termCounts(b)}
	if len(docs[0]) == 0 || len(docs[1]) == 0 {
		return 0
	}

	const n = 2.0
	idf := func(term string) float64 {
		df := 0.0
		for _, d := range docs {
			if _, ok := d[term]; ok {
				df++
			}
		}
		return math.Log((1+n)/(1+df)) + 1
	}

	var vecs [2]map[string]float64
	for i, d := range docs {
		v := make(map[string]float64, len(d))
		for term, tf := range d {
			v[term] = tf * idf(term)
		}
		vecs[i] = v
	}

	var dot, na, nb float64
	for term, w := range vecs[0] {
		na += w * w
		if wb, ok := vecs[1][term]; ok {
			dot += w * wb
		}
	}
	for _, w := range vecs[1] {
		nb += w * w
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp01(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func termCounts(doc string) map[string]float64 {
	counts := make(map[string]float64)
	for _, t := range terms(doc) {
		counts[t]++
	}
	return counts
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
