package organize

import "math"

// TopicMatchThreshold is the fixed similarity cutoff between linking an item to
// its best-matching topic and creating a new one.
const TopicMatchThreshold = 0.78

type Decision string

const (
	DecisionLink   Decision = "link"
	DecisionCreate Decision = "create"
)

// CosineSimilarity returns the cosine of the angle between a and b in [-1, 1].
// Mismatched lengths, empty vectors, and zero vectors all score 0 rather than
// erroring; with one embedding model per workspace they should not occur.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, magnitudeA, magnitudeB float64
	for i := range a {
		dot += a[i] * b[i]
		magnitudeA += a[i] * a[i]
		magnitudeB += b[i] * b[i]
	}
	if magnitudeA == 0 || magnitudeB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magnitudeA) * math.Sqrt(magnitudeB))
}

// ClassifySimilarity maps a similarity score to a link-or-create decision.
// The threshold itself classifies as link.
func ClassifySimilarity(score float64) Decision {
	if score >= TopicMatchThreshold {
		return DecisionLink
	}
	return DecisionCreate
}
