package organize

import (
	"math"
	"testing"
)

func TestClassifySimilarityBoundary(t *testing.T) {
	t.Parallel()

	if got := ClassifySimilarity(TopicMatchThreshold); got != DecisionLink {
		t.Fatalf("score at threshold must link, got %q", got)
	}
	if got := ClassifySimilarity(0.7799); got != DecisionCreate {
		t.Fatalf("score below threshold must create, got %q", got)
	}
	if got := ClassifySimilarity(0.9); got != DecisionLink {
		t.Fatalf("high score must link, got %q", got)
	}
	if got := ClassifySimilarity(0.45); got != DecisionCreate {
		t.Fatalf("low score must create, got %q", got)
	}
}

func TestCosineSimilaritySelf(t *testing.T) {
	t.Parallel()

	v := []float64{0.3, -0.7, 1.2}
	if got := CosineSimilarity(v, v); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("self similarity must be 1.0, got %f", got)
	}
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	t.Parallel()

	if got := CosineSimilarity([]float64{1, 0}, []float64{0, 1}); got != 0 {
		t.Fatalf("orthogonal vectors must score 0, got %f", got)
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	t.Parallel()

	a := []float64{0.2, 0.5, -0.1}
	b := []float64{0.9, -0.4, 0.3}
	if CosineSimilarity(a, b) != CosineSimilarity(b, a) {
		t.Fatalf("similarity must be symmetric")
	}
}

func TestCosineSimilarityDegenerateInputs(t *testing.T) {
	t.Parallel()

	if got := CosineSimilarity(nil, nil); got != 0 {
		t.Fatalf("empty vectors must score 0, got %f", got)
	}
	if got := CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}); got != 0 {
		t.Fatalf("length mismatch must score 0, got %f", got)
	}
	if got := CosineSimilarity([]float64{0, 0}, []float64{1, 1}); got != 0 {
		t.Fatalf("zero vector must score 0, got %f", got)
	}
}
