package organize

import (
	"strings"
	"testing"
)

func TestBuildTopicName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		summary string
		want    string
	}{
		{"Planning the quarterly marketing budget review for the team", "Planning the quarterly marketing budget"},
		{"What is a monad? And why should I care", "What is a monad"},
		{"hello", "hello"},
		{"", "Inbox"},
		{"?!.", "Inbox"},
		{"notes - draft (v2)", "notes - draft v2"},
	}

	for _, tc := range cases {
		if got := BuildTopicName(tc.summary); got != tc.want {
			t.Fatalf("BuildTopicName(%q) = %q, want %q", tc.summary, got, tc.want)
		}
	}
}

func TestSummarizeCollapsesAndBounds(t *testing.T) {
	t.Parallel()

	got := Summarize("  hello \n\t world  ")
	if got != "hello world" {
		t.Fatalf("unexpected summary: %q", got)
	}

	long := strings.Repeat("word ", 100)
	summary := Summarize(long)
	if len([]rune(summary)) > 240 {
		t.Fatalf("summary exceeds bound: %d runes", len([]rune(summary)))
	}
	if strings.Contains(summary, "  ") {
		t.Fatalf("summary contains uncollapsed whitespace: %q", summary)
	}
}

func TestChooseTopicPicksMaximum(t *testing.T) {
	t.Parallel()

	candidates := []topicCandidate{
		{TopicID: 1, Name: "go", Vector: []float64{1, 0}},
		{TopicID: 2, Name: "cooking", Vector: []float64{0, 1}},
		{TopicID: 3, Name: "no-vector"},
	}

	best, score := chooseTopic([]float64{0.1, 0.9}, candidates)
	if best == nil || best.TopicID != 2 {
		t.Fatalf("expected topic 2 to win, got %+v", best)
	}
	if score <= 0.9 {
		t.Fatalf("unexpected best score %f", score)
	}
}

func TestChooseTopicStableOnTies(t *testing.T) {
	t.Parallel()

	candidates := []topicCandidate{
		{TopicID: 10, Name: "first", Vector: []float64{1, 0}},
		{TopicID: 20, Name: "second", Vector: []float64{1, 0}},
	}

	best, _ := chooseTopic([]float64{1, 0}, candidates)
	if best == nil || best.TopicID != 10 {
		t.Fatalf("tie must keep first-seen candidate, got %+v", best)
	}
}

func TestChooseTopicWithoutVector(t *testing.T) {
	t.Parallel()

	candidates := []topicCandidate{
		{TopicID: 1, Name: "go", Vector: []float64{1, 0}},
	}

	if best, score := chooseTopic(nil, candidates); best != nil || score != 0 {
		t.Fatalf("missing query vector must not match, got %+v score=%f", best, score)
	}
	if best, _ := chooseTopic([]float64{1, 0}, nil); best != nil {
		t.Fatalf("empty candidate set must not match, got %+v", best)
	}
}
