package search

import (
	"fmt"
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func TestMergeResultsKeepsBestEvidencePerItem(t *testing.T) {
	t.Parallel()

	title := []Result{
		{ItemUUID: "a", Strategy: "title", Score: titleMatchScore},
	}
	content := []Result{
		{ItemUUID: "a", Strategy: "content", Score: contentMatchScore},
		{ItemUUID: "b", Strategy: "content", Score: contentMatchScore},
	}

	merged := mergeResults(title, content)

	if len(merged) != 2 {
		t.Fatalf("expected 2 merged results, got %d", len(merged))
	}
	if merged[0].ItemUUID != "a" || merged[0].Strategy != "title" {
		t.Fatalf("expected item a to keep its title evidence, got %+v", merged[0])
	}
	if merged[0].Score != titleMatchScore {
		t.Fatalf("expected best score %v for item a, got %v", titleMatchScore, merged[0].Score)
	}
}

func TestMergeResultsUpgradesToHigherScore(t *testing.T) {
	t.Parallel()

	content := []Result{
		{ItemUUID: "a", Strategy: "content", Score: contentMatchScore},
	}
	semantic := []Result{
		{ItemUUID: "a", Strategy: "semantic", Score: 0.95},
	}

	merged := mergeResults(content, semantic)

	if len(merged) != 1 {
		t.Fatalf("expected 1 merged result, got %d", len(merged))
	}
	if merged[0].Strategy != "semantic" || merged[0].Score != 0.95 {
		t.Fatalf("expected semantic evidence to win, got %+v", merged[0])
	}
}

func TestMergeResultsSortsDescendingStable(t *testing.T) {
	t.Parallel()

	content := []Result{
		{ItemUUID: "c1", Strategy: "content", Score: contentMatchScore},
		{ItemUUID: "c2", Strategy: "content", Score: contentMatchScore},
	}
	semantic := []Result{
		{ItemUUID: "s1", Strategy: "semantic", Score: 0.8},
	}

	merged := mergeResults(nil, content, semantic)

	if len(merged) != 3 {
		t.Fatalf("expected 3 merged results, got %d", len(merged))
	}
	if merged[0].ItemUUID != "s1" {
		t.Fatalf("expected highest score first, got %+v", merged[0])
	}
	if merged[1].ItemUUID != "c1" || merged[2].ItemUUID != "c2" {
		t.Fatalf("expected tied scores to keep insertion order, got %s then %s",
			merged[1].ItemUUID, merged[2].ItemUUID)
	}
}

func TestMergeResultsCapsList(t *testing.T) {
	t.Parallel()

	var title []Result
	for i := 0; i < maxMergedCount+10; i++ {
		title = append(title, Result{
			ItemUUID: fmt.Sprintf("item-%d", i),
			Strategy: "title",
			Score:    titleMatchScore,
		})
	}

	merged := mergeResults(title)
	if len(merged) != maxMergedCount {
		t.Fatalf("expected merged list capped at %d, got %d", maxMergedCount, len(merged))
	}
}

func TestSnippetTruncation(t *testing.T) {
	t.Parallel()

	short := "a short chunk"
	if got := snippet(short); got != short {
		t.Fatalf("expected short text unchanged, got %q", got)
	}

	long := make([]rune, snippetLength+40)
	for i := range long {
		long[i] = 'x'
	}
	if got := snippet(string(long)); len([]rune(got)) != snippetLength {
		t.Fatalf("expected snippet of %d runes, got %d", snippetLength, len([]rune(got)))
	}
}

func TestQueryLiteralSkipsUnusableVectors(t *testing.T) {
	t.Parallel()

	svc := &Service{logger: zerolog.Nop()}

	if literal, ok := svc.queryLiteral(1, nil); ok || literal != "" {
		t.Fatalf("expected absent vector to skip the semantic strategy, got %q", literal)
	}
	if literal, ok := svc.queryLiteral(1, []float64{0.5, math.NaN()}); ok || literal != "" {
		t.Fatalf("expected non-finite vector to skip the semantic strategy, got %q", literal)
	}

	literal, ok := svc.queryLiteral(1, []float64{0.25, -0.5})
	if !ok {
		t.Fatalf("expected a finite vector to serialize")
	}
	if literal != "[0.25,-0.5]" {
		t.Fatalf("unexpected vector literal: %q", literal)
	}
}
