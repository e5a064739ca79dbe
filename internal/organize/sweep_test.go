package organize

import (
	"testing"
	"time"
)

func TestGroupDuplicatesNormalizesNames(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	topics := []sweepTopic{
		{TopicID: 1, Name: "Research", CreatedAt: base},
		{TopicID: 2, Name: "research ", CreatedAt: base.Add(time.Hour)},
		{TopicID: 3, Name: "Research", CreatedAt: base.Add(2 * time.Hour)},
		{TopicID: 4, Name: "Cooking", CreatedAt: base},
	}

	groups := groupDuplicates(topics)
	if len(groups) != 1 {
		t.Fatalf("expected one duplicate group, got %d", len(groups))
	}

	group := groups[0]
	if len(group) != 3 {
		t.Fatalf("expected three members in the research group, got %d", len(group))
	}
	if group[0].TopicID != 1 {
		t.Fatalf("canonical must be the earliest-created topic, got %d", group[0].TopicID)
	}
}

func TestGroupDuplicatesCanonicalTieBreak(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	topics := []sweepTopic{
		{TopicID: 9, Name: "inbox", CreatedAt: created},
		{TopicID: 4, Name: "Inbox", CreatedAt: created},
	}

	groups := groupDuplicates(topics)
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}
	if groups[0][0].TopicID != 4 {
		t.Fatalf("equal timestamps must tie-break on lowest id, got %d", groups[0][0].TopicID)
	}
}

func TestGroupDuplicatesIdempotentAfterMerge(t *testing.T) {
	t.Parallel()

	// State after a first sweep pass: one survivor per normalized name.
	survivors := []sweepTopic{
		{TopicID: 1, Name: "Research", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{TopicID: 4, Name: "Cooking", CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
	}

	if groups := groupDuplicates(survivors); len(groups) != 0 {
		t.Fatalf("second pass must find zero duplicate groups, got %d", len(groups))
	}
}

func TestGroupDuplicatesSkipsBlankNames(t *testing.T) {
	t.Parallel()

	topics := []sweepTopic{
		{TopicID: 1, Name: "   "},
		{TopicID: 2, Name: ""},
	}

	if groups := groupDuplicates(topics); len(groups) != 0 {
		t.Fatalf("blank names must not form groups, got %d", len(groups))
	}
}
