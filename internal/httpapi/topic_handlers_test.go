package httpapi

import (
	"testing"

	"github.com/burrowhq/burrow/internal/db"
)

func TestBuildTopicTreeNestsChildren(t *testing.T) {
	t.Parallel()

	parentUUID := "11111111-1111-1111-1111-111111111111"
	childUUID := "22222222-2222-2222-2222-222222222222"

	nodes := []db.TopicNode{
		{TopicUUID: parentUUID, Name: "Research"},
		{TopicUUID: childUUID, Name: "Vector search", ParentTopicUUID: &parentUUID},
	}

	roots := buildTopicTree(nodes)
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}
	if roots[0].Name != "Research" {
		t.Fatalf("unexpected root: %q", roots[0].Name)
	}
	if len(roots[0].Children) != 1 || roots[0].Children[0].Name != "Vector search" {
		t.Fatalf("expected nested child, got %+v", roots[0].Children)
	}
}

func TestBuildTopicTreeOrphanBecomesRoot(t *testing.T) {
	t.Parallel()

	missingParent := "99999999-9999-9999-9999-999999999999"
	nodes := []db.TopicNode{
		{TopicUUID: "33333333-3333-3333-3333-333333333333", Name: "Orphan", ParentTopicUUID: &missingParent},
	}

	roots := buildTopicTree(nodes)
	if len(roots) != 1 || roots[0].Name != "Orphan" {
		t.Fatalf("expected orphan surfaced as root, got %+v", roots)
	}
}

func TestBuildTopicTreeSelfParent(t *testing.T) {
	t.Parallel()

	selfUUID := "44444444-4444-4444-4444-444444444444"
	nodes := []db.TopicNode{
		{TopicUUID: selfUUID, Name: "Loop", ParentTopicUUID: &selfUUID},
	}

	roots := buildTopicTree(nodes)
	if len(roots) != 1 || roots[0].Name != "Loop" {
		t.Fatalf("expected self-referencing topic as root, got %+v", roots)
	}
	if len(roots[0].Children) != 0 {
		t.Fatalf("did not expect self-referencing child, got %+v", roots[0].Children)
	}
}

func TestBuildTopicTreeBreaksParentLoop(t *testing.T) {
	t.Parallel()

	aUUID := "55555555-5555-5555-5555-555555555555"
	bUUID := "66666666-6666-6666-6666-666666666666"
	cUUID := "77777777-7777-7777-7777-777777777777"

	nodes := []db.TopicNode{
		{TopicUUID: aUUID, Name: "Alpha", ParentTopicUUID: &bUUID},
		{TopicUUID: bUUID, Name: "Beta", ParentTopicUUID: &cUUID},
		{TopicUUID: cUUID, Name: "Gamma", ParentTopicUUID: &aUUID},
	}

	roots := buildTopicTree(nodes)
	if len(roots) != 1 {
		t.Fatalf("expected the loop broken into 1 root, got %d", len(roots))
	}

	seen := map[string]bool{}
	var walk func(node *topicTreeNode)
	walk = func(node *topicTreeNode) {
		seen[node.Name] = true
		for _, child := range node.Children {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		if !seen[name] {
			t.Fatalf("topic %q vanished from the tree", name)
		}
	}
}
