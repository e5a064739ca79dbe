package httpapi

import (
	"github.com/labstack/echo/v4"

	"github.com/burrowhq/burrow/internal/db"
)

type topicTreeNode struct {
	db.TopicNode
	Children []*topicTreeNode `json:"children"`
}

func (s *Server) handleTopicTree(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	nodes, err := s.pool.ListTopicTree(c.Request().Context(), principal.WorkspaceID)
	if err != nil {
		s.logger.Error().Err(err).Int64("workspace_id", principal.WorkspaceID).Msg("topic tree failed")
		return internalError(c, "Failed to load topics")
	}

	roots := buildTopicTree(nodes)
	return success(c, map[string]any{
		"count":  len(nodes),
		"topics": roots,
	})
}

// buildTopicTree nests flat rows by parent uuid. Rows pointing at a missing
// or deleted parent surface as roots rather than vanishing, and a parent loop
// is broken by promoting the closing row to a root.
func buildTopicTree(nodes []db.TopicNode) []*topicTreeNode {
	byUUID := make(map[string]*topicTreeNode, len(nodes))
	ordered := make([]*topicTreeNode, 0, len(nodes))
	for _, node := range nodes {
		wrapped := &topicTreeNode{TopicNode: node, Children: []*topicTreeNode{}}
		byUUID[node.TopicUUID] = wrapped
		ordered = append(ordered, wrapped)
	}

	parentOf := make(map[*topicTreeNode]*topicTreeNode, len(ordered))
	roots := make([]*topicTreeNode, 0, len(ordered))
	for _, node := range ordered {
		if node.ParentTopicUUID != nil {
			if parent, exists := byUUID[*node.ParentTopicUUID]; exists && parent != node && !closesLoop(parentOf, node, parent) {
				parent.Children = append(parent.Children, node)
				parentOf[node] = parent
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// closesLoop reports whether attaching child under parent would make child an
// ancestor of itself.
func closesLoop(parentOf map[*topicTreeNode]*topicTreeNode, child, parent *topicTreeNode) bool {
	for node := parent; node != nil; node = parentOf[node] {
		if node == child {
			return true
		}
	}
	return false
}
