package organize

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/embedding"
	"github.com/burrowhq/burrow/internal/globaltime"
)

const (
	summaryMaxLength   = 240
	topicNameMaxWords  = 5
	fallbackTopicName  = "Inbox"
	fallbackConfidence = 0.5
)

var (
	sentenceTailPattern = regexp.MustCompile(`[.!?].*$`)
	nonWordPattern      = regexp.MustCompile(`[^\w\s-]`)
)

type Service struct {
	pool     *db.Pool
	embedder *embedding.Client
	logger   zerolog.Logger
}

// Assignment is the outcome of classifying one item.
type Assignment struct {
	TopicID      int64   `json:"topic_id"`
	TopicUUID    string  `json:"topic_uuid"`
	TopicName    string  `json:"topic_name"`
	Confidence   float64 `json:"confidence"`
	Summary      string  `json:"summary"`
	CreatedTopic bool    `json:"created_topic"`
}

type topicCandidate struct {
	TopicID   int64
	TopicUUID string
	Name      string
	Vector    []float64
}

func NewService(pool *db.Pool, embedder *embedding.Client, logger zerolog.Logger) *Service {
	return &Service{
		pool:     pool,
		embedder: embedder,
		logger:   logger,
	}
}

// ClassifyAndLink assigns an item to its best-matching topic, creating a new
// topic when no existing one scores above the threshold. Exactly one link row
// is written; at most one topic row is created. Persistence failures propagate
// to the caller; embedding failures degrade to the create-topic path.
func (s *Service) ClassifyAndLink(ctx context.Context, workspaceID, itemID int64, content string) (Assignment, error) {
	if s == nil || s.pool == nil {
		return Assignment{}, fmt.Errorf("organize service is not initialized")
	}

	summary := Summarize(content)

	vector, err := s.embedder.Embed(ctx, summary)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int64("workspace_id", workspaceID).
			Int64("item_id", itemID).
			Msg("embedding failed during classification; continuing without vector")
		vector = nil
	}

	candidates, err := s.loadCandidateTopics(ctx, workspaceID)
	if err != nil {
		return Assignment{}, err
	}

	best, bestScore := chooseTopic(vector, candidates)

	now := globaltime.UTC()
	assignment := Assignment{Summary: summary}

	if best == nil || ClassifySimilarity(bestScore) == DecisionCreate {
		name := BuildTopicName(summary)

		var vectorLiteral *string
		if len(vector) > 0 {
			literal, literalErr := embedding.VectorLiteral(vector)
			if literalErr != nil {
				return Assignment{}, fmt.Errorf("serialize topic embedding: %w", literalErr)
			}
			vectorLiteral = &literal
		}

		topicID, topicUUID, err := s.insertAutoTopic(ctx, workspaceID, name, summary, vectorLiteral, now)
		if err != nil {
			return Assignment{}, err
		}

		assignment.TopicID = topicID
		assignment.TopicUUID = topicUUID
		assignment.TopicName = name
		assignment.Confidence = fallbackConfidence
		assignment.CreatedTopic = true
	} else {
		assignment.TopicID = best.TopicID
		assignment.TopicUUID = best.TopicUUID
		assignment.TopicName = best.Name
		assignment.Confidence = bestScore
	}

	if err := s.upsertLink(ctx, workspaceID, itemID, assignment.TopicID, assignment.Confidence, now); err != nil {
		return Assignment{}, err
	}

	s.logger.Debug().
		Int64("workspace_id", workspaceID).
		Int64("item_id", itemID).
		Int64("topic_id", assignment.TopicID).
		Float64("confidence", assignment.Confidence).
		Bool("created_topic", assignment.CreatedTopic).
		Msg("item classified")

	return assignment, nil
}

// chooseTopic returns the highest-scoring candidate, or nil when no vector is
// available or no candidate carries one. Ties keep the first-seen candidate.
func chooseTopic(vector []float64, candidates []topicCandidate) (*topicCandidate, float64) {
	if len(vector) == 0 {
		return nil, 0
	}

	var best *topicCandidate
	bestScore := 0.0
	for i := range candidates {
		candidate := &candidates[i]
		if len(candidate.Vector) == 0 {
			continue
		}
		score := CosineSimilarity(vector, candidate.Vector)
		if best == nil || score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best, bestScore
}

// Summarize collapses whitespace and bounds the text used for topic naming and
// embedding.
func Summarize(content string) string {
	collapsed := strings.Join(strings.Fields(content), " ")
	runes := []rune(collapsed)
	if len(runes) <= summaryMaxLength {
		return collapsed
	}
	return strings.TrimSpace(string(runes[:summaryMaxLength]))
}

// BuildTopicName derives a topic name from the first few words of a summary.
func BuildTopicName(summary string) string {
	words := strings.Fields(summary)
	if len(words) > topicNameMaxWords {
		words = words[:topicNameMaxWords]
	}
	name := strings.Join(words, " ")
	if name == "" {
		return fallbackTopicName
	}

	name = sentenceTailPattern.ReplaceAllString(name, "")
	name = nonWordPattern.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return fallbackTopicName
	}
	return name
}

func (s *Service) loadCandidateTopics(ctx context.Context, workspaceID int64) ([]topicCandidate, error) {
	const q = `
SELECT
	t.topic_id,
	t.topic_uuid::text,
	t.name,
	t.embedding::text
FROM burrow.topics t
WHERE t.workspace_id = $1
  AND t.deleted_at IS NULL
ORDER BY t.topic_id
`

	rows, err := s.pool.Query(ctx, q, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("select candidate topics: %w", err)
	}
	defer rows.Close()

	var candidates []topicCandidate
	for rows.Next() {
		var candidate topicCandidate
		var literal *string
		if err := rows.Scan(&candidate.TopicID, &candidate.TopicUUID, &candidate.Name, &literal); err != nil {
			return nil, fmt.Errorf("scan candidate topic: %w", err)
		}

		if literal != nil && strings.TrimSpace(*literal) != "" {
			vector, parseErr := embedding.ParseVector(*literal)
			if parseErr != nil {
				s.logger.Warn().
					Err(parseErr).
					Int64("topic_id", candidate.TopicID).
					Msg("stored topic embedding is malformed; skipping candidate")
			} else {
				candidate.Vector = vector
			}
		}
		candidates = append(candidates, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate topics: %w", err)
	}
	return candidates, nil
}

func (s *Service) insertAutoTopic(
	ctx context.Context,
	workspaceID int64,
	name string,
	summary string,
	vectorLiteral *string,
	now time.Time,
) (int64, string, error) {
	const q = `
INSERT INTO burrow.topics (
	workspace_id,
	name,
	summary,
	embedding,
	source,
	created_at,
	updated_at
)
VALUES ($1, $2, $3, $4::vector, 'auto', $5, $5)
RETURNING topic_id, topic_uuid::text
`

	var topicID int64
	var topicUUID string
	if err := s.pool.QueryRow(ctx, q, workspaceID, name, summary, vectorLiteral, now).Scan(&topicID, &topicUUID); err != nil {
		return 0, "", fmt.Errorf("insert auto topic workspace_id=%d: %w", workspaceID, err)
	}
	return topicID, topicUUID, nil
}

func (s *Service) upsertLink(ctx context.Context, workspaceID, itemID, topicID int64, confidence float64, now time.Time) error {
	const q = `
INSERT INTO burrow.item_topic_links (
	workspace_id,
	item_id,
	topic_id,
	confidence,
	source,
	linked_at,
	updated_at
)
VALUES ($1, $2, $3, $4, 'auto', $5, $5)
ON CONFLICT (item_id, topic_id) DO UPDATE SET
	confidence = EXCLUDED.confidence,
	source = EXCLUDED.source,
	updated_at = EXCLUDED.updated_at
`

	if _, err := s.pool.Exec(ctx, q, workspaceID, itemID, topicID, confidence, now); err != nil {
		return fmt.Errorf("upsert item_topic_link item_id=%d topic_id=%d: %w", itemID, topicID, err)
	}
	return nil
}
