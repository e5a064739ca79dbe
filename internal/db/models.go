package db

import (
	"encoding/json"
	"time"
)

// Workspace maps burrow.workspaces.
type Workspace struct {
	WorkspaceID   int64      `gorm:"column:workspace_id;primaryKey;autoIncrement"`
	WorkspaceUUID string     `gorm:"column:workspace_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	OwnerUserID   string     `gorm:"column:owner_user_id;type:text;not null"`
	Name          string     `gorm:"column:name;type:text;not null"`
	Slug          string     `gorm:"column:slug;type:text;not null"`
	DeletedAt     *time.Time `gorm:"column:deleted_at;type:timestamptz"`
	CreatedAt     time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Workspace) TableName() string { return "burrow.workspaces" }

// WorkspaceKey maps burrow.workspace_keys. The key secret is stored bcrypt-hashed;
// the prefix is the lookup handle.
type WorkspaceKey struct {
	KeyID       int64      `gorm:"column:key_id;primaryKey;autoIncrement"`
	KeyUUID     string     `gorm:"column:key_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	WorkspaceID int64      `gorm:"column:workspace_id;type:bigint;not null"`
	Label       string     `gorm:"column:label;type:text;not null"`
	KeyPrefix   string     `gorm:"column:key_prefix;type:text;not null;unique"`
	KeyHash     string     `gorm:"column:key_hash;type:text;not null"`
	LastUsedAt  *time.Time `gorm:"column:last_used_at;type:timestamptz"`
	DeletedAt   *time.Time `gorm:"column:deleted_at;type:timestamptz"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (WorkspaceKey) TableName() string { return "burrow.workspace_keys" }

// Item maps burrow.items.
type Item struct {
	ItemID         int64           `gorm:"column:item_id;primaryKey;autoIncrement"`
	ItemUUID       string          `gorm:"column:item_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	WorkspaceID    int64           `gorm:"column:workspace_id;type:bigint;not null"`
	Type           string          `gorm:"column:type;type:text;not null"`
	Title          string          `gorm:"column:title;type:text;not null"`
	Content        string          `gorm:"column:content;type:text;not null;default:''"`
	Metadata       json.RawMessage `gorm:"column:metadata;type:jsonb;not null;default:'{}'"`
	LastActivityAt time.Time       `gorm:"column:last_activity_at;type:timestamptz;not null;default:now()"`
	DeletedAt      *time.Time      `gorm:"column:deleted_at;type:timestamptz"`
	CreatedAt      time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Item) TableName() string { return "burrow.items" }

// Topic maps burrow.topics. Embedding is a pgvector literal; topics created
// before an embedding provider was configured carry NULL.
type Topic struct {
	TopicID       int64      `gorm:"column:topic_id;primaryKey;autoIncrement"`
	TopicUUID     string     `gorm:"column:topic_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	WorkspaceID   int64      `gorm:"column:workspace_id;type:bigint;not null"`
	Name          string     `gorm:"column:name;type:text;not null"`
	Summary       *string    `gorm:"column:summary;type:text"`
	Embedding     *string    `gorm:"column:embedding;type:vector(1536)"`
	ParentTopicID *int64     `gorm:"column:parent_topic_id;type:bigint"`
	Source        string     `gorm:"column:source;type:text;not null;default:auto"`
	DeletedAt     *time.Time `gorm:"column:deleted_at;type:timestamptz"`
	CreatedAt     time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Topic) TableName() string { return "burrow.topics" }

// ItemTopicLink maps burrow.item_topic_links. One row per (item_id, topic_id);
// re-linking overwrites confidence and source.
type ItemTopicLink struct {
	ItemID      int64     `gorm:"column:item_id;type:bigint;primaryKey"`
	TopicID     int64     `gorm:"column:topic_id;type:bigint;primaryKey"`
	LinkUUID    string    `gorm:"column:link_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	WorkspaceID int64     `gorm:"column:workspace_id;type:bigint;not null"`
	Confidence  float64   `gorm:"column:confidence;type:double precision;not null;default:0"`
	Source      string    `gorm:"column:source;type:text;not null;default:auto"`
	LinkedAt    time.Time `gorm:"column:linked_at;type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (ItemTopicLink) TableName() string { return "burrow.item_topic_links" }

// SearchChunk maps burrow.search_chunks. Chunks are append-only; re-indexing
// inserts a new generation keyed by indexed_at.
type SearchChunk struct {
	ChunkID     int64     `gorm:"column:chunk_id;primaryKey;autoIncrement"`
	ChunkUUID   string    `gorm:"column:chunk_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	WorkspaceID int64     `gorm:"column:workspace_id;type:bigint;not null"`
	ItemID      int64     `gorm:"column:item_id;type:bigint;not null"`
	Position    int       `gorm:"column:position;type:integer;not null;default:0"`
	Content     string    `gorm:"column:content;type:text;not null"`
	Embedding   *string   `gorm:"column:embedding;type:vector(1536)"`
	IndexedAt   time.Time `gorm:"column:indexed_at;type:timestamptz;not null;default:now()"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (SearchChunk) TableName() string { return "burrow.search_chunks" }

// ChatThread maps burrow.chat_threads.
type ChatThread struct {
	ThreadID    int64      `gorm:"column:thread_id;primaryKey;autoIncrement"`
	ThreadUUID  string     `gorm:"column:thread_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	WorkspaceID int64      `gorm:"column:workspace_id;type:bigint;not null"`
	ItemID      int64      `gorm:"column:item_id;type:bigint;not null;unique"`
	ActiveModel *string    `gorm:"column:active_model;type:text"`
	DeletedAt   *time.Time `gorm:"column:deleted_at;type:timestamptz"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (ChatThread) TableName() string { return "burrow.chat_threads" }

// ChatMessage maps burrow.chat_messages.
type ChatMessage struct {
	MessageID   int64     `gorm:"column:message_id;primaryKey;autoIncrement"`
	MessageUUID string    `gorm:"column:message_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	WorkspaceID int64     `gorm:"column:workspace_id;type:bigint;not null"`
	ThreadID    int64     `gorm:"column:thread_id;type:bigint;not null"`
	Role        string    `gorm:"column:role;type:text;not null"`
	Content     string    `gorm:"column:content;type:text;not null"`
	TokenUsage  int       `gorm:"column:token_usage;type:integer;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (ChatMessage) TableName() string { return "burrow.chat_messages" }

// ImportRecord maps burrow.imports.
type ImportRecord struct {
	ImportID    int64     `gorm:"column:import_id;primaryKey;autoIncrement"`
	ImportUUID  string    `gorm:"column:import_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	WorkspaceID int64     `gorm:"column:workspace_id;type:bigint;not null"`
	ItemID      int64     `gorm:"column:item_id;type:bigint;not null"`
	Source      string    `gorm:"column:source;type:text;not null"`
	FileName    string    `gorm:"column:file_name;type:text;not null"`
	Status      string    `gorm:"column:status;type:text;not null;default:completed"`
	ChunkCount  int       `gorm:"column:chunk_count;type:integer;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (ImportRecord) TableName() string { return "burrow.imports" }

// AuditEvent maps burrow.audit_events.
type AuditEvent struct {
	AuditEventID   int64           `gorm:"column:audit_event_id;primaryKey;autoIncrement"`
	AuditEventUUID string          `gorm:"column:audit_event_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	WorkspaceID    int64           `gorm:"column:workspace_id;type:bigint;not null"`
	EventType      string          `gorm:"column:event_type;type:text;not null"`
	Metadata       json.RawMessage `gorm:"column:metadata;type:jsonb;not null;default:'{}'"`
	CreatedAt      time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (AuditEvent) TableName() string { return "burrow.audit_events" }

func autoMigrateModels() []any {
	return []any{
		&Workspace{},
		&WorkspaceKey{},
		&Item{},
		&Topic{},
		&ItemTopicLink{},
		&SearchChunk{},
		&ChatThread{},
		&ChatMessage{},
		&ImportRecord{},
		&AuditEvent{},
	}
}
