package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// WorkspaceRecord is the read model for a workspace row.
type WorkspaceRecord struct {
	WorkspaceID   int64     `json:"workspace_id"`
	WorkspaceUUID string    `json:"workspace_uuid"`
	OwnerUserID   string    `json:"owner_user_id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	CreatedAt     time.Time `json:"created_at"`
}

// WorkspaceKeyRecord carries the stored hash for bearer-key verification.
type WorkspaceKeyRecord struct {
	KeyID       int64     `json:"key_id"`
	KeyUUID     string    `json:"key_uuid"`
	WorkspaceID int64     `json:"workspace_id"`
	Label       string    `json:"label"`
	KeyPrefix   string    `json:"key_prefix"`
	KeyHash     string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetOrCreateWorkspace returns the active workspace with the given slug,
// creating it when missing.
func (p *Pool) GetOrCreateWorkspace(ctx context.Context, ownerUserID, name, slug string) (*WorkspaceRecord, error) {
	normalizedSlug := strings.ToLower(strings.TrimSpace(slug))
	if normalizedSlug == "" {
		return nil, fmt.Errorf("workspace slug is required")
	}

	const selectQuery = `
SELECT
	w.workspace_id,
	w.workspace_uuid::text,
	w.owner_user_id,
	w.name,
	w.slug,
	w.created_at
FROM burrow.workspaces w
WHERE w.slug = $1
  AND w.deleted_at IS NULL
ORDER BY w.workspace_id ASC
LIMIT 1
`

	var row WorkspaceRecord
	err := p.QueryRow(ctx, selectQuery, normalizedSlug).Scan(
		&row.WorkspaceID,
		&row.WorkspaceUUID,
		&row.OwnerUserID,
		&row.Name,
		&row.Slug,
		&row.CreatedAt,
	)
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, ErrNoRows) {
		return nil, fmt.Errorf("query workspace: %w", err)
	}

	const insertQuery = `
INSERT INTO burrow.workspaces (owner_user_id, name, slug, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
RETURNING
	workspace_id,
	workspace_uuid::text,
	owner_user_id,
	name,
	slug,
	created_at
`

	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		trimmedName = normalizedSlug
	}

	if err := p.QueryRow(ctx, insertQuery, strings.TrimSpace(ownerUserID), trimmedName, normalizedSlug).Scan(
		&row.WorkspaceID,
		&row.WorkspaceUUID,
		&row.OwnerUserID,
		&row.Name,
		&row.Slug,
		&row.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert workspace: %w", err)
	}
	return &row, nil
}

// GetWorkspaceByID returns an active workspace.
func (p *Pool) GetWorkspaceByID(ctx context.Context, workspaceID int64) (*WorkspaceRecord, error) {
	const q = `
SELECT
	w.workspace_id,
	w.workspace_uuid::text,
	w.owner_user_id,
	w.name,
	w.slug,
	w.created_at
FROM burrow.workspaces w
WHERE w.workspace_id = $1
  AND w.deleted_at IS NULL
`

	var row WorkspaceRecord
	if err := p.QueryRow(ctx, q, workspaceID).Scan(
		&row.WorkspaceID,
		&row.WorkspaceUUID,
		&row.OwnerUserID,
		&row.Name,
		&row.Slug,
		&row.CreatedAt,
	); err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query workspace by id: %w", err)
	}
	return &row, nil
}

// CreateWorkspaceKey stores a new hashed API key for a workspace.
func (p *Pool) CreateWorkspaceKey(ctx context.Context, workspaceID int64, label, keyPrefix, keyHash string) (*WorkspaceKeyRecord, error) {
	trimmedPrefix := strings.TrimSpace(keyPrefix)
	trimmedHash := strings.TrimSpace(keyHash)
	if trimmedPrefix == "" || trimmedHash == "" {
		return nil, fmt.Errorf("key prefix and hash are required")
	}

	const q = `
INSERT INTO burrow.workspace_keys (workspace_id, label, key_prefix, key_hash, created_at)
VALUES ($1, $2, $3, $4, now())
RETURNING
	key_id,
	key_uuid::text,
	workspace_id,
	label,
	key_prefix,
	key_hash,
	created_at
`

	trimmedLabel := strings.TrimSpace(label)
	if trimmedLabel == "" {
		trimmedLabel = "default"
	}

	var row WorkspaceKeyRecord
	if err := p.QueryRow(ctx, q, workspaceID, trimmedLabel, trimmedPrefix, trimmedHash).Scan(
		&row.KeyID,
		&row.KeyUUID,
		&row.WorkspaceID,
		&row.Label,
		&row.KeyPrefix,
		&row.KeyHash,
		&row.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert workspace key: %w", err)
	}
	return &row, nil
}

// GetWorkspaceKeyByPrefix returns the active key row for a lookup prefix.
func (p *Pool) GetWorkspaceKeyByPrefix(ctx context.Context, keyPrefix string) (*WorkspaceKeyRecord, error) {
	const q = `
SELECT
	k.key_id,
	k.key_uuid::text,
	k.workspace_id,
	k.label,
	k.key_prefix,
	k.key_hash,
	k.created_at
FROM burrow.workspace_keys k
JOIN burrow.workspaces w ON w.workspace_id = k.workspace_id
WHERE k.key_prefix = $1
  AND k.deleted_at IS NULL
  AND w.deleted_at IS NULL
`

	var row WorkspaceKeyRecord
	if err := p.QueryRow(ctx, q, strings.TrimSpace(keyPrefix)).Scan(
		&row.KeyID,
		&row.KeyUUID,
		&row.WorkspaceID,
		&row.Label,
		&row.KeyPrefix,
		&row.KeyHash,
		&row.CreatedAt,
	); err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query workspace key: %w", err)
	}
	return &row, nil
}

// TouchWorkspaceKey records a successful use of the key.
func (p *Pool) TouchWorkspaceKey(ctx context.Context, keyID int64) error {
	const q = `
UPDATE burrow.workspace_keys
SET last_used_at = now()
WHERE key_id = $1
`

	if _, err := p.Exec(ctx, q, keyID); err != nil {
		return fmt.Errorf("touch workspace key: %w", err)
	}
	return nil
}
