package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed sql/pre_automigrate.sql
var preAutoMigrateSQL string

//go:embed sql/post_automigrate.sql
var postAutoMigrateSQL string

// autoMigrate prepares the schema in three steps: the pre script creates the
// schema and extensions (pgvector must exist before the vector columns),
// gorm reconciles the model tables, and the post script adds the indexes
// AutoMigrate cannot express.
func (p *Pool) autoMigrate(ctx context.Context) error {
	if p == nil || p.gdb == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	if err := p.executeMigrationScript(ctx, "pre-auto-migrate", preAutoMigrateSQL); err != nil {
		return err
	}

	if err := p.gdb.WithContext(ctx).AutoMigrate(autoMigrateModels()...); err != nil {
		return fmt.Errorf("gorm auto-migrate models: %w", err)
	}

	return p.executeMigrationScript(ctx, "post-auto-migrate", postAutoMigrateSQL)
}

// executeMigrationScript runs a script one statement at a time so a failure
// reports the offending statement index.
func (p *Pool) executeMigrationScript(ctx context.Context, label, script string) error {
	for i, statement := range splitStatements(script) {
		if err := p.gdb.WithContext(ctx).Exec(statement).Error; err != nil {
			return fmt.Errorf("execute %s statement %d: %w", label, i+1, err)
		}
	}
	return nil
}

func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		statements = append(statements, trimmed)
	}
	return statements
}
