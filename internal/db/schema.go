package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Tables lists the tables created by ApplySchema.
var Tables = []string{"user_account", "exercise", "training_session", "training_detail"}

// ApplySchema creates the befit tables if they do not exist yet. Safe to run repeatedly.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	// no args: pgx sends it over the simple protocol, multiple statements allowed
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
