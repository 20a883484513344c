package repository

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/aminulnv/Year-In-Review/internal/database"
)

//go:embed schema.surql
var schema string

// Migrate defines the tables and indexes the repositories rely on. It is
// safe to run on every start.
func Migrate(ctx context.Context, db database.Database) error {
	if err := db.Execute(ctx, schema, nil); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
