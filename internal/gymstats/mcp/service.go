package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/2beens/befit/internal/auth"
	"github.com/2beens/befit/internal/db"
	"github.com/2beens/befit/internal/gymstats/exercises"
	"github.com/2beens/befit/internal/gymstats/stats"
)

type exerciseCatalog interface {
	List(ctx context.Context) ([]exercises.Exercise, error)
}

type statisticsService interface {
	UserStatistics(ctx context.Context, principal auth.Principal) (stats.Report, error)
}

// contextService provides befit context data (schema, catalog, statistics).
// Used by Handler for testability.
type contextService interface {
	GetSchema(ctx context.Context) (string, error)
	ListExercises(ctx context.Context) ([]exercises.Exercise, error)
	GetStatistics(ctx context.Context) (stats.Report, error)
}

// ContextService answers MCP tool calls on behalf of one user.
type ContextService struct {
	schema    SchemaRepo
	catalog   exerciseCatalog
	stats     statisticsService
	principal auth.Principal
}

func NewContextService(
	schemaRepo SchemaRepo,
	catalog exerciseCatalog,
	statsService statisticsService,
	principal auth.Principal,
) *ContextService {
	return &ContextService{
		schema:    schemaRepo,
		catalog:   catalog,
		stats:     statsService,
		principal: principal,
	}
}

func (s *ContextService) GetSchema(ctx context.Context) (string, error) {
	cols, err := s.schema.GetColumns(ctx)
	if err != nil {
		return "", err
	}
	return formatSchema(cols), nil
}

func formatSchema(cols []SchemaColumn) string {
	if len(cols) == 0 {
		return "# BeFit DB Schema\n\nNo befit tables found in the database.\n"
	}

	byTable := make(map[string][]SchemaColumn)
	for _, c := range cols {
		byTable[c.TableName] = append(byTable[c.TableName], c)
	}

	tableOrder := make([]string, 0, len(byTable))
	for t := range byTable {
		tableOrder = append(tableOrder, t)
	}
	sort.Strings(tableOrder)

	var b strings.Builder
	b.WriteString("# BeFit DB Schema\n\n")
	b.WriteString("Tables: " + strings.Join(db.Tables, ", ") + " (schema: public).\n\n")

	for _, tableName := range tableOrder {
		b.WriteString("## ")
		b.WriteString(tableName)
		b.WriteString("\n\n| Column | Type | Nullable | Default |\n|--------|------|----------|--------|\n")
		for _, c := range byTable[tableName] {
			def := "-"
			if c.ColumnDef != nil && *c.ColumnDef != "" {
				def = *c.ColumnDef
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", c.ColumnName, c.DataType, c.IsNullable, def))
		}
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n\n") + "\n"
}

// ListExercises returns the whole exercise catalog.
func (s *ContextService) ListExercises(ctx context.Context) ([]exercises.Exercise, error) {
	return s.catalog.List(ctx)
}

// GetStatistics returns the four week statistics of the bound user.
func (s *ContextService) GetStatistics(ctx context.Context) (stats.Report, error) {
	return s.stats.UserStatistics(ctx, s.principal)
}
