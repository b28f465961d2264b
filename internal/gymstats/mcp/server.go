package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with befit tools: schema, exercise catalog, training statistics.
func NewServer(svc *ContextService, version string) *mcp.Server {
	h := NewHandler(svc)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "befit-context",
		Version: version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_befit_schema",
		Description: "Returns the DB schema of the befit tables (user_account, exercise, training_session, training_detail): table names, columns, types, nullable, default. Use when you need the actual backend schema.",
	}, h.GetBefitSchemaTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_exercise_catalog",
		Description: "Returns the exercise catalog (id, name, description) sorted by name. Use when you need to know which exercises can be logged.",
	}, h.GetExerciseCatalogTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_training_statistics",
		Description: "Returns per exercise statistics of the last 4 weeks for the configured user: times performed, total reps (sets x repetitions), average and maximum load. Use when analyzing recent training volume or progression.",
	}, h.GetTrainingStatisticsTool())

	return s
}
