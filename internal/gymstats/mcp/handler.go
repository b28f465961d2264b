package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler handles MCP tool requests and responses: calls the service, formats MCP result.
type Handler struct {
	service contextService
}

func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

// noInput is the argument type of tools that take no arguments.
type noInput struct{}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

// GetBefitSchemaTool returns the MCP tool handler for get_befit_schema.
func (h *Handler) GetBefitSchemaTool() func(context.Context, *mcp.CallToolRequest, noInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ noInput) (*mcp.CallToolResult, any, error) {
		text, err := h.service.GetSchema(ctx)
		if err != nil {
			return errorResult("Error fetching schema: " + err.Error()), nil, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil, nil
	}
}

// GetExerciseCatalogTool returns the MCP tool handler for get_exercise_catalog.
func (h *Handler) GetExerciseCatalogTool() func(context.Context, *mcp.CallToolRequest, noInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ noInput) (*mcp.CallToolResult, any, error) {
		list, err := h.service.ListExercises(ctx)
		if err != nil {
			return errorResult("Error listing exercises: " + err.Error()), nil, nil
		}
		return jsonResult(list), nil, nil
	}
}

// GetTrainingStatisticsTool returns the MCP tool handler for get_training_statistics.
func (h *Handler) GetTrainingStatisticsTool() func(context.Context, *mcp.CallToolRequest, noInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ noInput) (*mcp.CallToolResult, any, error) {
		report, err := h.service.GetStatistics(ctx)
		if err != nil {
			return errorResult("Error computing statistics: " + err.Error()), nil, nil
		}
		return jsonResult(report), nil, nil
	}
}
