package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/platenum/internal/errors"
	"github.com/hpungsan/platenum/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env *ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env *ops.Env) *Handlers {
	return &Handlers{env: env}
}

// CalculateRequest represents the arguments for numerology_calculate.
type CalculateRequest struct {
	Input string `json:"input"`
}

// InterpretRequest represents the arguments for numerology_interpret.
type InterpretRequest struct {
	Number *int `json:"number"`
}

// IndexRequest represents the arguments for history_delete and history_rerun.
type IndexRequest struct {
	Index *int `json:"index"`
}

// HandleCalculate handles the numerology_calculate tool call.
func (h *Handlers) HandleCalculate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CalculateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Calculate(ctx, h.env, ops.CalculateInput{Input: input.Input})
	if err != nil {
		if result != nil {
			// NOT_FOUND still carries the calculation
			return errorResultWith(err, map[string]any{"calculation": result}), nil
		}
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleInterpret handles the numerology_interpret tool call.
func (h *Handlers) HandleInterpret(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[InterpretRequest](req)
	if err != nil {
		return errorResult(err), nil
	}
	if input.Number == nil {
		return errorResult(errors.NewInvalidInput("number is required")), nil
	}

	result, err := ops.Interpret(h.env, ops.InterpretInput{Number: *input.Number})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryList handles the history_list tool call.
func (h *Handlers) HandleHistoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.HistoryList(ctx, h.env)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryDelete handles the history_delete tool call.
func (h *Handlers) HandleHistoryDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeIndex(req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.HistoryDelete(ctx, h.env, ops.HistoryDeleteInput{Index: input})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryClear handles the history_clear tool call.
func (h *Handlers) HandleHistoryClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.HistoryClear(ctx, h.env)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryRerun handles the history_rerun tool call.
func (h *Handlers) HandleHistoryRerun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeIndex(req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.HistoryRerun(ctx, h.env, ops.HistoryRerunInput{Index: input})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// decodeIndex extracts the required index argument.
func decodeIndex(req mcp.CallToolRequest) (int, error) {
	input, err := decode[IndexRequest](req)
	if err != nil {
		return 0, err
	}
	if input.Index == nil {
		return 0, errors.NewInvalidInput("index is required")
	}
	return *input.Index, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	return errorResultWith(err, nil)
}

// errorResultWith is errorResult with extra top-level fields next to "error".
func errorResultWith(err error, extra map[string]any) *mcp.CallToolResult {
	var payload map[string]any

	if e, ok := errors.As(err); ok {
		errorObj := map[string]any{
			"code":    e.Code,
			"message": e.Message,
			"status":  e.Status,
		}
		if e.Code != errors.ErrInternal && e.Details != nil {
			errorObj["details"] = e.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	for k, v := range extra {
		payload[k] = v
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
