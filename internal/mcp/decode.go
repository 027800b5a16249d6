package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/platenum/internal/errors"
)

// decode unmarshals MCP request arguments into a typed struct. A type
// mismatch such as a string index is reported as INVALID_INPUT.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, errors.NewInternal(err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, errors.NewInvalidInput("invalid arguments: " + err.Error())
	}
	return result, nil
}
