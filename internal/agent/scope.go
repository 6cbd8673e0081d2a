// Package agent exposes household data to AI assistants as MCP tools.
//
// Each tool follows the same pattern: a struct with its dependencies
// injected via constructor, Definition() returning the mcp.Tool schema,
// and Handle() processing the request. Every tool is bound to a single
// household Scope at construction, so a connected assistant can never
// reach outside its own household.
//
// Domain failures never surface as protocol errors. Read tools return
// a JSON body with count and items, write tools return a success flag
// with an error string.
package agent

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// Scope is the capability every tool query carries. Tools receive it at
// construction and pass its HouseholdID into every store call.
type Scope struct {
	HouseholdID int64
}

// jsonResult marshals v and wraps it as a text tool result.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError("failed to encode result")
	}
	return mcp.NewToolResultText(string(data))
}

// listResult is the uniform read-tool response. An empty list is a
// normal result, not an error.
func listResult(count int, items any) *mcp.CallToolResult {
	return jsonResult(map[string]any{"count": count, "items": items})
}

// writeFailure is the uniform write-tool failure response.
func writeFailure(msg string) *mcp.CallToolResult {
	return jsonResult(map[string]any{"success": false, "error": msg})
}
