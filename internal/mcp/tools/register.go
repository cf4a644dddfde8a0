package tools

import (
	"encoding/json"
	"fmt"

	"github.com/vthunder/taskdesk/internal/logging"
	"github.com/vthunder/taskdesk/internal/mcp"
	"github.com/vthunder/taskdesk/internal/metrics"
	"github.com/vthunder/taskdesk/internal/tasks"
)

// RegisterAll registers all MCP tools with the given server and dependencies.
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	registerTaskTools(server, deps)
	registerQueryTools(server, deps)

	if deps.Email != nil {
		registerEmailTools(server, deps)
	}
}

// respond wraps an operation outcome in the result envelope. Operation
// errors are reported inside the envelope, not returned.
func respond(deps *Dependencies, tool string, data any, err error) (string, error) {
	res := tasks.NewResult(data, err, deps.now())
	if err != nil {
		logging.Warn("tools", "%s: %v", tool, err)
	}

	metrics.ToolCalls.WithLabelValues(tool, res.Status).Inc()
	if deps.OnToolCall != nil {
		deps.OnToolCall(tool, res.Status)
	}

	out, mErr := json.MarshalIndent(res, "", "  ")
	if mErr != nil {
		return "", fmt.Errorf("marshal %s result: %w", tool, mErr)
	}
	return string(out), nil
}

// str returns a string argument, empty when absent or not a string.
func str(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
