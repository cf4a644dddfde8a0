// Package mcp registers tool handlers and serves them over stdio using
// mark3labs/mcp-go. Handlers are also callable in-process.
package mcp

import (
	"context"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vthunder/taskdesk/internal/logging"
)

// ToolHandler handles a tool call. A returned error becomes an error result,
// never a protocol error.
type ToolHandler func(ctx context.Context, args map[string]any) (string, error)

// ToolDef describes a tool's input schema.
type ToolDef struct {
	Description string
	Properties  map[string]PropDef
	Required    []string
}

// PropDef is one input property.
type PropDef struct {
	Type        string // "string", "number" or "boolean"
	Description string
	Enum        []string
}

// Server holds registered tools.
type Server struct {
	mcp      *server.MCPServer
	handlers map[string]ToolHandler
	defs     map[string]ToolDef
}

// NewServer creates a server announcing name and version.
func NewServer(name, version string) *Server {
	return &Server{
		mcp:      server.NewMCPServer(name, version, server.WithToolCapabilities(true)),
		handlers: make(map[string]ToolHandler),
		defs:     make(map[string]ToolDef),
	}
}

// RegisterTool registers a tool handler
func (s *Server) RegisterTool(name string, def ToolDef, handler ToolHandler) {
	s.handlers[name] = handler
	s.defs[name] = def
	s.mcp.AddTool(buildTool(name, def), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := req.Params.Arguments.(map[string]any)
		out, err := s.Call(ctx, name, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

func buildTool(name string, def ToolDef) mcp.Tool {
	required := make(map[string]bool, len(def.Required))
	for _, r := range def.Required {
		required[r] = true
	}

	opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}
	for _, prop := range sortedKeys(def.Properties) {
		p := def.Properties[prop]
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if required[prop] {
			popts = append(popts, mcp.Required())
		}
		switch p.Type {
		case "number":
			opts = append(opts, mcp.WithNumber(prop, popts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(prop, popts...))
		default:
			if len(p.Enum) > 0 {
				popts = append(popts, mcp.Enum(p.Enum...))
			}
			opts = append(opts, mcp.WithString(prop, popts...))
		}
	}
	return mcp.NewTool(name, opts...)
}

// Call runs a registered tool directly, checking required arguments first.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	h, ok := s.handlers[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	if args == nil {
		args = map[string]any{}
	}
	for _, r := range s.defs[name].Required {
		if _, ok := args[r]; !ok {
			return "", fmt.Errorf("%s: missing required argument %q", name, r)
		}
	}
	logging.Debug("mcp", "call %s", name)
	return h(ctx, args)
}

// Def returns the definition of a registered tool.
func (s *Server) Def(name string) (ToolDef, bool) {
	def, ok := s.defs[name]
	return def, ok
}

// ToolNames lists registered tools alphabetically.
func (s *Server) ToolNames() []string {
	return sortedKeys(s.handlers)
}

// Run serves the registered tools over stdin/stdout until EOF.
func (s *Server) Run() error {
	logging.Info("mcp", "serving %d tools on stdio", len(s.handlers))
	return server.ServeStdio(s.mcp)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
