// Package tools provides MCP tool registration with dependency injection.
package tools

import (
	"time"

	"github.com/vthunder/taskdesk/internal/extract"
	"github.com/vthunder/taskdesk/internal/tasks"
)

// Dependencies holds all services that MCP tools may need.
// Optional fields may be nil.
type Dependencies struct {
	// Core services (required)
	Tasks *tasks.Manager

	// Optional services; the email tools are only registered when set
	Email *extract.Pipeline

	// DefaultAssignee is used by create_tasks_from_email when no assignee
	// is given. Empty leaves such tasks unassigned.
	DefaultAssignee string

	// Now stamps results. Defaults to the task manager's clock.
	Now func() time.Time

	// If set, called after every tool invocation with its outcome status
	OnToolCall func(toolName, status string)
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return d.Tasks.Now()
}
