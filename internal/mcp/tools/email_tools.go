package tools

import (
	"context"

	"github.com/vthunder/taskdesk/internal/extract"
	"github.com/vthunder/taskdesk/internal/mcp"
	"github.com/vthunder/taskdesk/internal/tasks"
)

func registerEmailTools(server *mcp.Server, deps *Dependencies) {
	p := deps.Email
	emailProp := map[string]mcp.PropDef{
		"email_text": {Type: "string", Description: "Full text of the email"},
	}

	// extract_meeting_info
	server.RegisterTool("extract_meeting_info", mcp.ToolDef{
		Description: "Extract meeting date, time, title, description and importance (0-10) from an email. Missing date means tomorrow, missing time means 09:00.",
		Properties:  emailProp,
		Required:    []string{"email_text"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		info, err := p.ExtractMeetingInfo(ctx, str(args, "email_text"))
		return respond(deps, "extract_meeting_info", info, err)
	})

	// extract_task_info
	server.RegisterTool("extract_task_info", mcp.ToolDef{
		Description: "Extract a task title and due date from an email.",
		Properties:  emailProp,
		Required:    []string{"email_text"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		info, err := p.ExtractTaskInfo(ctx, str(args, "email_text"))
		return respond(deps, "extract_task_info", info, err)
	})

	// classify_email
	server.RegisterTool("classify_email", mcp.ToolDef{
		Description: "Classify an email as 'Task Creation', 'Meeting Schedule' or 'Both'.",
		Properties:  emailProp,
		Required:    []string{"email_text"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		c, err := p.ClassifyEmail(ctx, str(args, "email_text"))
		return respond(deps, "classify_email", c, err)
	})

	// process_email
	server.RegisterTool("process_email", mcp.ToolDef{
		Description: "Classify an email and extract the meeting and/or task details its category calls for.",
		Properties:  emailProp,
		Required:    []string{"email_text"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		res, err := p.ProcessEmail(ctx, str(args, "email_text"))
		return respond(deps, "process_email", res, err)
	})

	// create_tasks_from_email
	server.RegisterTool("create_tasks_from_email", mcp.ToolDef{
		Description: "Process an email and create a task for each extracted meeting or task.",
		Properties: map[string]mcp.PropDef{
			"email_text": {Type: "string", Description: "Full text of the email"},
			"assignee":   {Type: "string", Description: "Email of the user to assign (optional)"},
			"priority":   {Type: "string", Description: "Priority for the created tasks (optional; meetings default to their importance)", Enum: enumStrings(tasks.AllPriorities())},
		},
		Required: []string{"email_text"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		assignee := str(args, "assignee")
		if assignee == "" {
			assignee = deps.DefaultAssignee
		}
		res, err := extract.CreateTasksFromEmail(ctx, p, deps.Tasks, str(args, "email_text"), assignee, str(args, "priority"))
		return respond(deps, "create_tasks_from_email", res, err)
	})
}
