package tools

import (
	"context"

	"github.com/vthunder/taskdesk/internal/mcp"
	"github.com/vthunder/taskdesk/internal/tasks"
)

func registerTaskTools(server *mcp.Server, deps *Dependencies) {
	m := deps.Tasks
	priorities := enumStrings(tasks.AllPriorities())
	statuses := enumStrings(tasks.AllStatuses())

	// create_task
	server.RegisterTool("create_task", mcp.ToolDef{
		Description: "Create a task in the task database with status 'Not Started'. Unknown or missing priority defaults to Medium.",
		Properties: map[string]mcp.PropDef{
			"title":       {Type: "string", Description: "Task title"},
			"description": {Type: "string", Description: "Longer description (optional)"},
			"assignee":    {Type: "string", Description: "Email of the workspace user to assign (optional)"},
			"due_date":    {Type: "string", Description: "Due date in YYYY-MM-DD format"},
			"priority":    {Type: "string", Description: "Priority (default Medium)", Enum: priorities},
		},
		Required: []string{"title", "due_date"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		ref, err := m.CreateTask(ctx, tasks.CreateTaskInput{
			Title:         str(args, "title"),
			Description:   str(args, "description"),
			AssigneeEmail: str(args, "assignee"),
			DueDate:       str(args, "due_date"),
			Priority:      str(args, "priority"),
		})
		return respond(deps, "create_task", ref, err)
	})

	// update_task_status
	server.RegisterTool("update_task_status", mcp.ToolDef{
		Description: "Set the status of a task. Any status may be set from any other.",
		Properties: map[string]mcp.PropDef{
			"task_id": {Type: "string", Description: "Task (page) ID"},
			"status":  {Type: "string", Description: "New status", Enum: statuses},
		},
		Required: []string{"task_id", "status"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		res, err := m.UpdateTaskStatus(ctx, str(args, "task_id"), str(args, "status"))
		return respond(deps, "update_task_status", res, err)
	})

	// update_task_priority
	server.RegisterTool("update_task_priority", mcp.ToolDef{
		Description: "Set the priority of a task.",
		Properties: map[string]mcp.PropDef{
			"task_id":  {Type: "string", Description: "Task (page) ID"},
			"priority": {Type: "string", Description: "New priority", Enum: priorities},
		},
		Required: []string{"task_id", "priority"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		res, err := m.UpdateTaskPriority(ctx, str(args, "task_id"), str(args, "priority"))
		return respond(deps, "update_task_priority", res, err)
	})

	// update_task_due_date
	server.RegisterTool("update_task_due_date", mcp.ToolDef{
		Description: "Move a task's due date.",
		Properties: map[string]mcp.PropDef{
			"task_id":  {Type: "string", Description: "Task (page) ID"},
			"due_date": {Type: "string", Description: "New due date in YYYY-MM-DD format"},
		},
		Required: []string{"task_id", "due_date"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		res, err := m.UpdateTaskDueDate(ctx, str(args, "task_id"), str(args, "due_date"))
		return respond(deps, "update_task_due_date", res, err)
	})

	// get_task_details
	server.RegisterTool("get_task_details", mcp.ToolDef{
		Description: "Fetch every field of one task.",
		Properties: map[string]mcp.PropDef{
			"task_id": {Type: "string", Description: "Task (page) ID"},
		},
		Required: []string{"task_id"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		task, err := m.GetTaskDetails(ctx, str(args, "task_id"))
		return respond(deps, "get_task_details", task, err)
	})

	// check_database_schema
	server.RegisterTool("check_database_schema", mcp.ToolDef{
		Description: "Compare the task database's properties with the expected names, types and select options.",
	}, func(ctx context.Context, args map[string]any) (string, error) {
		report, err := m.CheckSchema(ctx)
		return respond(deps, "check_database_schema", report, err)
	})
}

func registerQueryTools(server *mcp.Server, deps *Dependencies) {
	m := deps.Tasks

	// get_tasks_by_status
	server.RegisterTool("get_tasks_by_status", mcp.ToolDef{
		Description: "List tasks with a given status, earliest due first.",
		Properties: map[string]mcp.PropDef{
			"status": {Type: "string", Description: "Status to match", Enum: enumStrings(tasks.AllStatuses())},
		},
		Required: []string{"status"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		list, err := m.TasksByStatus(ctx, str(args, "status"))
		return respond(deps, "get_tasks_by_status", list, err)
	})

	// get_tasks_by_priority
	server.RegisterTool("get_tasks_by_priority", mcp.ToolDef{
		Description: "List tasks with a given priority, earliest due first.",
		Properties: map[string]mcp.PropDef{
			"priority": {Type: "string", Description: "Priority to match", Enum: enumStrings(tasks.AllPriorities())},
		},
		Required: []string{"priority"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		list, err := m.TasksByPriority(ctx, str(args, "priority"))
		return respond(deps, "get_tasks_by_priority", list, err)
	})

	// get_tasks_by_date
	server.RegisterTool("get_tasks_by_date", mcp.ToolDef{
		Description: "List tasks due on a date, highest priority first.",
		Properties: map[string]mcp.PropDef{
			"date": {Type: "string", Description: "Date in YYYY-MM-DD format"},
		},
		Required: []string{"date"},
	}, func(ctx context.Context, args map[string]any) (string, error) {
		list, err := m.TasksByDate(ctx, str(args, "date"))
		return respond(deps, "get_tasks_by_date", list, err)
	})

	// get_overdue_tasks
	server.RegisterTool("get_overdue_tasks", mcp.ToolDef{
		Description: "List tasks past their due date that are not completed, with days overdue.",
	}, func(ctx context.Context, args map[string]any) (string, error) {
		list, err := m.OverdueTasks(ctx)
		return respond(deps, "get_overdue_tasks", list, err)
	})

	// send_reminders
	server.RegisterTool("send_reminders", mcp.ToolDef{
		Description: "List tasks due tomorrow that are not completed, with their assignee. Nothing is delivered; the caller decides how to notify.",
	}, func(ctx context.Context, args map[string]any) (string, error) {
		list, err := m.Reminders(ctx)
		return respond(deps, "send_reminders", list, err)
	})

	// generate_daily_report
	server.RegisterTool("generate_daily_report", mcp.ToolDef{
		Description: "Count tasks per status and priority. Statuses whose query failed are listed under errors.",
	}, func(ctx context.Context, args map[string]any) (string, error) {
		report, err := m.DailyReport(ctx)
		return respond(deps, "generate_daily_report", report, err)
	})
}
