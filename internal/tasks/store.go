// Package tasks maps task operations onto a remote Notion database.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vthunder/taskdesk/internal/integrations/notion"
	"github.com/vthunder/taskdesk/internal/logging"
)

// RemoteStore is the slice of the Notion API the task layer depends on.
// *notion.Client satisfies it.
type RemoteStore interface {
	CreatePage(ctx context.Context, params notion.CreatePageParams) (*notion.Object, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]notion.Property) (*notion.Object, error)
	GetPage(ctx context.Context, pageID string) (*notion.Object, error)
	GetDatabase(ctx context.Context, databaseID string) (*notion.Database, error)
	QueryDatabase(ctx context.Context, databaseID string, params notion.QueryParams) (*notion.QueryResult, error)
	ListUsers(ctx context.Context, startCursor string) (*notion.UserList, error)
}

// Options configures a Manager.
type Options struct {
	DatabaseID    string
	CurrentUser   string // echoed as created_by / updated_by
	Schema        Schema
	UserCacheSize int
	UserCacheTTL  time.Duration
	CallTimeout   time.Duration // per remote operation, 0 = caller's context only
	Now           func() time.Time
}

// Manager implements the task tools over a RemoteStore. It holds no mutable
// state besides the identity cache and is safe for concurrent use.
type Manager struct {
	store       RemoteStore
	databaseID  string
	currentUser string
	schema      Schema
	users       *identityCache
	timeout     time.Duration
	now         func() time.Time
}

// NewManager creates a Manager bound to one task database.
func NewManager(store RemoteStore, opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:       store,
		databaseID:  opts.DatabaseID,
		currentUser: opts.CurrentUser,
		schema:      opts.Schema.WithDefaults(),
		users:       newIdentityCache(opts.UserCacheSize, opts.UserCacheTTL),
		timeout:     opts.CallTimeout,
		now:         now,
	}
}

// Schema returns the property mapping in use.
func (m *Manager) Schema() Schema { return m.schema }

// Now returns the manager's clock reading.
func (m *Manager) Now() time.Time { return m.now() }

// Today is the process-local calendar day.
func (m *Manager) Today() Date { return DateOf(m.now()) }

func (m *Manager) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

// coercePriority applies the lenient create-time policy: empty or unknown
// priorities become Medium.
func coercePriority(raw string) Priority {
	if raw == "" {
		return PriorityMedium
	}
	p, err := ParsePriority(raw)
	if err != nil {
		logging.Info("tasks", "unknown priority %q on create, using %s", raw, PriorityMedium)
		return PriorityMedium
	}
	return p
}

// CreateTask creates a task with status Not Started.
func (m *Manager) CreateTask(ctx context.Context, in CreateTaskInput) (*TaskRef, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Value: in.Title, Message: "must not be empty"}
	}
	due, err := ParseDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	priority := coercePriority(in.Priority)

	props := map[string]notion.Property{
		m.schema.Title:    notion.TitleValue(title),
		m.schema.DueDate:  notion.DateValue(due.String()),
		m.schema.Priority: notion.SelectValue(string(priority)),
		m.schema.Status:   notion.SelectValue(string(StatusNotStarted)),
	}
	if in.Description != "" {
		props[m.schema.Description] = notion.RichTextValue(in.Description)
	}
	if strings.TrimSpace(in.AssigneeEmail) != "" {
		who, err := m.ResolveIdentity(ctx, in.AssigneeEmail)
		if err != nil {
			return nil, err
		}
		props[m.schema.Assignee] = notion.PeopleValue(who.ID)
	}

	ctx, cancel := m.callContext(ctx)
	defer cancel()

	page, err := m.store.CreatePage(ctx, notion.CreatePageParams{
		Parent:     notion.Parent{DatabaseID: m.databaseID},
		Properties: props,
	})
	if err != nil {
		return nil, &RemoteError{Op: "create task", Err: err}
	}

	logging.Info("tasks", "created task %s %q due %s", page.ID, logging.Truncate(title, 60), due)
	return &TaskRef{
		TaskID:    page.ID,
		Priority:  priority,
		CreatedBy: m.currentUser,
		CreatedAt: Timestamp(m.now()),
	}, nil
}

// UpdateTaskStatus sets the status of one task.
func (m *Manager) UpdateTaskStatus(ctx context.Context, taskID, status string) (*UpdateResult, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return m.updateField(ctx, taskID, "status", m.schema.Status, notion.SelectValue(string(st)), string(st))
}

// UpdateTaskPriority sets the priority of one task.
func (m *Manager) UpdateTaskPriority(ctx context.Context, taskID, priority string) (*UpdateResult, error) {
	p, err := ParsePriority(priority)
	if err != nil {
		return nil, err
	}
	return m.updateField(ctx, taskID, "priority", m.schema.Priority, notion.SelectValue(string(p)), string(p))
}

// UpdateTaskDueDate sets the due date of one task.
func (m *Manager) UpdateTaskDueDate(ctx context.Context, taskID, dueDate string) (*UpdateResult, error) {
	due, err := ParseDate(dueDate)
	if err != nil {
		return nil, err
	}
	return m.updateField(ctx, taskID, "due_date", m.schema.DueDate, notion.DateValue(due.String()), due.String())
}

func (m *Manager) updateField(ctx context.Context, taskID, field, property string, value notion.Property, display string) (*UpdateResult, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, &ValidationError{Field: "task_id", Value: taskID, Message: "must not be empty"}
	}

	ctx, cancel := m.callContext(ctx)
	defer cancel()

	if _, err := m.store.UpdatePage(ctx, taskID, map[string]notion.Property{property: value}); err != nil {
		if notion.IsNotFound(err) {
			return nil, &NotFoundError{Kind: "task", Key: taskID}
		}
		return nil, &RemoteError{Op: "update task " + field, Err: err}
	}

	logging.Info("tasks", "task %s %s -> %s", taskID, field, display)
	return &UpdateResult{
		TaskID:    taskID,
		Field:     field,
		NewValue:  display,
		UpdatedBy: m.currentUser,
		UpdatedAt: Timestamp(m.now()),
	}, nil
}

// GetTaskDetails fetches and decodes one task. Any missing or malformed
// field fails the call.
func (m *Manager) GetTaskDetails(ctx context.Context, taskID string) (*Task, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, &ValidationError{Field: "task_id", Value: taskID, Message: "must not be empty"}
	}

	ctx, cancel := m.callContext(ctx)
	defer cancel()

	page, err := m.store.GetPage(ctx, taskID)
	if err != nil {
		if notion.IsNotFound(err) {
			return nil, &NotFoundError{Kind: "task", Key: taskID}
		}
		return nil, &RemoteError{Op: "get task", Err: err}
	}

	task, err := m.decodeTask(page)
	if err != nil {
		return nil, &RemoteError{Op: "decode task", Err: err}
	}
	return &task, nil
}

// CheckSchema compares the live database with the expected property mapping.
func (m *Manager) CheckSchema(ctx context.Context) (*SchemaReport, error) {
	ctx, cancel := m.callContext(ctx)
	defer cancel()

	db, err := m.store.GetDatabase(ctx, m.databaseID)
	if err != nil {
		if notion.IsNotFound(err) {
			return nil, &NotFoundError{Kind: "database", Key: m.databaseID}
		}
		return nil, &RemoteError{Op: "get database", Err: err}
	}
	report := m.schema.Check(db)
	return &report, nil
}

// decodeTask converts a database row into a Task.
func (m *Manager) decodeTask(page *notion.Object) (Task, error) {
	task := Task{ID: page.ID}
	props := page.Properties

	title, ok := props[m.schema.Title]
	if !ok || len(title.Title) == 0 {
		return Task{}, fmt.Errorf("page %s: property %q is empty", page.ID, m.schema.Title)
	}
	task.Title = notion.PlainText(title.Title)

	if desc, ok := props[m.schema.Description]; ok {
		task.Description = notion.PlainText(desc.RichText)
	}

	if people, ok := props[m.schema.Assignee]; ok && len(people.People) > 0 {
		u := people.People[0]
		task.Assignee = &Identity{ID: u.ID, Name: u.Name, Email: u.Email()}
	}

	due, ok := props[m.schema.DueDate]
	if !ok || due.Date == nil {
		return Task{}, fmt.Errorf("page %s: property %q has no date", page.ID, m.schema.DueDate)
	}
	d, err := parseRemoteDate(due.Date.Start)
	if err != nil {
		return Task{}, fmt.Errorf("page %s: %w", page.ID, err)
	}
	task.DueDate = d

	prio, ok := props[m.schema.Priority]
	if !ok || prio.Select == nil {
		return Task{}, fmt.Errorf("page %s: property %q has no value", page.ID, m.schema.Priority)
	}
	if task.Priority, err = ParsePriority(prio.Select.Name); err != nil {
		return Task{}, fmt.Errorf("page %s: %w", page.ID, err)
	}

	status, ok := props[m.schema.Status]
	if !ok || status.Select == nil {
		return Task{}, fmt.Errorf("page %s: property %q has no value", page.ID, m.schema.Status)
	}
	if task.Status, err = ParseStatus(status.Select.Name); err != nil {
		return Task{}, fmt.Errorf("page %s: %w", page.ID, err)
	}

	return task, nil
}

// Summary trims a Task to its list-row shape.
func (t Task) Summary() TaskSummary {
	return TaskSummary{
		ID:       t.ID,
		Title:    t.Title,
		Status:   t.Status,
		DueDate:  t.DueDate,
		Priority: t.Priority,
	}
}
