package tasks

// Identity is a user of the remote workspace.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Task is a task record as stored remotely.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Assignee    *Identity `json:"assignee"`
	DueDate     Date      `json:"due_date"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
}

// TaskSummary is the row shape returned by list queries.
type TaskSummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Status   Status   `json:"status"`
	DueDate  Date     `json:"due_date"`
	Priority Priority `json:"priority"`
}

// CreateTaskInput carries create_task arguments. DueDate and Priority are raw
// strings so validation happens in one place.
type CreateTaskInput struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	AssigneeEmail string `json:"assignee"`
	DueDate       string `json:"due_date"`
	Priority      string `json:"priority,omitempty"`
}

// TaskRef is returned by CreateTask.
type TaskRef struct {
	TaskID    string   `json:"task_id"`
	Priority  Priority `json:"priority"`
	CreatedBy string   `json:"created_by"`
	CreatedAt string   `json:"created_at"`
}

// UpdateResult is returned by the single-field update operations.
type UpdateResult struct {
	TaskID    string `json:"task_id"`
	Field     string `json:"field"`
	NewValue  string `json:"new_value"`
	UpdatedBy string `json:"updated_by"`
	UpdatedAt string `json:"updated_at"`
}

// OverdueTask is a task past its due date that is not completed.
type OverdueTask struct {
	TaskSummary
	DaysOverdue int `json:"days_overdue"`
}

// Reminder is a task due tomorrow that is not completed.
type Reminder struct {
	TaskID   string `json:"task_id"`
	Title    string `json:"title"`
	Assignee string `json:"assignee"`
	DueDate  Date   `json:"due_date"`
	Status   Status `json:"status"`
}

// SkippedRow is a matched row that could not be decoded into a Task.
type SkippedRow struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// TaskList is a query result with its count. Count excludes Skipped rows.
type TaskList struct {
	Tasks     []TaskSummary `json:"tasks"`
	Count     int           `json:"count"`
	Skipped   []SkippedRow  `json:"skipped,omitempty"`
	QueriedBy string        `json:"queried_by"`
}
