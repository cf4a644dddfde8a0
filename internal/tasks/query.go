package tasks

import (
	"context"

	"github.com/vthunder/taskdesk/internal/integrations/notion"
	"github.com/vthunder/taskdesk/internal/logging"
)

// query runs filter+sort against the task database, following cursors until
// the result set is exhausted. Rows that cannot be decoded are returned as
// skipped so callers can report them.
func (m *Manager) query(ctx context.Context, filter notion.Filter, sorts []notion.Sort) ([]Task, []SkippedRow, error) {
	ctx, cancel := m.callContext(ctx)
	defer cancel()

	pages, err := notion.Paginate(ctx, func(ctx context.Context, cursor string) ([]notion.Object, string, bool, error) {
		res, err := m.store.QueryDatabase(ctx, m.databaseID, notion.QueryParams{
			Filter:      &filter,
			Sorts:       sorts,
			StartCursor: cursor,
		})
		if err != nil {
			return nil, "", false, err
		}
		return res.Results, res.NextCursor, res.HasMore, nil
	})
	if err != nil {
		return nil, nil, &RemoteError{Op: "query tasks", Err: err}
	}

	out := make([]Task, 0, len(pages))
	var skipped []SkippedRow
	for i := range pages {
		task, err := m.decodeTask(&pages[i])
		if err != nil {
			logging.Warn("tasks", "skipping row: %v", err)
			skipped = append(skipped, SkippedRow{ID: pages[i].ID, Reason: err.Error()})
			continue
		}
		out = append(out, task)
	}
	return out, skipped, nil
}

func (m *Manager) dueAscending() []notion.Sort {
	return []notion.Sort{{Property: m.schema.DueDate, Direction: notion.Ascending}}
}

func (m *Manager) list(tasks []Task, skipped []SkippedRow) *TaskList {
	rows := make([]TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, t.Summary())
	}
	return &TaskList{Tasks: rows, Count: len(rows), Skipped: skipped, QueriedBy: m.currentUser}
}

// TasksByStatus lists tasks with the given status, earliest due first.
func (m *Manager) TasksByStatus(ctx context.Context, status string) (*TaskList, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	found, skipped, err := m.query(ctx, notion.SelectEquals(m.schema.Status, string(st)), m.dueAscending())
	if err != nil {
		return nil, err
	}
	return m.list(found, skipped), nil
}

// TasksByPriority lists tasks with the given priority, earliest due first.
func (m *Manager) TasksByPriority(ctx context.Context, priority string) (*TaskList, error) {
	p, err := ParsePriority(priority)
	if err != nil {
		return nil, err
	}
	found, skipped, err := m.query(ctx, notion.SelectEquals(m.schema.Priority, string(p)), m.dueAscending())
	if err != nil {
		return nil, err
	}
	return m.list(found, skipped), nil
}

// TasksByDate lists tasks due on date, most pressing first.
func (m *Manager) TasksByDate(ctx context.Context, date string) (*TaskList, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	found, skipped, err := m.query(ctx,
		notion.DateEquals(m.schema.DueDate, day.String()),
		[]notion.Sort{{Property: m.schema.Priority, Direction: notion.Descending}},
	)
	if err != nil {
		return nil, err
	}
	return m.list(found, skipped), nil
}

// OverdueList is the result of OverdueTasks.
type OverdueList struct {
	Tasks   []OverdueTask `json:"tasks"`
	Count   int           `json:"count"`
	Skipped []SkippedRow  `json:"skipped,omitempty"`
	AsOf    Date          `json:"as_of"`
}

// OverdueTasks lists open tasks due before today with their days overdue.
func (m *Manager) OverdueTasks(ctx context.Context) (*OverdueList, error) {
	today := m.Today()
	found, skipped, err := m.query(ctx,
		notion.And(
			notion.DateBefore(m.schema.DueDate, today.String()),
			notion.SelectNotEquals(m.schema.Status, string(StatusCompleted)),
		),
		m.dueAscending(),
	)
	if err != nil {
		return nil, err
	}

	out := &OverdueList{Tasks: []OverdueTask{}, Skipped: skipped, AsOf: today}
	for _, t := range found {
		// the store's filter should already exclude these
		if !t.DueDate.Before(today) || t.Status == StatusCompleted {
			continue
		}
		out.Tasks = append(out.Tasks, OverdueTask{
			TaskSummary: t.Summary(),
			DaysOverdue: today.DaysSince(t.DueDate),
		})
	}
	out.Count = len(out.Tasks)
	return out, nil
}

// ReminderList is the result of Reminders.
type ReminderList struct {
	Reminders   []Reminder   `json:"reminders"`
	Count       int          `json:"count"`
	Skipped     []SkippedRow `json:"skipped,omitempty"`
	DueDate     Date         `json:"due_date"`
	GeneratedBy string       `json:"generated_by"`
}

// Reminders lists open tasks due tomorrow with their assignee's name. It does
// not send anything.
func (m *Manager) Reminders(ctx context.Context) (*ReminderList, error) {
	tomorrow := m.Today().AddDays(1)
	found, skipped, err := m.query(ctx,
		notion.And(
			notion.DateEquals(m.schema.DueDate, tomorrow.String()),
			notion.SelectNotEquals(m.schema.Status, string(StatusCompleted)),
		),
		m.dueAscending(),
	)
	if err != nil {
		return nil, err
	}

	out := &ReminderList{Reminders: []Reminder{}, Skipped: skipped, DueDate: tomorrow, GeneratedBy: m.currentUser}
	for _, t := range found {
		if !t.DueDate.Equal(tomorrow) || t.Status == StatusCompleted {
			continue
		}
		r := Reminder{TaskID: t.ID, Title: t.Title, DueDate: t.DueDate, Status: t.Status}
		if t.Assignee != nil {
			r.Assignee = t.Assignee.Name
		}
		out.Reminders = append(out.Reminders, r)
	}
	out.Count = len(out.Reminders)
	return out, nil
}
