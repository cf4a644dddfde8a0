package extract

import (
	"fmt"
	"strings"

	"github.com/vthunder/taskdesk/internal/tasks"
)

// Category routes an email to one or both extractors.
type Category string

const (
	CategoryTask    Category = "Task Creation"
	CategoryMeeting Category = "Meeting Schedule"
	CategoryBoth    Category = "Both"
)

// WantsMeeting reports whether the meeting extractor's result is needed.
func (c Category) WantsMeeting() bool { return c == CategoryMeeting || c == CategoryBoth }

// WantsTask reports whether the task extractor's result is needed.
func (c Category) WantsTask() bool { return c == CategoryTask || c == CategoryBoth }

// DefaultMeetingTime is used when an email names no time.
const DefaultMeetingTime = "09:00"

// MeetingInfo is the structured form of a meeting request.
type MeetingInfo struct {
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string `json:"time" validate:"required,datetime=15:04"`
	Title          string `json:"title" validate:"required"`
	SentimentScore int    `json:"sentiment_score" validate:"min=0,max=10"`
	Description    string `json:"description"`
}

// TaskInfo is the structured form of a task request.
type TaskInfo struct {
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
	Title string `json:"title" validate:"required"`
}

// EmailClassification is the routing decision for an email.
type EmailClassification struct {
	Category Category `json:"category" validate:"required,oneof='Task Creation' 'Meeting Schedule' Both"`
}

// ProcessResult joins a classification with the extractions it calls for.
// A needed branch that failed carries its error message instead of a value.
type ProcessResult struct {
	Classification EmailClassification `json:"classification"`
	MeetingInfo    *MeetingInfo        `json:"meeting_info,omitempty"`
	TaskInfo       *TaskInfo           `json:"task_info,omitempty"`
	MeetingError   string              `json:"meeting_error,omitempty"`
	TaskError      string              `json:"task_error,omitempty"`
}

// PriorityForScore maps a 0-10 importance score to a task priority.
func PriorityForScore(score int) tasks.Priority {
	switch {
	case score >= 9:
		return tasks.PriorityUrgent
	case score >= 7:
		return tasks.PriorityHigh
	case score >= 4:
		return tasks.PriorityMedium
	default:
		return tasks.PriorityLow
	}
}

// TaskInput turns a meeting into a create_task request. Title and date carry
// over unchanged; the meeting time is appended to the description. An empty
// priority is derived from the importance score.
func (m MeetingInfo) TaskInput(assigneeEmail, priority string) tasks.CreateTaskInput {
	if priority == "" {
		priority = string(PriorityForScore(m.SentimentScore))
	}
	desc := strings.TrimSpace(m.Description)
	if m.Time != "" {
		if desc != "" {
			desc += "\n\n"
		}
		desc += fmt.Sprintf("Meeting time: %s", m.Time)
	}
	return tasks.CreateTaskInput{
		Title:         m.Title,
		Description:   desc,
		AssigneeEmail: assigneeEmail,
		DueDate:       m.Date,
		Priority:      priority,
	}
}

// TaskInput turns an extracted task into a create_task request.
func (t TaskInfo) TaskInput(assigneeEmail, priority string) tasks.CreateTaskInput {
	return tasks.CreateTaskInput{
		Title:         t.Title,
		AssigneeEmail: assigneeEmail,
		DueDate:       t.Date,
		Priority:      priority,
	}
}
