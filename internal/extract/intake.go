package extract

import (
	"context"

	"github.com/vthunder/taskdesk/internal/logging"
	"github.com/vthunder/taskdesk/internal/tasks"
)

// TaskCreator is the part of tasks.Manager that intake needs.
type TaskCreator interface {
	CreateTask(ctx context.Context, in tasks.CreateTaskInput) (*tasks.TaskRef, error)
}

// IntakeResult is what CreateTasksFromEmail extracted and created.
type IntakeResult struct {
	Extraction *ProcessResult  `json:"extraction"`
	Created    []tasks.TaskRef `json:"created"`
	Errors     []string        `json:"errors,omitempty"`
}

// CreateTasksFromEmail processes an email and creates one task per extracted
// meeting or task. assigneeEmail may be empty. priority, when empty, is
// derived from the meeting importance (meetings) or left to the task
// layer's default (tasks).
func CreateTasksFromEmail(ctx context.Context, p *Pipeline, tc TaskCreator, emailText, assigneeEmail, priority string) (*IntakeResult, error) {
	extraction, err := p.ProcessEmail(ctx, emailText)
	if err != nil {
		return nil, err
	}

	res := &IntakeResult{Extraction: extraction, Created: []tasks.TaskRef{}}
	if extraction.MeetingError != "" {
		res.Errors = append(res.Errors, "meeting: "+extraction.MeetingError)
	}
	if extraction.TaskError != "" {
		res.Errors = append(res.Errors, "task: "+extraction.TaskError)
	}

	var inputs []tasks.CreateTaskInput
	if extraction.MeetingInfo != nil {
		inputs = append(inputs, extraction.MeetingInfo.TaskInput(assigneeEmail, priority))
	}
	if extraction.TaskInfo != nil {
		inputs = append(inputs, extraction.TaskInfo.TaskInput(assigneeEmail, priority))
	}

	for _, in := range inputs {
		ref, err := tc.CreateTask(ctx, in)
		if err != nil {
			logging.Warn("extract", "create task %q from email: %v", logging.Truncate(in.Title, 60), err)
			res.Errors = append(res.Errors, in.Title+": "+err.Error())
			continue
		}
		res.Created = append(res.Created, *ref)
	}
	return res, nil
}
