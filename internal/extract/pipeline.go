// Package extract turns free-form email text into validated meeting, task
// and routing records using a schema-constrained LLM completion.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kaptinlin/jsonrepair"
	"golang.org/x/sync/errgroup"

	"github.com/vthunder/taskdesk/internal/llm"
	"github.com/vthunder/taskdesk/internal/logging"
	"github.com/vthunder/taskdesk/internal/tasks"
)

const (
	temperature       = 0.3
	meetingMaxTokens  = 150
	taskMaxTokens     = 100
	classifyMaxTokens = 50
)

// ErrTruncated is returned when the completion hit its token limit. The
// partial output is never repaired or retried.
var ErrTruncated = errors.New("completion truncated at token limit")

// Options configures a Pipeline.
type Options struct {
	Validate *validator.Validate
	Now      func() time.Time
}

// Pipeline runs the extraction calls against a Completer.
type Pipeline struct {
	llm      llm.Completer
	validate *validator.Validate
	now      func() time.Time
}

// NewPipeline creates a pipeline over c.
func NewPipeline(c llm.Completer, opts Options) *Pipeline {
	v := opts.Validate
	if v == nil {
		v = validator.New()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{llm: c, validate: v, now: now}
}

func (p *Pipeline) today() tasks.Date { return tasks.DateOf(p.now()) }

// ExtractMeetingInfo extracts a meeting. A missing date defaults to tomorrow
// and a missing time to 09:00.
func (p *Pipeline) ExtractMeetingInfo(ctx context.Context, emailText string) (*MeetingInfo, error) {
	const op = "extract meeting info"
	if err := checkEmail(emailText); err != nil {
		return nil, err
	}
	today := p.today()

	var info MeetingInfo
	err := p.complete(ctx, op, llm.Request{
		System:      fmt.Sprintf(meetingSystemPrompt, today, today.AddDays(1)),
		User:        fmt.Sprintf(meetingUserPrompt, emailText),
		Schema:      meetingSchema,
		Temperature: temperature,
		MaxTokens:   meetingMaxTokens,
	}, &info)
	if err != nil {
		return nil, err
	}

	info.Date = strings.TrimSpace(info.Date)
	info.Time = strings.TrimSpace(info.Time)
	if info.Date == "" {
		info.Date = today.AddDays(1).String()
	}
	if info.Time == "" {
		info.Time = DefaultMeetingTime
	}
	if err := p.check(op, &info); err != nil {
		return nil, err
	}

	logging.Info("extract", "meeting %q on %s %s (importance %d)",
		logging.Truncate(info.Title, 60), info.Date, info.Time, info.SentimentScore)
	return &info, nil
}

// ExtractTaskInfo extracts a task title and due date.
func (p *Pipeline) ExtractTaskInfo(ctx context.Context, emailText string) (*TaskInfo, error) {
	const op = "extract task info"
	if err := checkEmail(emailText); err != nil {
		return nil, err
	}

	var info TaskInfo
	err := p.complete(ctx, op, llm.Request{
		System:      fmt.Sprintf(taskSystemPrompt, p.today()),
		User:        emailText,
		Schema:      taskSchema,
		Temperature: temperature,
		MaxTokens:   taskMaxTokens,
	}, &info)
	if err != nil {
		return nil, err
	}
	info.Date = strings.TrimSpace(info.Date)
	if err := p.check(op, &info); err != nil {
		return nil, err
	}

	logging.Info("extract", "task %q due %s", logging.Truncate(info.Title, 60), info.Date)
	return &info, nil
}

// ClassifyEmail decides whether an email schedules a meeting, assigns a task
// or both.
func (p *Pipeline) ClassifyEmail(ctx context.Context, emailText string) (*EmailClassification, error) {
	const op = "classify email"
	if err := checkEmail(emailText); err != nil {
		return nil, err
	}

	var c EmailClassification
	err := p.complete(ctx, op, llm.Request{
		System:      classifySystemPrompt,
		User:        emailText,
		Schema:      classificationSchema,
		Temperature: temperature,
		MaxTokens:   classifyMaxTokens,
	}, &c)
	if err != nil {
		return nil, err
	}
	if err := p.check(op, &c); err != nil {
		return nil, err
	}

	logging.Debug("extract", "classified as %s", c.Category)
	return &c, nil
}

// ProcessEmail classifies the email and runs both extractors concurrently,
// keeping the results the category asks for. A classification failure fails
// the whole call; an extractor failure is reported on its branch.
func (p *Pipeline) ProcessEmail(ctx context.Context, emailText string) (*ProcessResult, error) {
	if err := checkEmail(emailText); err != nil {
		return nil, err
	}

	var (
		class      *EmailClassification
		meeting    *MeetingInfo
		task       *TaskInfo
		meetingErr error
		taskErr    error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		class, err = p.ClassifyEmail(gctx, emailText)
		return err
	})
	g.Go(func() error {
		meeting, meetingErr = p.ExtractMeetingInfo(gctx, emailText)
		return nil
	})
	g.Go(func() error {
		task, taskErr = p.ExtractTaskInfo(gctx, emailText)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &ProcessResult{Classification: *class}
	if class.Category.WantsMeeting() {
		if meetingErr != nil {
			res.MeetingError = meetingErr.Error()
		} else {
			res.MeetingInfo = meeting
		}
	}
	if class.Category.WantsTask() {
		if taskErr != nil {
			res.TaskError = taskErr.Error()
		} else {
			res.TaskInfo = task
		}
	}
	return res, nil
}

func checkEmail(emailText string) error {
	if strings.TrimSpace(emailText) == "" {
		return &tasks.ValidationError{Field: "email_text", Value: emailText, Message: "must not be empty"}
	}
	return nil
}

// complete runs one completion and decodes its JSON content into out.
func (p *Pipeline) complete(ctx context.Context, op string, req llm.Request, out any) error {
	resp, err := p.llm.Complete(ctx, req)
	if err != nil {
		return &tasks.RemoteError{Op: op, Err: err}
	}
	if resp.Truncated() {
		logging.Warn("extract", "%s: truncated output %s", op, logging.Truncate(resp.Content, 80))
		return &tasks.RemoteError{Op: op, Err: ErrTruncated}
	}
	if err := decodeJSON(resp.Content, out); err != nil {
		return &tasks.RemoteError{Op: op, Err: err}
	}
	return nil
}

func (p *Pipeline) check(op string, v any) error {
	if err := p.validate.Struct(v); err != nil {
		return &tasks.RemoteError{Op: op, Err: fmt.Errorf("invalid response: %w", err)}
	}
	return nil
}

// decodeJSON parses model output, repairing near-JSON (fences, trailing
// commas, single quotes) when a strict parse fails.
func decodeJSON(content string, out any) error {
	content = cleanJSONResponse(content)
	if content == "" {
		return errors.New("empty completion")
	}
	err := json.Unmarshal([]byte(content), out)
	if err == nil {
		return nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("parse repaired response: %w", err)
	}
	logging.Debug("extract", "repaired response %s", logging.Truncate(content, 80))
	return nil
}

// cleanJSONResponse strips markdown fences and whitespace from LLM responses
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	}
	return response
}
