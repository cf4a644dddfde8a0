package extract

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vthunder/taskdesk/internal/llm"
	"github.com/vthunder/taskdesk/internal/tasks"
)

// MockCompleter returns canned responses keyed by schema name.
type MockCompleter struct {
	mu        sync.Mutex
	responses map[string]*llm.Response
	errs      map[string]error
	requests  []llm.Request
}

func newMock() *MockCompleter {
	return &MockCompleter{responses: map[string]*llm.Response{}, errs: map[string]error{}}
}

func (m *MockCompleter) reply(schema, content string) *MockCompleter {
	m.responses[schema] = &llm.Response{Content: content, FinishReason: "stop"}
	return m
}

func (m *MockCompleter) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	name := req.Schema.Name
	if err := m.errs[name]; err != nil {
		return nil, err
	}
	resp, ok := m.responses[name]
	if !ok {
		return nil, errors.New("no canned response for " + name)
	}
	return resp, nil
}

func (m *MockCompleter) request(schema string) (llm.Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.Schema.Name == schema {
			return r, true
		}
	}
	return llm.Request{}, false
}

var testNow = time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

func newTestPipeline(m *MockCompleter) *Pipeline {
	return NewPipeline(m, Options{Now: func() time.Time { return testNow }})
}

func TestExtractMeetingInfo(t *testing.T) {
	m := newMock().reply("MeetingInfo",
		`{"date":"2025-06-12","time":"14:30","title":"Budget review","sentiment_score":8,"description":"Q3 numbers"}`)
	p := newTestPipeline(m)

	info, err := p.ExtractMeetingInfo(context.Background(), "Can we do the budget review Thursday at 2:30pm? It's important.")
	if err != nil {
		t.Fatalf("ExtractMeetingInfo failed: %v", err)
	}
	want := MeetingInfo{Date: "2025-06-12", Time: "14:30", Title: "Budget review", SentimentScore: 8, Description: "Q3 numbers"}
	if *info != want {
		t.Errorf("got %+v, want %+v", *info, want)
	}

	req, _ := m.request("MeetingInfo")
	if req.Temperature != 0.3 || req.MaxTokens != 150 {
		t.Errorf("unexpected sampling settings %+v", req)
	}
	if !strings.Contains(req.System, "2025-06-11") || !strings.Contains(req.System, "'09:00'") {
		t.Errorf("system prompt missing default policy: %q", req.System)
	}
	if !strings.Contains(req.User, "budget review Thursday") {
		t.Errorf("email text not in user prompt: %q", req.User)
	}
}

func TestExtractMeetingInfoDefaults(t *testing.T) {
	m := newMock().reply("MeetingInfo", `{"date":"","time":"","title":"Quick sync","sentiment_score":3,"description":""}`)
	p := newTestPipeline(m)

	info, err := p.ExtractMeetingInfo(context.Background(), "Quick sync?")
	if err != nil {
		t.Fatalf("ExtractMeetingInfo failed: %v", err)
	}
	if info.Date != "2025-06-11" {
		t.Errorf("expected tomorrow's date, got %q", info.Date)
	}
	if info.Time != "09:00" {
		t.Errorf("expected 09:00, got %q", info.Time)
	}
}

func TestExtractMeetingInfoRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"score too high", `{"date":"2025-06-12","time":"10:00","title":"x","sentiment_score":11}`},
		{"bad date", `{"date":"June 12","time":"10:00","title":"x","sentiment_score":5}`},
		{"bad time", `{"date":"2025-06-12","time":"10am","title":"x","sentiment_score":5}`},
		{"no title", `{"date":"2025-06-12","time":"10:00","title":"","sentiment_score":5}`},
		{"not json", `I could not find a meeting.`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(newMock().reply("MeetingInfo", tt.content))
			if _, err := p.ExtractMeetingInfo(context.Background(), "email"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExtractTruncated(t *testing.T) {
	m := newMock()
	// complete-looking but cut off: must not be repaired
	m.responses["TaskInfo"] = &llm.Response{Content: `{"date":"2025-06-12","title":"Send the rep`, FinishReason: "length"}
	p := newTestPipeline(m)

	_, err := p.ExtractTaskInfo(context.Background(), "Send the report by Thursday")
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if tasks.ErrorKind(err) != tasks.KindRemote {
		t.Errorf("expected remote kind, got %s", tasks.ErrorKind(err))
	}
	if len(m.requests) != 1 {
		t.Errorf("expected no retry, got %d requests", len(m.requests))
	}
}

func TestExtractTaskInfoRepairsJSON(t *testing.T) {
	m := newMock().reply("TaskInfo", "```json\n{\"date\": \"2025-06-13\", \"title\": \"Send the report\",}\n```")
	p := newTestPipeline(m)

	info, err := p.ExtractTaskInfo(context.Background(), "Please send the report by Friday.")
	if err != nil {
		t.Fatalf("ExtractTaskInfo failed: %v", err)
	}
	if info.Date != "2025-06-13" || info.Title != "Send the report" {
		t.Errorf("unexpected task info %+v", info)
	}
	req, _ := m.request("TaskInfo")
	if req.MaxTokens != 100 || !strings.Contains(req.System, "2025-06-10") {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestClassifyEmail(t *testing.T) {
	for _, cat := range []Category{CategoryTask, CategoryMeeting, CategoryBoth} {
		m := newMock().reply("EmailClassification", `{"category":"`+string(cat)+`"}`)
		c, err := newTestPipeline(m).ClassifyEmail(context.Background(), "email")
		if err != nil {
			t.Fatalf("ClassifyEmail(%s) failed: %v", cat, err)
		}
		if c.Category != cat {
			t.Errorf("got %s, want %s", c.Category, cat)
		}
	}

	m := newMock().reply("EmailClassification", `{"category":"Spam"}`)
	if _, err := newTestPipeline(m).ClassifyEmail(context.Background(), "email"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestEmptyEmailMakesNoCalls(t *testing.T) {
	m := newMock()
	p := newTestPipeline(m)
	ctx := context.Background()

	_, err1 := p.ExtractMeetingInfo(ctx, "  ")
	_, err2 := p.ExtractTaskInfo(ctx, "")
	_, err3 := p.ClassifyEmail(ctx, "\n")
	_, err4 := p.ProcessEmail(ctx, "")
	for _, err := range []error{err1, err2, err3, err4} {
		if tasks.ErrorKind(err) != tasks.KindValidation {
			t.Errorf("expected validation error, got %v", err)
		}
	}
	if len(m.requests) != 0 {
		t.Errorf("expected no completions, got %d", len(m.requests))
	}
}

const (
	meetingJSON = `{"date":"2025-06-12","time":"15:00","title":"Design review","sentiment_score":6,"description":"Walk through the new API"}`
	taskJSON    = `{"date":"2025-06-13","title":"Prepare the slides"}`
)

func TestProcessEmail(t *testing.T) {
	tests := []struct {
		category    Category
		wantMeeting bool
		wantTask    bool
	}{
		{CategoryMeeting, true, false},
		{CategoryTask, false, true},
		{CategoryBoth, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			m := newMock().
				reply("EmailClassification", `{"category":"`+string(tt.category)+`"}`).
				reply("MeetingInfo", meetingJSON).
				reply("TaskInfo", taskJSON)

			res, err := newTestPipeline(m).ProcessEmail(context.Background(), "Design review Thursday 3pm; prepare the slides by Friday.")
			if err != nil {
				t.Fatalf("ProcessEmail failed: %v", err)
			}
			if res.Classification.Category != tt.category {
				t.Errorf("got category %s", res.Classification.Category)
			}
			if (res.MeetingInfo != nil) != tt.wantMeeting {
				t.Errorf("meeting_info present=%v, want %v", res.MeetingInfo != nil, tt.wantMeeting)
			}
			if (res.TaskInfo != nil) != tt.wantTask {
				t.Errorf("task_info present=%v, want %v", res.TaskInfo != nil, tt.wantTask)
			}
			if res.MeetingError != "" || res.TaskError != "" {
				t.Errorf("unexpected branch errors %q %q", res.MeetingError, res.TaskError)
			}
		})
	}
}

func TestProcessEmailBranchError(t *testing.T) {
	m := newMock().
		reply("EmailClassification", `{"category":"Both"}`).
		reply("TaskInfo", taskJSON)
	m.errs["MeetingInfo"] = &llm.APIError{StatusCode: 503, Message: "overloaded"}

	res, err := newTestPipeline(m).ProcessEmail(context.Background(), "email")
	if err != nil {
		t.Fatalf("ProcessEmail failed: %v", err)
	}
	if res.MeetingInfo != nil || !strings.Contains(res.MeetingError, "overloaded") {
		t.Errorf("expected meeting branch error, got %+v", res)
	}
	if res.TaskInfo == nil {
		t.Error("expected task branch to succeed")
	}
}

func TestProcessEmailClassificationFails(t *testing.T) {
	m := newMock().reply("MeetingInfo", meetingJSON).reply("TaskInfo", taskJSON)
	m.errs["EmailClassification"] = errors.New("connection refused")

	res, err := newTestPipeline(m).ProcessEmail(context.Background(), "email")
	if err == nil || res != nil {
		t.Fatalf("expected classification error, got %+v, %v", res, err)
	}
}

func TestMeetingTaskInputRoundTrip(t *testing.T) {
	m := newMock().reply("MeetingInfo", meetingJSON)
	info, err := newTestPipeline(m).ExtractMeetingInfo(context.Background(), "email")
	if err != nil {
		t.Fatalf("ExtractMeetingInfo failed: %v", err)
	}

	in := info.TaskInput("ada@example.com", "")
	if in.Title != info.Title || in.DueDate != info.Date {
		t.Errorf("title/date not preserved: %+v", in)
	}
	if in.Priority != string(tasks.PriorityMedium) {
		t.Errorf("expected Medium for score 6, got %s", in.Priority)
	}
	if !strings.Contains(in.Description, "Walk through the new API") || !strings.Contains(in.Description, "15:00") {
		t.Errorf("unexpected description %q", in.Description)
	}
	if _, err := tasks.ParseDate(in.DueDate); err != nil {
		t.Errorf("due date not accepted by the task layer: %v", err)
	}

	if got := info.TaskInput("", "Urgent").Priority; got != "Urgent" {
		t.Errorf("explicit priority ignored, got %s", got)
	}
}

func TestPriorityForScore(t *testing.T) {
	tests := []struct {
		score int
		want  tasks.Priority
	}{
		{10, tasks.PriorityUrgent},
		{9, tasks.PriorityUrgent},
		{8, tasks.PriorityHigh},
		{7, tasks.PriorityHigh},
		{6, tasks.PriorityMedium},
		{4, tasks.PriorityMedium},
		{3, tasks.PriorityLow},
		{0, tasks.PriorityLow},
	}
	for _, tt := range tests {
		if got := PriorityForScore(tt.score); got != tt.want {
			t.Errorf("PriorityForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
