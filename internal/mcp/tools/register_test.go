package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vthunder/taskdesk/internal/extract"
	"github.com/vthunder/taskdesk/internal/integrations/notion"
	"github.com/vthunder/taskdesk/internal/llm"
	"github.com/vthunder/taskdesk/internal/mcp"
	"github.com/vthunder/taskdesk/internal/tasks"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

// notionStub serves just enough of the Notion API for the task tools.
type notionStub struct {
	mu    sync.Mutex
	pages map[string]map[string]notion.Property
	order []string
}

func (s *notionStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case r.Method == "POST" && r.URL.Path == "/pages":
		var params notion.CreatePageParams
		json.NewDecoder(r.Body).Decode(&params)
		id := fmt.Sprintf("page-%d", len(s.order)+1)
		s.pages[id] = params.Properties
		s.order = append(s.order, id)
		json.NewEncoder(w).Encode(notion.Object{Object: "page", ID: id})

	case strings.HasPrefix(r.URL.Path, "/pages/"):
		id := strings.TrimPrefix(r.URL.Path, "/pages/")
		props, ok := s.pages[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"Could not find page"}`))
			return
		}
		if r.Method == "PATCH" {
			var body struct {
				Properties map[string]notion.Property `json:"properties"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			for k, v := range body.Properties {
				props[k] = v
			}
		}
		json.NewEncoder(w).Encode(notion.Object{Object: "page", ID: id, Properties: props})

	case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/query"):
		var params notion.QueryParams
		json.NewDecoder(r.Body).Decode(&params)
		res := notion.QueryResult{Object: "list", Results: []notion.Object{}}
		for _, id := range s.order {
			props := s.pages[id]
			if f := params.Filter; f != nil && f.Select != nil {
				sel := props[f.Property].Select
				if sel == nil || sel.Name != f.Select.Equals {
					continue
				}
			}
			res.Results = append(res.Results, notion.Object{Object: "page", ID: id, Properties: props})
		}
		json.NewEncoder(w).Encode(res)

	case r.URL.Path == "/users":
		json.NewEncoder(w).Encode(notion.UserList{Object: "list", Results: []notion.User{
			{Object: "user", ID: "u-1", Type: "person", Name: "Ada", Person: &notion.Person{Email: "ada@example.com"}},
		}})

	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"no route"}`))
	}
}

type cannedCompleter map[string]string

func (c cannedCompleter) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	content, ok := c[req.Schema.Name]
	if !ok {
		return nil, &llm.APIError{StatusCode: 500, Message: "no canned response"}
	}
	return &llm.Response{Content: content, FinishReason: "stop"}, nil
}

func newTestServer(t *testing.T, completer llm.Completer) (*mcp.Server, *notionStub, map[string]string) {
	t.Helper()
	stub := &notionStub{pages: map[string]map[string]notion.Property{}}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	client, err := notion.NewClient(notion.Config{Token: "secret", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	now := func() time.Time { return testNow }
	deps := &Dependencies{
		Tasks: tasks.NewManager(client, tasks.Options{DatabaseID: "db-1", CurrentUser: "tester", Now: now}),
	}
	if completer != nil {
		deps.Email = extract.NewPipeline(completer, extract.Options{Now: now})
	}

	calls := map[string]string{}
	deps.OnToolCall = func(tool, status string) { calls[tool] = status }

	server := mcp.NewServer("taskdesk-test", "0.0.0")
	RegisterAll(server, deps)
	return server, stub, calls
}

func call(t *testing.T, s *mcp.Server, tool string, args map[string]any) tasks.Result {
	t.Helper()
	out, err := s.Call(context.Background(), tool, args)
	if err != nil {
		t.Fatalf("%s: %v", tool, err)
	}
	var res tasks.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("%s: invalid result JSON %q: %v", tool, out, err)
	}
	return res
}

func TestRegisterAll(t *testing.T) {
	server, _, _ := newTestServer(t, nil)
	names := server.ToolNames()
	if len(names) != 12 {
		t.Errorf("Expected 12 task tools without email, got %d: %v", len(names), names)
	}

	server, _, _ = newTestServer(t, cannedCompleter{})
	if got := len(server.ToolNames()); got != 17 {
		t.Errorf("Expected 17 tools with email, got %d", got)
	}
}

func TestCreateUpdateGet(t *testing.T) {
	server, stub, calls := newTestServer(t, nil)

	res := call(t, server, "create_task", map[string]any{
		"title":    "Prepare slides",
		"assignee": "ada@example.com",
		"due_date": "2025-06-12",
		"priority": "High",
	})
	if res.Status != tasks.ResultSuccess {
		t.Fatalf("create_task failed: %+v", res)
	}
	data := res.Data.(map[string]any)
	id := data["task_id"].(string)
	if data["created_by"] != "tester" || res.Timestamp != "2025-06-10 12:00:00" {
		t.Errorf("Unexpected result %+v", res)
	}
	if people := stub.pages[id]["Assignee"].People; len(people) != 1 || people[0].ID != "u-1" {
		t.Errorf("Expected assignee u-1, got %+v", people)
	}
	if calls["create_task"] != tasks.ResultSuccess {
		t.Errorf("Expected OnToolCall success, got %q", calls["create_task"])
	}

	res = call(t, server, "update_task_status", map[string]any{"task_id": id, "status": "Completed"})
	if res.Status != tasks.ResultSuccess {
		t.Fatalf("update_task_status failed: %+v", res)
	}

	res = call(t, server, "get_task_details", map[string]any{"task_id": id})
	if res.Status != tasks.ResultSuccess {
		t.Fatalf("get_task_details failed: %+v", res)
	}
	task := res.Data.(map[string]any)
	if task["status"] != "Completed" || task["title"] != "Prepare slides" || task["due_date"] != "2025-06-12" {
		t.Errorf("Unexpected task %+v", task)
	}

	res = call(t, server, "get_tasks_by_status", map[string]any{"status": "Completed"})
	if res.Status != tasks.ResultSuccess || res.Data.(map[string]any)["count"] != float64(1) {
		t.Errorf("Unexpected list %+v", res)
	}
}

func TestErrorEnvelope(t *testing.T) {
	server, _, calls := newTestServer(t, nil)

	tests := []struct {
		tool string
		args map[string]any
		kind string
	}{
		{"create_task", map[string]any{"title": "t", "due_date": "next week"}, tasks.KindValidation},
		{"create_task", map[string]any{"title": "t", "due_date": "2025-06-12", "assignee": "nobody@example.com"}, tasks.KindNotFound},
		{"update_task_status", map[string]any{"task_id": "page-1", "status": "Done"}, tasks.KindValidation},
		{"update_task_priority", map[string]any{"task_id": "missing", "priority": "Low"}, tasks.KindNotFound},
		{"get_task_details", map[string]any{"task_id": "missing"}, tasks.KindNotFound},
		{"check_database_schema", nil, tasks.KindNotFound},
	}
	for _, tt := range tests {
		res := call(t, server, tt.tool, tt.args)
		if res.Status != tasks.ResultError || res.ErrorKind != tt.kind || res.Message == "" {
			t.Errorf("%s: expected %s error, got %+v", tt.tool, tt.kind, res)
		}
		if calls[tt.tool] != tasks.ResultError {
			t.Errorf("%s: expected OnToolCall error", tt.tool)
		}
	}
}

func TestEmailTools(t *testing.T) {
	server, stub, _ := newTestServer(t, cannedCompleter{
		"EmailClassification": `{"category":"Meeting Schedule"}`,
		"MeetingInfo":         `{"date":"","time":"","title":"Quick sync","sentiment_score":9,"description":""}`,
		"TaskInfo":            `{"date":"2025-06-13","title":"Unused"}`,
	})

	res := call(t, server, "extract_meeting_info", map[string]any{"email_text": "Quick sync?"})
	if res.Status != tasks.ResultSuccess {
		t.Fatalf("extract_meeting_info failed: %+v", res)
	}
	info := res.Data.(map[string]any)
	if info["date"] != "2025-06-11" || info["time"] != "09:00" {
		t.Errorf("Expected defaults applied, got %+v", info)
	}

	res = call(t, server, "process_email", map[string]any{"email_text": "Quick sync?"})
	data := res.Data.(map[string]any)
	if _, ok := data["task_info"]; ok {
		t.Errorf("Expected no task_info for a meeting email, got %+v", data)
	}

	res = call(t, server, "create_tasks_from_email", map[string]any{"email_text": "Quick sync?"})
	if res.Status != tasks.ResultSuccess {
		t.Fatalf("create_tasks_from_email failed: %+v", res)
	}
	if len(stub.order) != 1 {
		t.Fatalf("Expected 1 page created, got %d", len(stub.order))
	}
	props := stub.pages[stub.order[0]]
	if props["Priority"].Select.Name != "Urgent" || props["Due Date"].Date.Start != "2025-06-11" {
		t.Errorf("Unexpected created task %+v", props)
	}

	res = call(t, server, "classify_email", map[string]any{"email_text": ""})
	if res.ErrorKind != tasks.KindValidation {
		t.Errorf("Expected validation error for empty email, got %+v", res)
	}
}
