package tasks

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vthunder/taskdesk/internal/integrations/notion"
)

// fakeStore is an in-memory RemoteStore that evaluates the filters the task
// layer sends and pages results like the real API.
type fakeStore struct {
	mu sync.Mutex

	pages  map[string]*notion.Object
	order  []string
	nextID int

	users        []notion.User
	userPageSize int

	db *notion.Database

	queryPageSize int
	queryErr      map[string]error // keyed by status filter value
	err           error            // returned by every call when set

	calls map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pages:         make(map[string]*notion.Object),
		calls:         make(map[string]int),
		queryErr:      make(map[string]error),
		userPageSize:  100,
		queryPageSize: 100,
	}
}

func (f *fakeStore) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeStore) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func notFound(id string) error {
	return &notion.APIError{Status: http.StatusNotFound, Code: "object_not_found", Message: "Could not find " + id}
}

// seed inserts a task row directly, bypassing CreatePage.
func (f *fakeStore) seed(title, due string, p Priority, st Status, assignee *notion.User) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("page-%d", f.nextID)
	s := DefaultSchema()
	props := map[string]notion.Property{
		s.Title:    {Type: TypeTitle, Title: []notion.RichText{{PlainText: title}}},
		s.DueDate:  {Type: TypeDate, Date: &notion.DateProperty{Start: due}},
		s.Priority: {Type: TypeSelect, Select: &notion.SelectOption{Name: string(p)}},
		s.Status:   {Type: TypeSelect, Select: &notion.SelectOption{Name: string(st)}},
	}
	if assignee != nil {
		props[s.Assignee] = notion.Property{Type: TypePeople, People: []notion.User{*assignee}}
	}
	f.pages[id] = &notion.Object{Object: "page", ID: id, Properties: props}
	f.order = append(f.order, id)
	return id
}

func (f *fakeStore) CreatePage(ctx context.Context, params notion.CreatePageParams) (*notion.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	id := fmt.Sprintf("page-%d", f.nextID)

	props := make(map[string]notion.Property, len(params.Properties))
	for name, p := range params.Properties {
		// the API echoes full user objects for people properties
		for i, ref := range p.People {
			for _, u := range f.users {
				if u.ID == ref.ID {
					p.People[i] = u
				}
			}
		}
		props[name] = p
	}
	obj := &notion.Object{Object: "page", ID: id, Properties: props, Parent: &params.Parent}
	f.pages[id] = obj
	f.order = append(f.order, id)
	return obj, nil
}

func (f *fakeStore) UpdatePage(ctx context.Context, pageID string, properties map[string]notion.Property) (*notion.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if f.err != nil {
		return nil, f.err
	}
	page, ok := f.pages[pageID]
	if !ok {
		return nil, notFound(pageID)
	}
	for name, p := range properties {
		page.Properties[name] = p
	}
	return page, nil
}

func (f *fakeStore) GetPage(ctx context.Context, pageID string) (*notion.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["get"]++
	if f.err != nil {
		return nil, f.err
	}
	page, ok := f.pages[pageID]
	if !ok {
		return nil, notFound(pageID)
	}
	cp := *page
	return &cp, nil
}

func (f *fakeStore) GetDatabase(ctx context.Context, databaseID string) (*notion.Database, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["database"]++
	if f.err != nil {
		return nil, f.err
	}
	if f.db == nil {
		return nil, notFound(databaseID)
	}
	return f.db, nil
}

func (f *fakeStore) QueryDatabase(ctx context.Context, databaseID string, params notion.QueryParams) (*notion.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["query"]++
	if f.err != nil {
		return nil, f.err
	}
	if params.Filter != nil && params.Filter.Select != nil {
		if err := f.queryErr[params.Filter.Select.Equals]; err != nil {
			return nil, err
		}
	}

	var matched []notion.Object
	for _, id := range f.order {
		page := f.pages[id]
		if params.Filter == nil || matches(*params.Filter, page) {
			matched = append(matched, *page)
		}
	}
	sortPages(matched, params.Sorts)

	start := 0
	if params.StartCursor != "" {
		start, _ = strconv.Atoi(params.StartCursor)
	}
	end := start + f.queryPageSize
	if end > len(matched) {
		end = len(matched)
	}
	res := &notion.QueryResult{Object: "list", Results: matched[start:end]}
	if end < len(matched) {
		res.HasMore = true
		res.NextCursor = strconv.Itoa(end)
	}
	return res, nil
}

func (f *fakeStore) ListUsers(ctx context.Context, startCursor string) (*notion.UserList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["users"]++
	if f.err != nil {
		return nil, f.err
	}
	start := 0
	if startCursor != "" {
		start, _ = strconv.Atoi(startCursor)
	}
	end := start + f.userPageSize
	if end > len(f.users) {
		end = len(f.users)
	}
	res := &notion.UserList{Object: "list", Results: f.users[start:end]}
	if end < len(f.users) {
		res.HasMore = true
		res.NextCursor = strconv.Itoa(end)
	}
	return res, nil
}

func matches(f notion.Filter, page *notion.Object) bool {
	if len(f.And) > 0 {
		for _, sub := range f.And {
			if !matches(sub, page) {
				return false
			}
		}
		return true
	}
	prop := page.Properties[f.Property]
	switch {
	case f.Select != nil:
		name := ""
		if prop.Select != nil {
			name = prop.Select.Name
		}
		if f.Select.Equals != "" {
			return name == f.Select.Equals
		}
		return name != f.Select.DoesNotEqual
	case f.Date != nil:
		if prop.Date == nil {
			return false
		}
		day := prop.Date.Start
		if f.Date.Equals != "" {
			return day == f.Date.Equals
		}
		if f.Date.Before != "" {
			return day < f.Date.Before
		}
	}
	return true
}

func sortPages(pages []notion.Object, sorts []notion.Sort) {
	if len(sorts) == 0 {
		return
	}
	s := sorts[0]
	key := func(o notion.Object) string {
		p := o.Properties[s.Property]
		switch {
		case p.Date != nil:
			return p.Date.Start
		case p.Select != nil:
			return strconv.Itoa(Priority(p.Select.Name).Rank())
		}
		return ""
	}
	sort.SliceStable(pages, func(i, j int) bool {
		if s.Direction == notion.Descending {
			return key(pages[i]) > key(pages[j])
		}
		return key(pages[i]) < key(pages[j])
	})
}

var testNow = time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)

func newTestManager(store *fakeStore) *Manager {
	return NewManager(store, Options{
		DatabaseID:  "db-1",
		CurrentUser: "tester",
		Now:         func() time.Time { return testNow },
	})
}

func person(id, name, email string) notion.User {
	return notion.User{Object: "user", ID: id, Type: "person", Name: name, Person: &notion.Person{Email: email}}
}
