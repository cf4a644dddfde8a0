package tasks

import (
	"sort"

	"github.com/vthunder/taskdesk/internal/integrations/notion"
)

// Remote property types used by the task database.
const (
	TypeTitle    = "title"
	TypeRichText = "rich_text"
	TypePeople   = "people"
	TypeDate     = "date"
	TypeSelect   = "select"
)

// Schema names the remote property backing each task field. Property names
// can be overridden from the YAML schema file.
type Schema struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Assignee    string `yaml:"assignee"`
	DueDate     string `yaml:"due_date"`
	Priority    string `yaml:"priority"`
	Status      string `yaml:"status"`
}

// DefaultSchema returns the property names of the reference task database.
func DefaultSchema() Schema {
	return Schema{
		Title:       "Title",
		Description: "Description",
		Assignee:    "Assignee",
		DueDate:     "Due Date",
		Priority:    "Priority",
		Status:      "Status",
	}
}

// WithDefaults fills empty names from DefaultSchema.
func (s Schema) WithDefaults() Schema {
	d := DefaultSchema()
	if s.Title == "" {
		s.Title = d.Title
	}
	if s.Description == "" {
		s.Description = d.Description
	}
	if s.Assignee == "" {
		s.Assignee = d.Assignee
	}
	if s.DueDate == "" {
		s.DueDate = d.DueDate
	}
	if s.Priority == "" {
		s.Priority = d.Priority
	}
	if s.Status == "" {
		s.Status = d.Status
	}
	return s
}

// ExpectedProperty is one entry of the field-to-type mapping.
type ExpectedProperty struct {
	Name    string                `json:"name"`
	Type    string                `json:"type"`
	Options []notion.SelectOption `json:"options,omitempty"`
}

var priorityColors = map[Priority]string{
	PriorityLow:    "gray",
	PriorityMedium: "blue",
	PriorityHigh:   "yellow",
	PriorityUrgent: "red",
}

var statusColors = map[Status]string{
	StatusNotStarted: "default",
	StatusInProgress: "blue",
	StatusCompleted:  "green",
	StatusBlocked:    "red",
}

// Expected returns the properties the task database must have.
func (s Schema) Expected() []ExpectedProperty {
	var prioOpts []notion.SelectOption
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent} {
		prioOpts = append(prioOpts, notion.SelectOption{Name: string(p), Color: priorityColors[p]})
	}
	var statusOpts []notion.SelectOption
	for _, st := range AllStatuses() {
		statusOpts = append(statusOpts, notion.SelectOption{Name: string(st), Color: statusColors[st]})
	}

	return []ExpectedProperty{
		{Name: s.Title, Type: TypeTitle},
		{Name: s.Description, Type: TypeRichText},
		{Name: s.Assignee, Type: TypePeople},
		{Name: s.DueDate, Type: TypeDate},
		{Name: s.Priority, Type: TypeSelect, Options: prioOpts},
		{Name: s.Status, Type: TypeSelect, Options: statusOpts},
	}
}

// TypeMismatch is a property present with the wrong type.
type TypeMismatch struct {
	Property string `json:"property"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// SchemaReport is the result of comparing a live database to the schema.
type SchemaReport struct {
	DatabaseID     string              `json:"database_id"`
	OK             bool                `json:"ok"`
	Missing        []string            `json:"missing,omitempty"`
	WrongType      []TypeMismatch      `json:"wrong_type,omitempty"`
	MissingOptions map[string][]string `json:"missing_options,omitempty"`
	Extra          []string            `json:"extra,omitempty"`
}

// Check compares db against the expected mapping. Extra properties are
// reported but do not fail the check.
func (s Schema) Check(db *notion.Database) SchemaReport {
	report := SchemaReport{DatabaseID: db.ID}
	expected := s.Expected()

	known := make(map[string]bool, len(expected))
	for _, exp := range expected {
		known[exp.Name] = true

		prop, ok := db.Properties[exp.Name]
		if !ok {
			report.Missing = append(report.Missing, exp.Name)
			continue
		}
		if prop.Type != exp.Type {
			report.WrongType = append(report.WrongType, TypeMismatch{
				Property: exp.Name, Expected: exp.Type, Actual: prop.Type,
			})
			continue
		}
		if len(exp.Options) == 0 || prop.Select == nil {
			if len(exp.Options) > 0 {
				report.addMissingOptions(exp.Name, exp.Options, nil)
			}
			continue
		}
		report.addMissingOptions(exp.Name, exp.Options, prop.Select.Options)
	}

	for name := range db.Properties {
		if !known[name] {
			report.Extra = append(report.Extra, name)
		}
	}
	sort.Strings(report.Extra)

	report.OK = len(report.Missing) == 0 && len(report.WrongType) == 0 && len(report.MissingOptions) == 0
	return report
}

func (r *SchemaReport) addMissingOptions(property string, want, have []notion.SelectOption) {
	present := make(map[string]bool, len(have))
	for _, o := range have {
		present[o.Name] = true
	}
	for _, o := range want {
		if present[o.Name] {
			continue
		}
		if r.MissingOptions == nil {
			r.MissingOptions = make(map[string][]string)
		}
		r.MissingOptions[property] = append(r.MissingOptions[property], o.Name)
	}
}
