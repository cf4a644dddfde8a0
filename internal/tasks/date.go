package tasks

import (
	"encoding/json"
	"time"
)

// DateLayout is the ISO 8601 calendar date format used everywhere.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time or zone component.
type Date struct {
	t time.Time
}

// ParseDate parses exactly YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Value: s, Message: "expected YYYY-MM-DD"}
	}
	return Date{t: t}, nil
}

// parseRemoteDate reads a stored date value. Values with a time part
// ("2025-06-11T09:00:00.000+00:00") are reduced to their day.
func parseRemoteDate(s string) (Date, error) {
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return Date{}, &ValidationError{Field: "date", Value: s, Message: "expected YYYY-MM-DD or RFC 3339"}
		}
		return DateOf(t), nil
	}
	return ParseDate(s)
}

// DateOf returns the local calendar day of t.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// DaysSince returns d - o in whole days.
func (d Date) DaysSince(o Date) int {
	return int(d.t.Sub(o.t).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
