package notion

// Filter is a database query filter. Either a property condition (Property
// plus one condition) or a compound And.
type Filter struct {
	Property string           `json:"property,omitempty"`
	Select   *SelectCondition `json:"select,omitempty"`
	Date     *DateCondition   `json:"date,omitempty"`
	And      []Filter         `json:"and,omitempty"`
}

type SelectCondition struct {
	Equals       string `json:"equals,omitempty"`
	DoesNotEqual string `json:"does_not_equal,omitempty"`
}

type DateCondition struct {
	Equals     string `json:"equals,omitempty"`
	Before     string `json:"before,omitempty"`
	After      string `json:"after,omitempty"`
	OnOrBefore string `json:"on_or_before,omitempty"`
	OnOrAfter  string `json:"on_or_after,omitempty"`
}

// SelectEquals matches a select property by option name
func SelectEquals(property, value string) Filter {
	return Filter{Property: property, Select: &SelectCondition{Equals: value}}
}

// SelectNotEquals excludes a select option
func SelectNotEquals(property, value string) Filter {
	return Filter{Property: property, Select: &SelectCondition{DoesNotEqual: value}}
}

// DateEquals matches a date property on a YYYY-MM-DD day
func DateEquals(property, day string) Filter {
	return Filter{Property: property, Date: &DateCondition{Equals: day}}
}

// DateBefore matches dates strictly before day
func DateBefore(property, day string) Filter {
	return Filter{Property: property, Date: &DateCondition{Before: day}}
}

// And combines filters
func And(filters ...Filter) Filter {
	return Filter{And: filters}
}

// Write-side property values

func TitleValue(text string) Property {
	return Property{Title: []RichText{{Type: "text", Text: &TextObj{Content: text}}}}
}

func RichTextValue(text string) Property {
	return Property{RichText: []RichText{{Type: "text", Text: &TextObj{Content: text}}}}
}

func SelectValue(name string) Property {
	return Property{Select: &SelectOption{Name: name}}
}

func DateValue(day string) Property {
	return Property{Date: &DateProperty{Start: day}}
}

func PeopleValue(userIDs ...string) Property {
	people := make([]User, 0, len(userIDs))
	for _, id := range userIDs {
		people = append(people, User{Object: "user", ID: id})
	}
	return Property{People: people}
}
