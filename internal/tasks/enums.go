package tasks

// Priority is a task priority. Values match the remote select options exactly.
type Priority string

const (
	PriorityUrgent Priority = "Urgent"
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// AllPriorities lists priorities from most to least pressing.
func AllPriorities() []Priority {
	return []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}
}

// Valid reports whether p is a member of the priority enum.
func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities; higher is more pressing.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// ParsePriority validates s against the priority enum.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", invalidValue("priority", s, priorityNames())
	}
	return p, nil
}

// Status is a task workflow status.
//
// Not Started -> In Progress -> Completed, with Blocked reachable from any
// non-terminal state and able to return to In Progress. Transitions are not
// enforced; any status may be written.
type Status string

const (
	StatusNotStarted Status = "Not Started"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusBlocked    Status = "Blocked"
)

// AllStatuses lists every status in workflow order.
func AllStatuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusCompleted, StatusBlocked}
}

// Valid reports whether s is a member of the status enum.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

// ParseStatus validates s against the status enum.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", invalidValue("status", s, statusNames())
	}
	return st, nil
}

func priorityNames() []string {
	var names []string
	for _, p := range AllPriorities() {
		names = append(names, string(p))
	}
	return names
}

func statusNames() []string {
	var names []string
	for _, s := range AllStatuses() {
		names = append(names, string(s))
	}
	return names
}
