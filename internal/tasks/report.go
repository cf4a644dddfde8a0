package tasks

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vthunder/taskdesk/internal/logging"
)

// ReportError records a status whose query failed during DailyReport, or a
// row of that status that could not be decoded (TaskID set).
type ReportError struct {
	Status  Status `json:"status"`
	TaskID  string `json:"task_id,omitempty"`
	Message string `json:"message"`
}

// DailyReport counts tasks per status and priority.
//
// sum(Summary) == len(Details) == sum(PriorityDistribution). Statuses whose
// query failed are absent from Summary and listed in Errors. Undecodable rows
// are not counted and are listed in Errors as well.
type DailyReport struct {
	Summary              map[Status]int   `json:"summary"`
	Details              []TaskSummary    `json:"details"`
	PriorityDistribution map[Priority]int `json:"priority_distribution"`
	Errors               []ReportError    `json:"errors,omitempty"`
	GeneratedBy          string           `json:"generated_by"`
	GeneratedAt          string           `json:"generated_at"`
}

// Partial reports whether any status query failed or any row was skipped.
func (r *DailyReport) Partial() bool { return len(r.Errors) > 0 }

// DailyReport runs one status query per status concurrently and merges the
// results in workflow order.
func (m *Manager) DailyReport(ctx context.Context) (*DailyReport, error) {
	statuses := AllStatuses()
	lists := make([]*TaskList, len(statuses))
	errs := make([]error, len(statuses))

	// sub-query failures are collected, not propagated, so one bad status
	// does not cancel the others
	var g errgroup.Group
	for i, st := range statuses {
		g.Go(func() error {
			lists[i], errs[i] = m.TasksByStatus(ctx, string(st))
			return nil
		})
	}
	_ = g.Wait()

	report := &DailyReport{
		Summary:              make(map[Status]int, len(statuses)),
		Details:              []TaskSummary{},
		PriorityDistribution: make(map[Priority]int, len(AllPriorities())),
		GeneratedBy:          m.currentUser,
		GeneratedAt:          Timestamp(m.now()),
	}
	for _, p := range AllPriorities() {
		report.PriorityDistribution[p] = 0
	}

	failed := 0
	for i, st := range statuses {
		if errs[i] != nil {
			logging.Warn("tasks", "daily report: %s query failed: %v", st, errs[i])
			report.Errors = append(report.Errors, ReportError{Status: st, Message: errs[i].Error()})
			failed++
			continue
		}
		for _, row := range lists[i].Skipped {
			report.Errors = append(report.Errors, ReportError{Status: st, TaskID: row.ID, Message: row.Reason})
		}
		report.Summary[st] = lists[i].Count
		for _, t := range lists[i].Tasks {
			report.Details = append(report.Details, t)
			report.PriorityDistribution[t.Priority]++
		}
	}

	if failed == len(statuses) {
		return nil, &RemoteError{Op: "daily report", Err: errs[0]}
	}
	return report, nil
}
