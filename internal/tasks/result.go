package tasks

import "time"

// TimestampLayout formats result timestamps (UTC).
const TimestampLayout = "2006-01-02 15:04:05"

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Result is the uniform envelope every tool returns. Callers inspect Status
// instead of handling errors.
type Result struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NewResult wraps an operation outcome.
func NewResult(data any, err error, now time.Time) Result {
	if err != nil {
		return Failure(err, now)
	}
	return Success(data, now)
}

func Success(data any, now time.Time) Result {
	return Result{Status: ResultSuccess, Data: data, Timestamp: Timestamp(now)}
}

func Failure(err error, now time.Time) Result {
	return Result{
		Status:    ResultError,
		Message:   err.Error(),
		ErrorKind: ErrorKind(err),
		Timestamp: Timestamp(now),
	}
}

// Timestamp renders t in UTC with TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
