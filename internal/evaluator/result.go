// Package evaluator implements the alert evaluation engine: a bounded,
// periodically invoked pass over geofence links and scheduled alert
// rules that emits alert records exactly once per qualifying occurrence.
package evaluator

import (
	"fmt"
	"time"
)

// ItemError is a failure scoped to a single link or rule. Item failures
// are isolated: they are collected into the run summary and never abort
// evaluation of sibling items.
type ItemError struct {
	ID  string
	Err error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.ID, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one evaluator's pass.
type Result struct {
	Triggered int
	Errors    []ItemError
}

// RunSummary is the aggregated outcome of one invocation of the engine,
// covering both evaluators. It is the only observable output besides
// the alert records themselves.
type RunSummary struct {
	Timestamp         time.Time `json:"timestamp"`
	GeofenceTriggered int       `json:"geofence_triggered"`
	GeofenceErrors    []string  `json:"geofence_errors"`
	ScheduleTriggered int       `json:"schedule_triggered"`
	ScheduleErrors    []string  `json:"schedule_errors"`
}

// HasErrors reports whether either evaluator recorded failures.
func (s *RunSummary) HasErrors() bool {
	return len(s.GeofenceErrors) > 0 || len(s.ScheduleErrors) > 0
}

func errorStrings(errs []ItemError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}
