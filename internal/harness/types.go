package harness

import (
	"fmt"

	"github.com/roach88/pengineer/internal/record"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Op      string `json:"op"`
	Key     string `json:"key"`
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`

	// Notified is the number of subscriber callbacks the step triggered.
	Notified int `json:"notified"`
}

// Result is the outcome of running a scenario.
type Result struct {
	Pass   bool         `json:"pass"`
	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`

	// Final cache contents.
	Prompts []record.Prompt `json:"prompts"`
	Lists   []record.List   `json:"lists"`

	// Notifications holds the count each subscriber received.
	Notifications []int `json:"notifications"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed expectation.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}
