package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/pengineer/internal/store"
	"github.com/roach88/pengineer/internal/testutil"
)

// Harness executes the steps of one scenario.
type Harness struct {
	store  *store.Store
	ids    *testutil.SequentialIDs
	counts []int
}

// Run executes a scenario in a fresh in-memory store and returns the result.
// An error is returned only if the store cannot be set up; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st := store.New(":memory:", store.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer st.Close()

	if err := st.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize in-memory store: %w", err)
	}

	h := &Harness{
		store:  st,
		ids:    testutil.NewSequentialIDs("prompt"),
		counts: make([]int, scenario.Subscribers),
	}
	for i := range h.counts {
		st.Subscribe(func() { h.counts[i]++ })
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		event := h.execute(ctx, step)
		event.Seq = i + 1
		result.Trace = append(result.Trace, event)

		want := step.Expect
		if want == "" {
			want = OutcomeOK
		}
		if event.Outcome != want {
			result.AddError("step %d (%s %s): expected %s, got %s", event.Seq, step.Op, event.Key, want, event.Outcome)
		}
	}

	result.Prompts = st.Prompts()
	result.Lists = st.Lists()
	result.Notifications = slices.Clone(h.counts)

	if scenario.Expect != nil {
		checkFinalState(scenario.Expect, result)
	}
	return result, nil
}

func (h *Harness) execute(ctx context.Context, step Step) TraceEvent {
	before := h.total()
	event := TraceEvent{Op: step.Op}

	var (
		conflict *store.Conflict
		err      error
	)
	switch step.Op {
	case OpSavePrompt:
		p := *step.Prompt
		if p.ID == "" {
			p.ID = h.ids.Generate()
		}
		event.Key = p.ID
		conflict, err = h.store.SavePrompt(ctx, p)
	case OpDeletePrompt:
		event.Key = step.Key
		err = h.store.DeletePrompt(ctx, step.Key)
	case OpSaveList:
		event.Key = step.List.Name
		conflict, err = h.store.SaveList(ctx, *step.List)
	case OpDeleteList:
		event.Key = step.Key
		err = h.store.DeleteList(ctx, step.Key)
	}

	switch {
	case err != nil:
		event.Outcome = OutcomeError
		event.Message = err.Error()
	case conflict != nil:
		event.Outcome = OutcomeConflict
		event.Message = conflict.Message
	default:
		event.Outcome = OutcomeOK
	}

	event.Notified = h.total() - before
	return event
}

func (h *Harness) total() int {
	n := 0
	for _, c := range h.counts {
		n += c
	}
	return n
}

func checkFinalState(want *FinalState, result *Result) {
	promptIDs := make([]string, len(result.Prompts))
	for i, p := range result.Prompts {
		promptIDs[i] = p.ID
	}
	if want.Prompts != nil && !slices.Equal(want.Prompts, promptIDs) {
		result.AddError("final prompts: expected %v, got %v", want.Prompts, promptIDs)
	}

	listNames := make([]string, len(result.Lists))
	for i, l := range result.Lists {
		listNames[i] = l.Name
	}
	if want.Lists != nil && !slices.Equal(want.Lists, listNames) {
		result.AddError("final lists: expected %v, got %v", want.Lists, listNames)
	}

	if want.Notifications != nil {
		for i, got := range result.Notifications {
			if got != *want.Notifications {
				result.AddError("subscriber %d: expected %d notifications, got %d", i, *want.Notifications, got)
			}
		}
	}
}
