// Package aggregator folds the evaluation event stream into the result tree.
// It is driven by a single consumer applying one event at a time; events from
// independent solutions and testcases may interleave freely, but within one
// testcase's lifecycle they must arrive in causal order.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/programme-lv/aggregator/api"
	"github.com/programme-lv/aggregator/internal/diag"
	"github.com/programme-lv/aggregator/internal/task"
	"github.com/programme-lv/aggregator/internal/verdict"
)

// ErrProtocol marks an event that contradicts the aggregator's state-machine
// invariants. It indicates a bug in the upstream producer and aborts the
// evaluation run; it is never swallowed.
var ErrProtocol = errors.New("event stream protocol violation")

const diagSource = "aggregator"

// Aggregator applies evaluation events to the result tree and derives
// subtask and solution scores.
type Aggregator struct {
	task  *task.Task
	tree  *verdict.Tree
	diags *diag.Channel
}

func New(t *task.Task, diags *diag.Channel) *Aggregator {
	return &Aggregator{
		task:  t,
		tree:  verdict.NewTree(t),
		diags: diags,
	}
}

// Tree returns the result tree for querying. Callers only read.
func (a *Aggregator) Tree() *verdict.Tree { return a.tree }

// Apply folds one event into the result tree. It returns nil for every
// well-formed event; a non-nil error wraps ErrProtocol and means the run
// must be aborted.
func (a *Aggregator) Apply(ev api.Event) error {
	switch ev := ev.(type) {
	case api.CompilationStatusEvent:
		return a.applyCompilation(ev)
	case api.TestcaseStatusEvent:
		return a.applyTestcase(ev)
	case api.WarningEvent:
		a.diags.Warnf("producer", "%s", ev.Message)
		return nil
	}
	return a.violation("unknown event type %T", ev)
}

// Compilation statuses are last-write-wins: a late running event overwrites
// an earlier failed one. That regression looks like an upstream ordering bug
// rather than intended semantics, so it is recorded verbatim but surfaced as
// a warning.
func (a *Aggregator) applyCompilation(ev api.CompilationStatusEvent) error {
	if !ev.Status.Valid() {
		return a.violation("unknown compilation status %q for %s", ev.Status, ev.File)
	}
	if prev, ok := a.tree.CompilationOf(ev.File); ok {
		if prev.Status.Terminal() && !ev.Status.Terminal() {
			a.diags.Warnf(diagSource,
				"compilation status of %s regressed from %s to %s",
				ev.File, prev.Status, ev.Status)
		}
	}
	a.tree.SetCompilation(ev.File, verdict.CompilationResult{
		Status: ev.Status,
		Meta:   ev.Meta,
	})
	return nil
}

func (a *Aggregator) applyTestcase(ev api.TestcaseStatusEvent) error {
	if !a.task.HasSolution(ev.Solution) {
		return a.violation("testcase status for unknown solution %q", ev.Solution)
	}
	st, ok := a.task.Subtask(ev.Subtask)
	if !ok {
		return a.violation("testcase status for unknown subtask %d", ev.Subtask)
	}
	if !containsTestcase(st, ev.Testcase) {
		return a.violation("testcase status for unknown testcase %d of subtask %d",
			ev.Testcase, ev.Subtask)
	}
	if !ev.Status.Valid() {
		return a.violation("unknown testcase status %q", ev.Status)
	}

	partial := 0.0
	if ev.Status == api.TestcasePartial {
		if ev.Score == nil {
			return a.violation("partial status without a score for testcase %d of subtask %d of %s",
				ev.Testcase, ev.Subtask, ev.Solution)
		}
		if *ev.Score < 0 || *ev.Score > 1 {
			return a.violation("partial score %f out of [0,1] for testcase %d of subtask %d of %s",
				*ev.Score, ev.Testcase, ev.Subtask, ev.Solution)
		}
		partial = *ev.Score
	}

	a.tree.Touch(ev.Solution)
	prev, _ := a.tree.TestcaseOf(ev.Solution, ev.Subtask, ev.Testcase)
	if prev.Status.Terminal() {
		return a.violation("testcase %d of subtask %d of %s is already %s, got %s",
			ev.Testcase, ev.Subtask, ev.Solution, prev.Status, ev.Status)
	}
	if stage(ev.Status) < stage(prev.Status) {
		return a.violation("testcase %d of subtask %d of %s went back from %s to %s",
			ev.Testcase, ev.Subtask, ev.Solution, prev.Status, ev.Status)
	}

	a.tree.SetTestcase(ev.Solution, ev.Subtask, ev.Testcase, verdict.TestcaseResult{
		Status:       ev.Status,
		PartialScore: partial,
	})

	if ev.Status.Terminal() {
		a.deriveScores(ev.Solution, st)
	}
	return nil
}

// deriveScores resolves the subtask's score the instant its last testcase
// turns terminal (worst testcase gates the subtask), then the solution's
// overall score once every subtask is resolved.
func (a *Aggregator) deriveScores(sol string, st task.Subtask) {
	results, ok := a.tree.SubtaskTestcases(sol, st.ID)
	if !ok {
		return
	}
	minContribution := 1.0
	for _, id := range st.Testcases {
		r, ok := results[id]
		if !ok || !r.Status.Terminal() {
			return
		}
		if c := r.Contribution(); c < minContribution {
			minContribution = c
		}
	}
	a.tree.SetSubtaskScore(sol, st.ID, st.MaxScore*minContribution)

	total := 0.0
	for _, sub := range a.task.Subtasks {
		score, ok := a.tree.SubtaskScore(sol, sub.ID)
		if !ok {
			return
		}
		total += score
	}
	a.tree.SetSolutionScore(sol, total)
}

// Complete reports whether every testcase of every observed solution has
// reached a terminal status.
func (a *Aggregator) Complete() bool {
	for _, sol := range a.tree.Solutions() {
		for _, st := range a.task.Subtasks {
			for _, tc := range st.Testcases {
				r, ok := a.tree.TestcaseOf(sol, st.ID, tc)
				if !ok || !r.Status.Terminal() {
					return false
				}
			}
		}
	}
	return true
}

func (a *Aggregator) violation(format string, args ...any) error {
	a.diags.Errorf(diagSource, format, args...)
	return fmt.Errorf("%w: %s", ErrProtocol, fmt.Sprintf(format, args...))
}

func containsTestcase(st task.Subtask, id int) bool {
	for _, tc := range st.Testcases {
		if tc == id {
			return true
		}
	}
	return false
}

// stage orders the testcase lifecycle: pending, then running, then terminal.
func stage(s api.TestcaseStatus) int {
	switch s {
	case api.TestcasePending:
		return 0
	case api.TestcaseRunning:
		return 1
	}
	return 2
}

// EventSource yields evaluation events in arrival order and returns io.EOF
// when the stream ends.
type EventSource interface {
	Next(ctx context.Context) (api.Event, error)
}

// Drain applies events from src until the stream ends, the context is
// cancelled, or an event violates the protocol. An early-terminating source
// leaves the tree in a legitimately partial state; non-terminal leaves at
// shutdown mean "unknown", never failure.
func (a *Aggregator) Drain(ctx context.Context, src EventSource) error {
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event stream: %w", err)
		}
		if err := a.Apply(ev); err != nil {
			return err
		}
	}
}
