package sanity

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/programme-lv/aggregator/api"
	"github.com/programme-lv/aggregator/internal/diag"
	"github.com/programme-lv/aggregator/internal/task"
	"github.com/programme-lv/aggregator/internal/verdict"
)

const scoreTolerance = 1e-9

// StatementPresent checks that the statement file exists.
type StatementPresent struct{}

func (*StatementPresent) Name() string { return "StatementPresent" }

func (c *StatementPresent) PreHook(_ context.Context, t *task.Task, diags *diag.Channel) error {
	_, err := os.Stat(filepath.Join(t.Dir, "statement", "statement.md"))
	if errors.Is(err, fs.ErrNotExist) {
		diags.Warnf(c.Name(), "statement/statement.md does not exist")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat statement file: %w", err)
	}
	return nil
}

// SubtaskScoreSum checks that the subtask max scores sum to 100.
type SubtaskScoreSum struct{}

func (*SubtaskScoreSum) Name() string { return "SubtaskScoreSum" }

func (c *SubtaskScoreSum) PreHook(_ context.Context, t *task.Task, diags *diag.Channel) error {
	if total := t.MaxScore(); math.Abs(total-100) > scoreTolerance {
		diags.Warnf(c.Name(), "subtask scores sum to %g, expected 100", total)
	}
	return nil
}

// SolutionsPresent checks that the task declares at least one solution and
// that every declared solution file exists in the task directory.
type SolutionsPresent struct{}

func (*SolutionsPresent) Name() string { return "SolutionsPresent" }

func (c *SolutionsPresent) PreHook(_ context.Context, t *task.Task, diags *diag.Channel) error {
	if len(t.Solutions) == 0 {
		diags.Errorf(c.Name(), "task declares no solutions")
		return nil
	}
	for _, sol := range t.Solutions {
		_, err := os.Stat(filepath.Join(t.Dir, sol))
		if errors.Is(err, fs.ErrNotExist) {
			diags.Warnf(c.Name(), "solution %s does not exist", sol)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to stat solution %s: %w", sol, err)
		}
	}
	return nil
}

// CompilationOutcomes checks that every declared solution reached a terminal
// compilation status and reports the ones that failed to compile.
type CompilationOutcomes struct{}

func (*CompilationOutcomes) Name() string { return "CompilationOutcomes" }

func (c *CompilationOutcomes) PostHook(_ context.Context, t *task.Task, tree *verdict.Tree, diags *diag.Channel) error {
	for _, sol := range t.Solutions {
		r, ok := tree.CompilationOf(sol)
		if !ok || !r.Status.Terminal() {
			diags.Warnf(c.Name(), "compilation of %s never finished", sol)
			continue
		}
		if r.Status == api.CompilationFailed {
			diags.Warnf(c.Name(), "compilation of %s failed", sol)
		}
	}
	return nil
}

// ResolvedLeaves reports testcases left unresolved at shutdown and
// cross-checks every resolved solution's overall score against the sum of
// its subtask scores.
type ResolvedLeaves struct{}

func (*ResolvedLeaves) Name() string { return "ResolvedLeaves" }

func (c *ResolvedLeaves) PostHook(_ context.Context, t *task.Task, tree *verdict.Tree, diags *diag.Channel) error {
	for _, sol := range tree.Solutions() {
		unresolved := 0
		for _, st := range t.Subtasks {
			for _, tc := range st.Testcases {
				r, ok := tree.TestcaseOf(sol, st.ID, tc)
				if !ok || !r.Status.Terminal() {
					unresolved++
				}
			}
		}
		if unresolved > 0 {
			// A non-terminal leaf at shutdown means "unknown", not failure.
			diags.Warnf(c.Name(), "%d testcases of %s are still unresolved", unresolved, sol)
		}

		score, ok := tree.SolutionScore(sol)
		if !ok {
			continue
		}
		sum := 0.0
		for _, st := range t.Subtasks {
			stScore, ok := tree.SubtaskScore(sol, st.ID)
			if !ok {
				diags.Errorf(c.Name(), "%s has an overall score but subtask %d is unresolved", sol, st.ID)
				continue
			}
			sum += stScore
		}
		if math.Abs(score-sum) > scoreTolerance {
			diags.Errorf(c.Name(), "overall score of %s is %g but its subtask scores sum to %g", sol, score, sum)
		}
	}
	return nil
}
