// Package report renders the final result tree and the diagnostics log to a
// terminal. It only consumes the tree's read accessors; an unresolved value
// is printed as "?", never as a zero.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/programme-lv/aggregator/api"
	"github.com/programme-lv/aggregator/internal/diag"
	"github.com/programme-lv/aggregator/internal/task"
	"github.com/programme-lv/aggregator/internal/verdict"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	bold   = color.New(color.Bold)
)

func Render(w io.Writer, t *task.Task, tree *verdict.Tree, diags *diag.Channel) {
	bold.Fprintf(w, "== Task %s ==\n", t.Name)
	if t.TimeLimit != nil {
		fmt.Fprintf(w, "time limit: %gs\n", *t.TimeLimit)
	}
	if t.MemoryLimit != nil {
		fmt.Fprintf(w, "memory limit: %dB\n", *t.MemoryLimit)
	}
	fmt.Fprintf(w, "max score: %g\n", t.MaxScore())

	bold.Fprintln(w, "-- Compilations --")
	compilations := tree.Compilations()
	files := make([]string, 0, len(compilations))
	for file := range compilations {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		r := compilations[file]
		fmt.Fprintf(w, "%s: %s\n", file, colorCompilation(r.Status))
		if r.Meta != nil && r.Meta.Stderr != nil && *r.Meta.Stderr != "" {
			fmt.Fprintln(w, trimStrToRect(*r.Meta.Stderr, api.MaxOutputHeight, api.MaxOutputWidth))
		}
	}

	bold.Fprintln(w, "-- Evaluations --")
	for _, sol := range tree.Solutions() {
		fmt.Fprintf(w, "%s: %s\n", sol, scoreOrUnknown(tree.SolutionScore(sol)))
		for _, st := range t.Subtasks {
			fmt.Fprintf(w, "  subtask %d [max %g]: %s  ", st.ID, st.MaxScore,
				scoreOrUnknown(tree.SubtaskScore(sol, st.ID)))
			for _, tc := range st.Testcases {
				r, ok := tree.TestcaseOf(sol, st.ID, tc)
				if !ok {
					fmt.Fprint(w, "?")
					continue
				}
				fmt.Fprint(w, glyph(r))
			}
			fmt.Fprintln(w)
		}
	}

	entries := diags.Entries()
	if len(entries) > 0 {
		bold.Fprintln(w, "-- Diagnostics --")
		for _, e := range entries {
			switch e.Severity {
			case diag.SeverityError:
				red.Fprintf(w, "error [%s]: %s\n", e.Source, e.Message)
			default:
				yellow.Fprintf(w, "warning [%s]: %s\n", e.Source, e.Message)
			}
		}
	}
}

func scoreOrUnknown(score float64, ok bool) string {
	if !ok {
		return "?"
	}
	return fmt.Sprintf("%g", score)
}

func colorCompilation(s api.CompilationStatus) string {
	switch s {
	case api.CompilationDone:
		return green.Sprint(s)
	case api.CompilationFailed:
		return red.Sprint(s)
	default:
		return string(s)
	}
}

func glyph(r verdict.TestcaseResult) string {
	switch r.Status {
	case api.TestcaseAccepted:
		return green.Sprint("A")
	case api.TestcaseWrongAnswer:
		return red.Sprint("W")
	case api.TestcasePartial:
		return yellow.Sprint("P")
	case api.TestcaseTimeLimitExceeded:
		return red.Sprint("T")
	case api.TestcaseMemoryLimitExceeded:
		return red.Sprint("M")
	case api.TestcaseRuntimeError:
		return red.Sprint("R")
	case api.TestcaseSkipped:
		return "S"
	case api.TestcaseInternalError:
		return red.Sprint("I")
	default:
		return "."
	}
}
