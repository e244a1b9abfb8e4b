// Package task holds the immutable task definition the aggregator and the
// sanity checks run against. A task is loaded once, before any evaluation
// event is processed, and is never mutated afterwards.
package task

// Task is a contest task definition.
type Task struct {
	// Name identifies the task, e.g. "findsum".
	Name string

	// TimeLimit is the per-testcase CPU time limit in seconds, if any.
	TimeLimit *float64

	// MemoryLimit is the per-testcase memory limit in bytes, if any.
	MemoryLimit *int64

	// Subtasks are ordered by id; ids are dense starting from 0.
	Subtasks []Subtask

	// Solutions are the source files expected to be evaluated,
	// relative to the task directory.
	Solutions []string

	// Dir is the task directory the definition was loaded from.
	Dir string
}

// Subtask is a scored group of testcases sharing a scoring rule.
type Subtask struct {
	ID       int
	MaxScore float64

	// Testcases are the ids of the testcases of this subtask,
	// unique within the subtask.
	Testcases []int
}

// Subtask returns the subtask with the given id.
func (t *Task) Subtask(id int) (Subtask, bool) {
	if id < 0 || id >= len(t.Subtasks) {
		return Subtask{}, false
	}
	return t.Subtasks[id], true
}

// HasSolution reports whether path is one of the declared solutions.
func (t *Task) HasSolution(path string) bool {
	for _, s := range t.Solutions {
		if s == path {
			return true
		}
	}
	return false
}

// MaxScore is the maximum attainable score, the sum over subtask max scores.
func (t *Task) MaxScore() float64 {
	total := 0.0
	for _, st := range t.Subtasks {
		total += st.MaxScore
	}
	return total
}
