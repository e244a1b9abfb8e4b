// Package verdict owns the mutable evaluation state of one run: the
// hierarchical result tree task → solution → subtask → testcase, plus the
// per-file compilation statuses. All mutation is funneled through the
// aggregator; every other component reads.
//
// Read accessors return an explicit "not yet known" second value instead of
// a default. A testcase that never produced an event and a testcase that
// scored zero are different answers.
package verdict

import (
	"sort"

	"github.com/programme-lv/aggregator/api"
	"github.com/programme-lv/aggregator/internal/task"
	"github.com/puzpuzpuz/xsync/v3"
)

// CompilationResult is the recorded state of compiling one source file.
type CompilationResult struct {
	Status api.CompilationStatus
	Meta   *api.ExecMeta
}

// TestcaseResult is the recorded state of one testcase of one solution.
type TestcaseResult struct {
	Status api.TestcaseStatus

	// PartialScore is the carried value of a partial verdict, in [0, 1].
	PartialScore float64
}

// Contribution returns the score contribution of the recorded verdict.
func (r TestcaseResult) Contribution() float64 {
	return r.Status.Contribution(r.PartialScore)
}

// SubtaskState is the evaluation state of one subtask of one solution.
type SubtaskState struct {
	score     *float64
	testcases map[int]TestcaseResult
}

// SolutionState is the evaluation state of one solution.
type SolutionState struct {
	score    *float64
	subtasks map[int]*SubtaskState
}

// Tree is the single owner of all mutable evaluation state.
// It has exactly one writer (the aggregator) and many readers.
type Tree struct {
	task *task.Task

	compilations *xsync.MapOf[string, CompilationResult]
	solutions    *xsync.MapOf[string, *SolutionState]
}

func NewTree(t *task.Task) *Tree {
	return &Tree{
		task:         t,
		compilations: xsync.NewMapOf[string, CompilationResult](),
		solutions:    xsync.NewMapOf[string, *SolutionState](),
	}
}

// Task returns the immutable definition the tree was built for.
func (t *Tree) Task() *task.Task { return t.task }

// SetCompilation records the compilation status of a source file,
// overwriting any earlier status. Aggregator-only.
func (t *Tree) SetCompilation(file string, r CompilationResult) {
	t.compilations.Store(file, r)
}

// CompilationOf returns the recorded compilation status of a file.
func (t *Tree) CompilationOf(file string) (CompilationResult, bool) {
	return t.compilations.Load(file)
}

// Compilations returns a snapshot of all recorded compilation statuses.
func (t *Tree) Compilations() map[string]CompilationResult {
	out := make(map[string]CompilationResult)
	t.compilations.Range(func(file string, r CompilationResult) bool {
		out[file] = r
		return true
	})
	return out
}

// solution returns the evaluation state of a solution, creating it on first
// use. Creation seeds every declared subtask and testcase as pending so that
// "all testcases terminal" is decidable against the task definition.
func (t *Tree) solution(path string) *SolutionState {
	state, _ := t.solutions.LoadOrCompute(path, func() *SolutionState {
		s := &SolutionState{subtasks: make(map[int]*SubtaskState)}
		for _, st := range t.task.Subtasks {
			sub := &SubtaskState{testcases: make(map[int]TestcaseResult, len(st.Testcases))}
			for _, tc := range st.Testcases {
				sub.testcases[tc] = TestcaseResult{Status: api.TestcasePending}
			}
			s.subtasks[st.ID] = sub
		}
		return s
	})
	return state
}

// SetTestcase records the state of one testcase. Aggregator-only; the
// aggregator validates the key against the task definition first.
func (t *Tree) SetTestcase(sol string, subtask, testcase int, r TestcaseResult) {
	t.solution(sol).subtasks[subtask].testcases[testcase] = r
}

// SetSubtaskScore records the derived score of a subtask. Aggregator-only.
func (t *Tree) SetSubtaskScore(sol string, subtask int, score float64) {
	t.solution(sol).subtasks[subtask].score = &score
}

// SetSolutionScore records the derived overall score of a solution.
// Aggregator-only.
func (t *Tree) SetSolutionScore(sol string, score float64) {
	t.solution(sol).score = &score
}

// Touch creates the evaluation state of a solution without recording
// anything. Aggregator-only.
func (t *Tree) Touch(sol string) {
	t.solution(sol)
}

// TestcaseOf returns the recorded state of one testcase.
func (t *Tree) TestcaseOf(sol string, subtask, testcase int) (TestcaseResult, bool) {
	state, ok := t.solutions.Load(sol)
	if !ok {
		return TestcaseResult{}, false
	}
	sub, ok := state.subtasks[subtask]
	if !ok {
		return TestcaseResult{}, false
	}
	r, ok := sub.testcases[testcase]
	return r, ok
}

// SubtaskTestcases returns a snapshot of the testcase states of one subtask.
func (t *Tree) SubtaskTestcases(sol string, subtask int) (map[int]TestcaseResult, bool) {
	state, ok := t.solutions.Load(sol)
	if !ok {
		return nil, false
	}
	sub, ok := state.subtasks[subtask]
	if !ok {
		return nil, false
	}
	out := make(map[int]TestcaseResult, len(sub.testcases))
	for id, r := range sub.testcases {
		out[id] = r
	}
	return out, true
}

// SubtaskScore returns the derived score of one subtask, if defined yet.
func (t *Tree) SubtaskScore(sol string, subtask int) (float64, bool) {
	state, ok := t.solutions.Load(sol)
	if !ok {
		return 0, false
	}
	sub, ok := state.subtasks[subtask]
	if !ok || sub.score == nil {
		return 0, false
	}
	return *sub.score, true
}

// SolutionScore returns the overall score of a solution. It stays undefined
// until every subtask of the solution is resolved.
func (t *Tree) SolutionScore(sol string) (float64, bool) {
	state, ok := t.solutions.Load(sol)
	if !ok || state.score == nil {
		return 0, false
	}
	return *state.score, true
}

// Solutions returns the paths of all solutions observed so far, sorted.
func (t *Tree) Solutions() []string {
	var out []string
	t.solutions.Range(func(path string, _ *SolutionState) bool {
		out = append(out, path)
		return true
	})
	sort.Strings(out)
	return out
}
