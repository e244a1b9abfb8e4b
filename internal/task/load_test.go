package task_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/programme-lv/aggregator/internal/task"
)

const validTaskToml = `
name = "findsum"
time_limit = 1.5
memory_limit = 268435456
solutions = ["sol.cpp", "slow.cpp"]

[[subtasks]]
id = 0
max_score = 40.0
testcases = [0, 1]

[[subtasks]]
id = 1
max_score = 60.0
testcases = [0, 1, 2]
`

func TestParseValidTask(t *testing.T) {
	tk, err := task.Parse([]byte(validTaskToml))
	require.NoError(t, err)

	require.Equal(t, "findsum", tk.Name)
	require.NotNil(t, tk.TimeLimit)
	require.InDelta(t, 1.5, *tk.TimeLimit, 1e-9)
	require.NotNil(t, tk.MemoryLimit)
	require.Equal(t, int64(268435456), *tk.MemoryLimit)
	require.Len(t, tk.Subtasks, 2)
	require.InDelta(t, 100.0, tk.MaxScore(), 1e-9)
	require.True(t, tk.HasSolution("slow.cpp"))
	require.False(t, tk.HasSolution("ghost.cpp"))

	st, ok := tk.Subtask(1)
	require.True(t, ok)
	require.Equal(t, []int{0, 1, 2}, st.Testcases)
	_, ok = tk.Subtask(2)
	require.False(t, ok)
}

func TestParseSortsSubtasksById(t *testing.T) {
	tk, err := task.Parse([]byte(`
name = "t"

[[subtasks]]
id = 1
max_score = 60.0
testcases = [0]

[[subtasks]]
id = 0
max_score = 40.0
testcases = [0]
`))
	require.NoError(t, err)
	require.Equal(t, 0, tk.Subtasks[0].ID)
	require.InDelta(t, 40.0, tk.Subtasks[0].MaxScore, 1e-9)
}

func TestParseRejectsSparseSubtaskIds(t *testing.T) {
	_, err := task.Parse([]byte(`
name = "t"

[[subtasks]]
id = 0
max_score = 40.0
testcases = [0]

[[subtasks]]
id = 2
max_score = 60.0
testcases = [0]
`))
	require.ErrorContains(t, err, "consecutive")
}

func TestParseRejectsDuplicateTestcases(t *testing.T) {
	_, err := task.Parse([]byte(`
name = "t"

[[subtasks]]
id = 0
max_score = 40.0
testcases = [0, 0]
`))
	require.ErrorContains(t, err, "twice")
}

func TestParseRejectsNegativeMaxScore(t *testing.T) {
	_, err := task.Parse([]byte(`
name = "t"

[[subtasks]]
id = 0
max_score = -1.0
testcases = [0]
`))
	require.ErrorContains(t, err, "negative max score")
}

func TestParseRejectsNonPositiveLimits(t *testing.T) {
	_, err := task.Parse([]byte("name = \"t\"\ntime_limit = 0.0\n"))
	require.ErrorContains(t, err, "time limit")

	_, err = task.Parse([]byte("name = \"t\"\nmemory_limit = -5\n"))
	require.ErrorContains(t, err, "memory limit")
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "task.toml"), []byte(validTaskToml), 0o644))

	tk, err := task.Load(dir)
	require.NoError(t, err)
	require.Equal(t, dir, tk.Dir)

	_, err = task.Load(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
