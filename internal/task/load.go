package task

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// Load reads and validates the task definition from dir/task.toml.
func Load(dir string) (*Task, error) {
	data, err := os.ReadFile(filepath.Join(dir, "task.toml"))
	if err != nil {
		return nil, fmt.Errorf("failed to read task definition: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, err
	}
	t.Dir = dir
	return t, nil
}

// Parse decodes a TOML task definition and validates its structure.
func Parse(data []byte) (*Task, error) {
	x := struct {
		Name        string   `toml:"name"`
		TimeLimit   *float64 `toml:"time_limit"`
		MemoryLimit *int64   `toml:"memory_limit"`
		Solutions   []string `toml:"solutions"`
		Subtasks    []struct {
			ID        int     `toml:"id"`
			MaxScore  float64 `toml:"max_score"`
			Testcases []int   `toml:"testcases"`
		} `toml:"subtasks"`
	}{}

	if err := toml.Unmarshal(data, &x); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task definition: %w", err)
	}

	if x.Name == "" {
		return nil, fmt.Errorf("task has no name")
	}
	if x.TimeLimit != nil && *x.TimeLimit <= 0 {
		return nil, fmt.Errorf("time limit must be positive, got %f", *x.TimeLimit)
	}
	if x.MemoryLimit != nil && *x.MemoryLimit <= 0 {
		return nil, fmt.Errorf("memory limit must be positive, got %d", *x.MemoryLimit)
	}

	sort.Slice(x.Subtasks, func(i, j int) bool {
		return x.Subtasks[i].ID < x.Subtasks[j].ID
	})

	subtasks := make([]Subtask, 0, len(x.Subtasks))
	for i, v := range x.Subtasks {
		if v.ID != i {
			return nil, fmt.Errorf("subtask ids must be consecutive starting from 0, got %d at position %d", v.ID, i)
		}
		if v.MaxScore < 0 {
			return nil, fmt.Errorf("subtask %d has negative max score %f", v.ID, v.MaxScore)
		}
		if len(v.Testcases) == 0 {
			return nil, fmt.Errorf("subtask %d has no testcases", v.ID)
		}
		seen := make(map[int]bool, len(v.Testcases))
		for _, tc := range v.Testcases {
			if seen[tc] {
				return nil, fmt.Errorf("subtask %d lists testcase %d twice", v.ID, tc)
			}
			seen[tc] = true
		}
		subtasks = append(subtasks, Subtask{
			ID:        v.ID,
			MaxScore:  v.MaxScore,
			Testcases: v.Testcases,
		})
	}

	return &Task{
		Name:        x.Name,
		TimeLimit:   x.TimeLimit,
		MemoryLimit: x.MemoryLimit,
		Solutions:   x.Solutions,
		Subtasks:    subtasks,
	}, nil
}
