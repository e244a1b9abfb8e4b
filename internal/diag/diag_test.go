package diag_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/programme-lv/aggregator/internal/diag"
)

func TestEntriesKeepArrivalOrder(t *testing.T) {
	c := diag.New()
	c.Warnf("checkA", "first")
	c.Errorf("aggregator", "second")
	c.Warnf("checkB", "third")

	entries := c.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, "first", entries[0].Message)
	require.Equal(t, diag.SeverityWarning, entries[0].Severity)
	require.Equal(t, "second", entries[1].Message)
	require.Equal(t, diag.SeverityError, entries[1].Severity)
	require.Equal(t, "aggregator", entries[1].Source)
	require.Equal(t, "third", entries[2].Message)
}

func TestHasErrors(t *testing.T) {
	c := diag.New()
	require.False(t, c.HasErrors())
	c.Warnf("check", "just a warning")
	require.False(t, c.HasErrors())
	c.Errorf("check", "fatal finding")
	require.True(t, c.HasErrors())
}

func TestSnapshotIsDetached(t *testing.T) {
	c := diag.New()
	c.Warnf("check", "a")
	snap := c.Entries()
	c.Warnf("check", "b")
	require.Len(t, snap, 1)
	require.Len(t, c.Entries(), 2)
}

func TestConcurrentAppends(t *testing.T) {
	c := diag.New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Warnf("writer", "entry %d", i)
		}(i)
	}
	wg.Wait()

	entries := c.Entries()
	require.Len(t, entries, 20)
	seen := make(map[string]bool)
	for _, e := range entries {
		seen[e.Message] = true
	}
	for i := 0; i < 20; i++ {
		require.True(t, seen[fmt.Sprintf("entry %d", i)])
	}
}
