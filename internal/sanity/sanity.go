// Package sanity runs independent, named validators around a task's
// evaluation lifecycle. Pre-hooks inspect the static task definition before
// any event is processed; post-hooks additionally read the final result tree.
// A check's findings go to the diagnostics channel and never stop its peers;
// a returned error means the check itself could not run.
package sanity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/programme-lv/aggregator/internal/diag"
	"github.com/programme-lv/aggregator/internal/task"
	"github.com/programme-lv/aggregator/internal/verdict"
)

// Check is a named validator. A check must implement at least one of
// PreHooker and PostHooker to be registrable.
type Check interface {
	Name() string
}

// PreHooker runs before any evaluation event is processed.
// The returned error means the check could not validate the task at all
// (e.g. filesystem inaccessible); findings about the task itself belong on
// the diagnostics channel.
type PreHooker interface {
	Check
	PreHook(ctx context.Context, t *task.Task, diags *diag.Channel) error
}

// PostHooker runs after evaluation is judged complete. It may read the
// result tree but never mutates it.
type PostHooker interface {
	Check
	PostHook(ctx context.Context, t *task.Task, tree *verdict.Tree, diags *diag.Channel) error
}

// Registry holds the ordered list of registered checks.
type Registry struct {
	names  mapset.Set[string]
	checks []Check
}

func NewRegistry() *Registry {
	return &Registry{names: mapset.NewSet[string]()}
}

// Default returns a registry with all built-in checks registered.
func Default() *Registry {
	r := NewRegistry()
	for _, c := range []Check{
		&StatementPresent{},
		&SubtaskScoreSum{},
		&SolutionsPresent{},
		&CompilationOutcomes{},
		&ResolvedLeaves{},
	} {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a check. Registering the same name twice, or a check that
// implements neither hook, is a configuration error.
func (r *Registry) Register(c Check) error {
	_, pre := c.(PreHooker)
	_, post := c.(PostHooker)
	if !pre && !post {
		return fmt.Errorf("check %q implements neither a pre nor a post hook", c.Name())
	}
	if !r.names.Add(c.Name()) {
		return fmt.Errorf("check %q is already registered", c.Name())
	}
	r.checks = append(r.checks, c)
	return nil
}

// RunPre invokes every registered pre-hook. The checks are independent of
// each other and run concurrently; every hook runs even when a sibling
// fails, and all failures are collected. A non-nil result means evaluation
// must not start.
func (r *Registry) RunPre(ctx context.Context, t *task.Task, diags *diag.Channel) error {
	return r.run(func(c Check) func() error {
		pre, ok := c.(PreHooker)
		if !ok {
			return nil
		}
		return func() error {
			if err := pre.PreHook(ctx, t, diags); err != nil {
				return fmt.Errorf("pre-hook of %s failed: %w", c.Name(), err)
			}
			return nil
		}
	})
}

// RunPost invokes every registered post-hook. The caller must guarantee that
// event application has finished before calling; the tree is read-only from
// here on. Failures are collected and reported but never invalidate
// already-recorded scores.
func (r *Registry) RunPost(ctx context.Context, t *task.Task, tree *verdict.Tree, diags *diag.Channel) error {
	return r.run(func(c Check) func() error {
		post, ok := c.(PostHooker)
		if !ok {
			return nil
		}
		return func() error {
			if err := post.PostHook(ctx, t, tree, diags); err != nil {
				return fmt.Errorf("post-hook of %s failed: %w", c.Name(), err)
			}
			return nil
		}
	})
}

func (r *Registry) run(hook func(Check) func() error) error {
	var mu sync.Mutex
	var failures []error
	g := new(errgroup.Group)
	for _, c := range r.checks {
		f := hook(c)
		if f == nil {
			continue
		}
		g.Go(func() error {
			// Failures are collected instead of propagated so one check
			// cannot cancel its siblings.
			if err := f(); err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(failures...)
}
