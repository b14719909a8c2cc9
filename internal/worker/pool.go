// Package worker is the parallel multi-module compilation pool of spec
// §5: "a worker pool may process independent modules in parallel; the
// compilation graph edge `M depends on N` forbids scheduling M's
// type-check before N's exports are registered." Grounded on the
// errgroup.WithContext/eg.Go/eg.Wait idiom used across the retrieval
// pack's concurrent fan-out code (e.g. theRebelliousNerd-codenerd's
// intelligence_gatherer.go), with a dependency-respecting scheduler
// layered on top since errgroup alone has no notion of task ordering.
package worker

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Task is one module's unit of work: its id and the ids of modules it
// depends on (must finish first, per the registry's CheckOrder edges).
type Task[ID comparable] struct {
	ID      ID
	Depends []ID
}

// Pool runs a dependency-respecting set of tasks with bounded
// concurrency, so independent modules process in parallel while a
// module never starts before every dependency it names has completed.
//
// Concurrency is enforced with a semaphore around the call to fn rather
// than errgroup.Group.SetLimit, because the scheduler launches the next
// wave of goroutines from inside a finishing task's goroutine (after it
// releases the scheduling mutex) while that goroutine still holds its
// slot — SetLimit's Go would block there until a slot frees, and with
// every slot holder blocked the same way the pool would deadlock the
// first time concurrency is actually saturated.
type Pool[ID comparable] struct {
	concurrency int
}

// New creates a Pool that runs at most concurrency tasks at once. A
// concurrency of 0 or less means unbounded.
func New[ID comparable](concurrency int) *Pool[ID] {
	return &Pool[ID]{concurrency: concurrency}
}

// Run executes fn for every task, respecting dependency order, and
// returns the first error encountered.
func (p *Pool[ID]) Run(ctx context.Context, tasks []Task[ID], fn func(ctx context.Context, id ID) error) error {
	remaining := make(map[ID]int, len(tasks))
	dependents := make(map[ID][]ID, len(tasks))

	for _, t := range tasks {
		remaining[t.ID] = len(t.Depends)
		for _, dep := range t.Depends {
			dependents[dep] = append(dependents[dep], t.ID)
		}
	}

	var sem chan struct{}
	if p.concurrency > 0 {
		sem = make(chan struct{}, p.concurrency)
	}

	var mu sync.Mutex
	scheduled := make(map[ID]bool, len(tasks))
	eg, egCtx := errgroup.WithContext(ctx)

	var schedule func(ready []ID)
	schedule = func(ready []ID) {
		for _, id := range ready {
			id := id
			mu.Lock()
			scheduled[id] = true
			mu.Unlock()
			log.Debugf("worker: scheduling task %v", id)

			eg.Go(func() error {
				if sem != nil {
					select {
					case sem <- struct{}{}:
					case <-egCtx.Done():
						return egCtx.Err()
					}
					defer func() { <-sem }()
				}

				if err := fn(egCtx, id); err != nil {
					return fmt.Errorf("task %v: %w", id, err)
				}
				log.Debugf("worker: task completed %v", id)

				mu.Lock()
				var newlyReady []ID
				for _, dep := range dependents[id] {
					remaining[dep]--
					if remaining[dep] == 0 {
						newlyReady = append(newlyReady, dep)
					}
				}
				mu.Unlock()
				schedule(newlyReady)
				return nil
			})
		}
	}

	var initial []ID
	for id, n := range remaining {
		if n == 0 {
			initial = append(initial, id)
		}
	}
	schedule(initial)

	if err := eg.Wait(); err != nil {
		return err
	}

	if len(scheduled) != len(tasks) {
		return fmt.Errorf("worker: dependency cycle prevented %d of %d tasks from scheduling", len(tasks)-len(scheduled), len(tasks))
	}
	log.Infof("worker: %d tasks completed", len(scheduled))
	return nil
}
