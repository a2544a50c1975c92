// Package scheduler drives a materialized task from Pending through to a
// terminal status: start is a synchronous, single-shot admission step; run is
// the recursive dispatcher spawned in the background; finish/fail are the
// only two terminal transitions, both idempotent; wait blocks on a child's
// finished signal without holding any lock.
package scheduler

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/kestrelrun/kestrel/internal/process"
	"github.com/kestrelrun/kestrel/internal/store"
	"github.com/kestrelrun/kestrel/internal/taskmodel"
)

// Scheduler holds the shared store and logger every dispatch needs. It keeps
// no state of its own beyond that: all mutable task state lives in the store.
type Scheduler struct {
	store  *store.Store
	logger *zap.Logger
}

// New creates a Scheduler over s. logger may be nil, in which case dispatch
// proceeds silently.
func New(s *store.Store, logger *zap.Logger) *Scheduler {
	return &Scheduler{store: s, logger: logger}
}

// Start admits a Pending task, transitioning it synchronously to Running
// (Command) or Waiting (TaskGroup/TaskList), then spawns run in the
// background and returns immediately. Double-start is rejected with
// InvalidTaskState, since the transition out of Pending happens before
// run is spawned and is itself guarded by the record's lock.
//
// ctx governs only this synchronous admission step. The background run is
// deliberately detached from it (context.Background()), not derived from
// it: under a real net/http server, an HTTP handler's request context is
// canceled the instant ServeHTTP returns for that request, which happens
// microseconds after Start spawns the goroutine — a task started over
// StartTask would be killed almost immediately if run inherited it.
func (s *Scheduler) Start(ctx context.Context, id taskmodel.ID) (taskmodel.TaskState, error) {
	record, ok := s.store.GetTask(id)
	if !ok {
		return taskmodel.TaskState{}, taskmodel.TaskNotFound(id)
	}

	record.Mu.Lock()
	if record.Status != taskmodel.StatusPending {
		record.Mu.Unlock()
		return taskmodel.TaskState{}, taskmodel.InvalidTaskState(id)
	}
	switch record.Spec.Variant() {
	case taskmodel.VariantCommand:
		record.Status = taskmodel.StatusRunning
	default:
		record.Status = taskmodel.StatusWaiting
	}
	state := taskmodel.TaskState{ID: record.ID, Spec: record.Spec, Status: record.Status}
	record.Mu.Unlock()

	go s.run(context.Background(), id)

	return state, nil
}

// run dispatches a newly-admitted task by its spec variant. It never
// returns a value: the outcome is always recorded on the store via
// finish/fail, fire-and-forget. ctx is always context.Background(), passed
// down from Start's detached goroutine spawn — see the note on Start.
func (s *Scheduler) run(ctx context.Context, id taskmodel.ID) {
	record, ok := s.store.GetTask(id)
	if !ok {
		return
	}

	if s.logger != nil {
		s.logger.Debug("task running", zap.Stringer("task_id", id), zap.Int("variant", int(record.Spec.Variant())))
	}

	switch record.Spec.Variant() {
	case taskmodel.VariantCommand:
		s.runCommand(ctx, record)
	case taskmodel.VariantTaskGroup:
		s.runGroup(ctx, record)
	case taskmodel.VariantTaskList:
		s.runList(ctx, record)
	}
}

func (s *Scheduler) runCommand(ctx context.Context, record *store.TaskRecord) {
	proc := process.New()
	record.Mu.Lock()
	record.Running = proc
	args := record.Spec.Args
	record.Mu.Unlock()

	err := proc.Run(ctx, args, s.logger)
	switch {
	case err != nil:
		s.logDone(record.ID, false, err)
		record.Fail(err)
	default:
		if code, exited := proc.ExitCode(); exited && code != 0 {
			exitErr := taskmodel.ExitFailure(code)
			s.logDone(record.ID, false, exitErr)
			record.Fail(exitErr)
			return
		}
		s.logDone(record.ID, true, nil)
		record.Finish()
	}
}

// logDone emits the terminal-transition log line for a task. Info on
// success, Warn on failure; a nil logger is a silent no-op.
func (s *Scheduler) logDone(id taskmodel.ID, success bool, err error) {
	if s.logger == nil {
		return
	}
	if success {
		s.logger.Info("task finished", zap.Stringer("task_id", id))
		return
	}
	s.logger.Warn("task failed", zap.Stringer("task_id", id), zap.Error(err))
}

// runGroup starts every child concurrently, regardless of earlier failures,
// and only settles the parent once every child has reached a terminal
// status: a failing child does not short-circuit its siblings.
func (s *Scheduler) runGroup(ctx context.Context, record *store.TaskRecord) {
	children := record.Spec.Parallel

	var wg sync.WaitGroup
	failed := make([]bool, len(children))
	wg.Add(len(children))
	for i, childID := range children {
		go func(i int, childID taskmodel.ID) {
			defer wg.Done()
			if err := s.startAndWait(ctx, childID); err != nil {
				failed[i] = true
			}
		}(i, childID)
	}
	wg.Wait()

	for i, f := range failed {
		if f {
			cause := taskmodel.TaskFailed(children[i])
			s.logDone(record.ID, false, cause)
			record.Fail(cause)
			return
		}
	}
	s.logDone(record.ID, true, nil)
	record.Finish()
}

// runList starts each child in order, waiting for it to settle before
// starting the next. The first failure stops the list: later children are
// never started and remain Pending.
func (s *Scheduler) runList(ctx context.Context, record *store.TaskRecord) {
	for _, childID := range record.Spec.Serial {
		if err := s.startAndWait(ctx, childID); err != nil {
			cause := taskmodel.TaskFailed(childID)
			s.logDone(record.ID, false, cause)
			record.Fail(cause)
			return
		}
	}
	s.logDone(record.ID, true, nil)
	record.Finish()
}

// startAndWait starts a child task then blocks until it settles, returning
// its terminal error (nil on Success).
func (s *Scheduler) startAndWait(ctx context.Context, childID taskmodel.ID) error {
	if _, err := s.Start(ctx, childID); err != nil {
		return err
	}
	return s.Wait(ctx, childID)
}

// Wait blocks until id's task settles, returning nil on Success or the
// recorded error on Failure. The child's own lock is never held while
// awaiting: the finished channel is read without taking the lock, and the
// lock is taken only afterwards to read the terminal status.
func (s *Scheduler) Wait(ctx context.Context, id taskmodel.ID) error {
	record, ok := s.store.GetTask(id)
	if !ok {
		return taskmodel.TaskNotFound(id)
	}

	finished := record.Finished()
	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}

	record.Mu.Lock()
	defer record.Mu.Unlock()
	switch record.Status {
	case taskmodel.StatusSuccess:
		return nil
	case taskmodel.StatusFailure:
		return record.Err
	default:
		return taskmodel.TaskFailed(id)
	}
}
