// Package store holds the orchestrator's in-memory state: every materialized
// task and every plan, keyed by ID. Mutations go through a single Store lock
// for the map itself, then each record's own lock for its mutable fields —
// the store lock is never held across a record's own lock acquisition or any
// blocking wait: lock, mutate, release, never await while holding the lock.
package store

import (
	"sort"
	"sync"

	"github.com/kestrelrun/kestrel/internal/process"
	"github.com/kestrelrun/kestrel/internal/taskmodel"
)

// TaskRecord is the engine-internal, mutable superset of taskmodel.Task: it
// adds the fields that never cross the wire (running process handle, the
// finished broadcast, the stored error).
//
// Every field below Mu is guarded by Mu. The ID, PlanRef and original Spec
// never change after insertion and may be read without the lock.
type TaskRecord struct {
	ID   taskmodel.ID
	Plan *taskmodel.PlanRef
	Spec taskmodel.TaskSpec

	Mu       sync.Mutex
	Status   taskmodel.TaskStatus
	Running  *process.Process
	Err      error
	finished *oneShot
}

// NewTaskRecord creates a record in Pending status with no attached process.
func NewTaskRecord(id taskmodel.ID, plan *taskmodel.PlanRef, spec taskmodel.TaskSpec) *TaskRecord {
	return &TaskRecord{
		ID:       id,
		Plan:     plan,
		Spec:     spec,
		Status:   taskmodel.StatusPending,
		finished: newOneShot(),
	}
}

// Snapshot returns the wire-visible view of the record under its lock.
func (r *TaskRecord) Snapshot() taskmodel.Task {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return taskmodel.Task{ID: r.ID, Plan: r.Plan, Spec: r.Spec, Status: r.Status}
}

// Finished returns the channel for the record's one-shot completion edge.
// The channel never changes, so it may be read with or without the record's
// lock; callers must not hold the record's lock while awaiting it, since
// settle takes that lock before firing.
func (r *TaskRecord) Finished() <-chan struct{} {
	return r.finished.wait()
}

// settle moves the record into a terminal status exactly once. A second call
// (from a racing finish/fail) is a silent no-op.
func (r *TaskRecord) settle(status taskmodel.TaskStatus, err error) {
	r.Mu.Lock()
	if r.Status.IsTerminal() {
		r.Mu.Unlock()
		return
	}
	r.Status = status
	r.Err = err
	r.Mu.Unlock()
	r.finished.fire()
}

// Finish records a Success terminal status.
func (r *TaskRecord) Finish() { r.settle(taskmodel.StatusSuccess, nil) }

// Fail records a Failure terminal status with its cause.
func (r *TaskRecord) Fail(err error) { r.settle(taskmodel.StatusFailure, err) }

// PlanRecord is the versioned, mutable plan entry. Update replaces the spec
// and increments the version; earlier specs are not kept. Plans are never
// removed from the store.
type PlanRecord struct {
	ID taskmodel.ID

	mu      sync.Mutex
	spec    taskmodel.PlanSpec
	version uint64
}

// NewPlanRecord creates a plan record at version 0.
func NewPlanRecord(id taskmodel.ID, spec taskmodel.PlanSpec) *PlanRecord {
	return &PlanRecord{ID: id, spec: spec}
}

// Snapshot returns the current Plan view under the record's lock.
func (r *PlanRecord) Snapshot() taskmodel.Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return taskmodel.Plan{ID: r.ID, Spec: r.spec, Version: r.version}
}

// Update replaces the plan's spec and increments its version.
func (r *PlanRecord) Update(spec taskmodel.PlanSpec) taskmodel.Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spec = spec
	r.version++
	return taskmodel.Plan{ID: r.ID, Spec: r.spec, Version: r.version}
}

// Store is the concurrent-safe TaskId -> *TaskRecord and PlanId -> *PlanRecord
// mapping. UUID v4 collisions are treated as impossible, so Insert never
// fails and there is no compare-and-swap on the map itself.
type Store struct {
	mu    sync.Mutex
	tasks map[taskmodel.ID]*TaskRecord
	plans map[taskmodel.ID]*PlanRecord
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		tasks: make(map[taskmodel.ID]*TaskRecord),
		plans: make(map[taskmodel.ID]*PlanRecord),
	}
}

// InsertTask registers a new task record. The store lock is held only for
// the map write; the record's own lock is untouched here.
func (s *Store) InsertTask(r *TaskRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[r.ID] = r
}

// GetTask returns the record for id, or (nil, false) if unknown.
func (s *Store) GetTask(id taskmodel.ID) (*TaskRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.tasks[id]
	return r, ok
}

// ListTasks returns a snapshot of every task, ordered by ID for a
// deterministic response shape.
func (s *Store) ListTasks() []taskmodel.Task {
	s.mu.Lock()
	records := make([]*TaskRecord, 0, len(s.tasks))
	for _, r := range s.tasks {
		records = append(records, r)
	}
	s.mu.Unlock()

	sort.Slice(records, func(i, j int) bool { return records[i].ID.String() < records[j].ID.String() })
	out := make([]taskmodel.Task, len(records))
	for i, r := range records {
		out[i] = r.Snapshot()
	}
	return out
}

// InsertPlan registers a brand-new plan at version 0.
func (s *Store) InsertPlan(r *PlanRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[r.ID] = r
}

// GetPlan returns the record for id, or (nil, false) if unknown.
func (s *Store) GetPlan(id taskmodel.ID) (*PlanRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.plans[id]
	return r, ok
}

// ListPlans returns a snapshot of every plan, ordered by ID.
func (s *Store) ListPlans() []taskmodel.Plan {
	s.mu.Lock()
	records := make([]*PlanRecord, 0, len(s.plans))
	for _, r := range s.plans {
		records = append(records, r)
	}
	s.mu.Unlock()

	sort.Slice(records, func(i, j int) bool { return records[i].ID.String() < records[j].ID.String() })
	out := make([]taskmodel.Plan, len(records))
	for i, r := range records {
		out[i] = r.Snapshot()
	}
	return out
}
