// Package materialize converts a declarative taskmodel.PlanSpec tree into a
// set of registered taskmodel tasks via a post-order walk that registers
// children before their parent (leaves first, root last) so a parent task is
// never visible in the store before every child it names already is.
package materialize

import (
	"github.com/kestrelrun/kestrel/internal/store"
	"github.com/kestrelrun/kestrel/internal/taskmodel"
)

// Plan recursively materializes spec against planRef (nil for tasks created
// directly, not via a plan) and registers every task it creates — the root
// last — in s. It returns the root task.
func Plan(s *store.Store, planRef *taskmodel.PlanRef, spec taskmodel.PlanSpec) taskmodel.Task {
	switch spec.Variant() {
	case taskmodel.VariantTaskGroup:
		children := make([]taskmodel.ID, len(spec.Parallel))
		for i, child := range spec.Parallel {
			children[i] = Plan(s, planRef, child).ID
		}
		return register(s, planRef, taskmodel.TaskSpec{Parallel: children})

	case taskmodel.VariantTaskList:
		children := make([]taskmodel.ID, len(spec.Serial))
		for i, child := range spec.Serial {
			children[i] = Plan(s, planRef, child).ID
		}
		return register(s, planRef, taskmodel.TaskSpec{Serial: children})

	default: // VariantCommand, including the zero-arg edge case
		return register(s, planRef, taskmodel.TaskSpec{Args: spec.Args})
	}
}

func register(s *store.Store, planRef *taskmodel.PlanRef, spec taskmodel.TaskSpec) taskmodel.Task {
	id := taskmodel.NewID()
	record := store.NewTaskRecord(id, planRef, spec)
	s.InsertTask(record)
	return record.Snapshot()
}
