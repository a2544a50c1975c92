// Package taskmodel defines the domain model for the orchestrator: declarative
// plans, materialized tasks, and the status lifecycle that governs them.
//
// A PlanSpec / TaskSpec is an untagged sum type over Command, TaskGroup, and
// TaskList, and a Task's status is monotone once it reaches a terminal state.
//
// Design constraints:
//   - IDs are UUID v4 and never reused.
//   - Plans are versioned and never deleted; updates replace the spec and bump
//     the version.
//   - TaskSpec mirrors PlanSpec but holds child Task IDs instead of nested
//     specs, since materialization flattens the tree into the task store.
package taskmodel

import "github.com/google/uuid"

// ID is a UUID v4 identifier shared by plans and tasks.
type ID = uuid.UUID

// NewID generates a fresh random identifier.
//
// Collisions are treated as impossible: the store performs no dedup on insert.
func NewID() ID {
	return uuid.New()
}
