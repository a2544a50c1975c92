package store

import (
	"testing"

	"github.com/kestrelrun/kestrel/internal/taskmodel"
)

func TestInsertAndGetTask(t *testing.T) {
	s := New()
	id := taskmodel.NewID()
	record := NewTaskRecord(id, nil, taskmodel.TaskSpec{Args: []string{"true"}})
	s.InsertTask(record)

	got, ok := s.GetTask(id)
	if !ok || got != record {
		t.Fatalf("expected to retrieve inserted record")
	}
}

func TestGetTaskMissing(t *testing.T) {
	s := New()
	if _, ok := s.GetTask(taskmodel.NewID()); ok {
		t.Fatalf("expected miss for unknown ID")
	}
}

func TestFinishIsIdempotent(t *testing.T) {
	r := NewTaskRecord(taskmodel.NewID(), nil, taskmodel.TaskSpec{Args: []string{"true"}})
	r.Finish()
	r.Fail(taskmodel.ExitFailure(1))

	if r.Status != taskmodel.StatusSuccess {
		t.Fatalf("second settle call must be a no-op, got status %v", r.Status)
	}
}

func TestFinishedFiresExactlyOnce(t *testing.T) {
	r := NewTaskRecord(taskmodel.NewID(), nil, taskmodel.TaskSpec{Args: []string{"true"}})
	finished := r.Finished()

	r.Finish()
	// A second settle must not fire again (closing a closed channel panics).
	r.Finish()

	select {
	case <-finished:
	default:
		t.Fatalf("expected finished channel to be closed after Finish")
	}
}

func TestPlanUpdateIncrementsVersion(t *testing.T) {
	r := NewPlanRecord(taskmodel.NewID(), taskmodel.PlanSpec{Args: []string{"true"}})
	if r.Snapshot().Version != 0 {
		t.Fatalf("expected initial version 0")
	}

	updated := r.Update(taskmodel.PlanSpec{Args: []string{"false"}})
	if updated.Version != 1 {
		t.Fatalf("expected version 1 after update, got %d", updated.Version)
	}
}

func TestListTasksOrderedByID(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		s.InsertTask(NewTaskRecord(taskmodel.NewID(), nil, taskmodel.TaskSpec{Args: []string{"true"}}))
	}

	tasks := s.ListTasks()
	if len(tasks) != 5 {
		t.Fatalf("expected 5 tasks, got %d", len(tasks))
	}
	for i := 1; i < len(tasks); i++ {
		if tasks[i-1].ID.String() >= tasks[i].ID.String() {
			t.Fatalf("expected ascending ID order")
		}
	}
}
