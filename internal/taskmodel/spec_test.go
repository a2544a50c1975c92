package taskmodel

import (
	"encoding/json"
	"testing"
)

func TestPlanSpecRoundTrip_Command(t *testing.T) {
	in := PlanSpec{Args: []string{"echo", "hi"}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(data); got != `{"args":["echo","hi"]}` {
		t.Fatalf("unexpected wire shape: %s", got)
	}

	var out PlanSpec
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Variant() != VariantCommand || len(out.Args) != 2 {
		t.Fatalf("unexpected round trip: %+v", out)
	}
}

func TestPlanSpecRoundTrip_EmptyParallel(t *testing.T) {
	in := PlanSpec{Parallel: []PlanSpec{}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(data); got != `{"parallel":[]}` {
		t.Fatalf("empty TaskGroup did not round trip its key: %s", got)
	}

	var out PlanSpec
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Variant() != VariantTaskGroup {
		t.Fatalf("expected TaskGroup variant for empty parallel, got %v", out.Variant())
	}
	if out.Parallel == nil || len(out.Parallel) != 0 {
		t.Fatalf("expected non-nil empty Parallel, got %#v", out.Parallel)
	}
}

func TestPlanSpecNested(t *testing.T) {
	data := []byte(`{"serial":[{"args":["true"]},{"parallel":[{"args":["a"]},{"args":["b"]}]}]}`)
	var out PlanSpec
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Variant() != VariantTaskList || len(out.Serial) != 2 {
		t.Fatalf("unexpected top level: %+v", out)
	}
	if out.Serial[1].Variant() != VariantTaskGroup || len(out.Serial[1].Parallel) != 2 {
		t.Fatalf("unexpected nested group: %+v", out.Serial[1])
	}
}

func TestPlanSpecRejectsAmbiguousWire(t *testing.T) {
	for _, data := range [][]byte{
		[]byte(`{}`),
		[]byte(`{"args":["a"],"serial":[]}`),
	} {
		var out PlanSpec
		if err := json.Unmarshal(data, &out); err == nil {
			t.Fatalf("expected error decoding %s", data)
		}
	}
}

func TestTaskSpecRoundTrip_Parallel(t *testing.T) {
	a, b := NewID(), NewID()
	in := TaskSpec{Parallel: []ID{a, b}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out TaskSpec
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Variant() != VariantTaskGroup || len(out.Parallel) != 2 || out.Parallel[0] != a || out.Parallel[1] != b {
		t.Fatalf("unexpected round trip: %+v", out)
	}
}
