package taskmodel

import (
	"encoding/json"
	"fmt"
)

// PlanSpec is a recursive sum type over three variants, exactly one of which
// is populated:
//
//	Command{Args}            - a leaf: args[0] is the executable, args[1:] its argv
//	TaskGroup{Parallel}       - children run concurrently
//	TaskList{Serial}          - children run in order
//
// On the wire this is untagged JSON: the variant is inferred from which of
// "args", "parallel", or "serial" is present (exactly one must be).
//
// Struct tags are intentionally absent: encoding/json's "omitempty" treats a
// non-nil empty slice the same as a nil one, which would drop the key for an
// empty TaskGroup/TaskList. MarshalJSON/UnmarshalJSON below decode explicitly
// on presence-of-key instead, so a zero-child composite round-trips as
// {"parallel":[]} rather than being silently coerced into the wrong variant.
type PlanSpec struct {
	Args     []string
	Parallel []PlanSpec
	Serial   []PlanSpec
}

// TaskSpec mirrors PlanSpec but references child Task IDs rather than nested
// specs, since a materialized task's children already exist in the store.
type TaskSpec struct {
	Args     []string
	Parallel []ID
	Serial   []ID
}

// Variant identifies which of the three sum-type arms a spec occupies.
type Variant int

const (
	// VariantInvalid marks a spec with zero or more than one populated arm.
	VariantInvalid Variant = iota
	VariantCommand
	VariantTaskGroup
	VariantTaskList
)

// Variant reports which arm of the sum type is populated.
//
// Exactly one of Args (possibly empty, for Command), Parallel, or Serial must
// be non-nil; nil-vs-empty is what disambiguates an empty TaskGroup/TaskList
// from a Command with no arguments. Untagged JSON can't express "this field is
// present but empty" any other way, so callers constructing these values in
// Go must set the field to a non-nil empty slice, not leave it nil, to select
// that arm.
func (s PlanSpec) Variant() Variant {
	return variantOf(s.Args != nil, s.Parallel != nil, s.Serial != nil)
}

// Variant reports which arm of the sum type is populated; see PlanSpec.Variant.
func (s TaskSpec) Variant() Variant {
	return variantOf(s.Args != nil, s.Parallel != nil, s.Serial != nil)
}

func variantOf(hasArgs, hasParallel, hasSerial bool) Variant {
	count := 0
	if hasArgs {
		count++
	}
	if hasParallel {
		count++
	}
	if hasSerial {
		count++
	}
	if count != 1 {
		return VariantInvalid
	}
	switch {
	case hasArgs:
		return VariantCommand
	case hasParallel:
		return VariantTaskGroup
	default:
		return VariantTaskList
	}
}

// MarshalJSON encodes exactly one of "args", "parallel", "serial" based on
// Variant, so an empty TaskGroup/TaskList still emits its key.
func (s PlanSpec) MarshalJSON() ([]byte, error) {
	switch s.Variant() {
	case VariantCommand:
		return json.Marshal(struct {
			Args []string `json:"args"`
		}{s.Args})
	case VariantTaskGroup:
		return json.Marshal(struct {
			Parallel []PlanSpec `json:"parallel"`
		}{s.Parallel})
	case VariantTaskList:
		return json.Marshal(struct {
			Serial []PlanSpec `json:"serial"`
		}{s.Serial})
	default:
		return nil, fmt.Errorf("task spec must have exactly one of \"args\", \"parallel\", \"serial\"")
	}
}

// MarshalJSON encodes exactly one of "args", "parallel", "serial" based on
// Variant; see PlanSpec.MarshalJSON.
func (s TaskSpec) MarshalJSON() ([]byte, error) {
	switch s.Variant() {
	case VariantCommand:
		return json.Marshal(struct {
			Args []string `json:"args"`
		}{s.Args})
	case VariantTaskGroup:
		return json.Marshal(struct {
			Parallel []ID `json:"parallel"`
		}{s.Parallel})
	case VariantTaskList:
		return json.Marshal(struct {
			Serial []ID `json:"serial"`
		}{s.Serial})
	default:
		return nil, fmt.Errorf("task spec must have exactly one of \"args\", \"parallel\", \"serial\"")
	}
}

// wireSpec is the shape used for untagged JSON decoding: it lets us tell an
// absent field apart from an explicit empty array, which PlanSpec/TaskSpec
// need in order to preserve empty-parallel/empty-serial composites.
type wireSpec struct {
	Args     *[]string         `json:"args,omitempty"`
	Parallel *[]json.RawMessage `json:"parallel,omitempty"`
	Serial   *[]json.RawMessage `json:"serial,omitempty"`
}

// UnmarshalJSON decodes the untagged {"args"|"parallel"|"serial"} wire shape.
func (s *PlanSpec) UnmarshalJSON(data []byte) error {
	var w wireSpec
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := checkArity(w.Args != nil, w.Parallel != nil, w.Serial != nil); err != nil {
		return err
	}
	switch {
	case w.Args != nil:
		s.Args = *w.Args
		if s.Args == nil {
			s.Args = []string{}
		}
	case w.Parallel != nil:
		children, err := decodeChildren(*w.Parallel)
		if err != nil {
			return fmt.Errorf("decoding parallel children: %w", err)
		}
		s.Parallel = children
	case w.Serial != nil:
		children, err := decodeChildren(*w.Serial)
		if err != nil {
			return fmt.Errorf("decoding serial children: %w", err)
		}
		s.Serial = children
	}
	return nil
}

func decodeChildren(raw []json.RawMessage) ([]PlanSpec, error) {
	out := make([]PlanSpec, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func checkArity(hasArgs, hasParallel, hasSerial bool) error {
	if variantOf(hasArgs, hasParallel, hasSerial) == VariantInvalid {
		return fmt.Errorf("task spec must have exactly one of \"args\", \"parallel\", \"serial\"")
	}
	return nil
}

// UnmarshalJSON decodes the untagged {"args"|"parallel"|"serial"} wire shape,
// where parallel/serial hold child task UUIDs rather than nested specs.
func (s *TaskSpec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Args     *[]string `json:"args,omitempty"`
		Parallel *[]ID     `json:"parallel,omitempty"`
		Serial   *[]ID     `json:"serial,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := checkArity(raw.Args != nil, raw.Parallel != nil, raw.Serial != nil); err != nil {
		return err
	}
	switch {
	case raw.Args != nil:
		s.Args = *raw.Args
		if s.Args == nil {
			s.Args = []string{}
		}
	case raw.Parallel != nil:
		s.Parallel = *raw.Parallel
		if s.Parallel == nil {
			s.Parallel = []ID{}
		}
	case raw.Serial != nil:
		s.Serial = *raw.Serial
		if s.Serial == nil {
			s.Serial = []ID{}
		}
	}
	return nil
}
