package schema

import (
	"fmt"
	"iter"
	"slices"
)

// Traverse returns the instances related to inst through the relationship
// side named name, in insertion order.
//
// The returned sequence is computed when iterated and can be ranged over any
// number of times; each pass reflects the registry as it is at that moment.
// The one side of a one-to-many relationship is a view filtered over the
// target type's instances in creation order, never a stored copy.
func (r *Registry) Traverse(inst *Instance, name string) (iter.Seq[*Instance], error) {
	if err := r.owns(inst); err != nil {
		return nil, err
	}
	s, ok := inst.Type.sides[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRelationship, inst.Type.Name, name)
	}

	rel := s.rel
	switch {
	case rel.Kind == OneToMany && s.forward:
		return func(yield func(*Instance) bool) {
			for _, candidate := range rel.Target.instances {
				if candidate.owners[rel] != inst {
					continue
				}
				if !yield(candidate) {
					return
				}
			}
		}, nil
	case rel.Kind == OneToMany:
		return func(yield func(*Instance) bool) {
			if owner := inst.owners[rel]; owner != nil {
				yield(owner)
			}
		}, nil
	default:
		return func(yield func(*Instance) bool) {
			for _, related := range inst.collections[name] {
				if !yield(related) {
					return
				}
			}
		}, nil
	}
}

// TraverseByID is Traverse addressed by instance id.
func (r *Registry) TraverseByID(id, name string) (iter.Seq[*Instance], error) {
	inst, err := r.lookupInstance(id)
	if err != nil {
		return nil, err
	}
	return r.Traverse(inst, name)
}

// Related materializes Traverse into a slice. The result is never nil.
func (r *Registry) Related(inst *Instance, name string) ([]*Instance, error) {
	seq, err := r.Traverse(inst, name)
	if err != nil {
		return nil, err
	}
	return Collect(seq), nil
}

// Collect drains a traversal into a slice. The result is never nil.
func Collect(seq iter.Seq[*Instance]) []*Instance {
	out := slices.Collect(seq)
	if out == nil {
		return []*Instance{}
	}
	return out
}
