package schema

import (
	"errors"
	"fmt"
	"slices"
)

// RegisterType creates an empty entity type.
func (r *Registry) RegisterType(name string) (*EntityType, error) {
	if name == "" {
		return nil, errors.New("schema: type name must not be empty")
	}
	if _, ok := r.types[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateType, name)
	}

	table := r.naming.TableName(name)
	if user, ok := r.tables[table]; ok {
		return nil, fmt.Errorf("%w: %q maps to table %q already used by %s", ErrDuplicateType, name, table, user)
	}

	t := newEntityType(name, table)
	r.types[name] = t
	r.typeOrder = append(r.typeOrder, t)
	r.tables[table] = name

	r.logger.Debugw("registered type", "type", name, "table", t.Table)
	for _, l := range r.listeners {
		l.TypeRegistered(t)
	}
	return t, nil
}

// AddField appends a field to a registered type. The field kind is inferred
// from defaultValue, and every existing instance of the type receives
// defaultValue for the new field.
func (r *Registry) AddField(typeName, fieldName string, defaultValue any) error {
	return r.AddColumn(typeName, Field{Name: fieldName, Kind: KindOf(defaultValue), Default: defaultValue})
}

// AddColumn appends a field with an explicit kind. A nil default resolves to
// the kind's zero value for both existing and future instances.
func (r *Registry) AddColumn(typeName string, field Field) error {
	t, err := r.lookupType(typeName)
	if err != nil {
		return err
	}
	if field.Name == "" {
		return errors.New("schema: field name must not be empty")
	}
	if t.hasName(field.Name) {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateField, typeName, field.Name)
	}
	column := r.naming.ColumnName(field.Name)
	if user, ok := t.columns[column]; ok {
		return fmt.Errorf("%w: %s.%s maps to column %q already used by %s", ErrDuplicateField, typeName, field.Name, column, user)
	}

	f := &Field{
		Name:    field.Name,
		Kind:    field.Kind,
		Default: field.Default,
		Column:  column,
	}
	t.fields = append(t.fields, f)
	t.fieldMap[f.Name] = f
	t.columns[column] = f.Name

	backfill := f.initial()
	for _, inst := range t.instances {
		inst.values[f.Name] = backfill
	}

	r.logger.Debugw("added field", "type", typeName, "field", f.Name, "kind", f.Kind.String(), "backfilled", len(t.instances))
	for _, l := range r.listeners {
		l.FieldAdded(t, f)
	}
	return nil
}

// CreateInstance creates a new instance of a registered type. Each declared
// field takes the override value if present, else the field default, else
// the zero value of the field kind.
func (r *Registry) CreateInstance(typeName string, overrides map[string]any) (*Instance, error) {
	t, err := r.lookupType(typeName)
	if err != nil {
		return nil, err
	}
	for name := range overrides {
		if _, ok := t.fieldMap[name]; !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, typeName, name)
		}
	}

	id, err := r.ids.Generate()
	if err != nil {
		return nil, fmt.Errorf("schema: generate instance id: %w", err)
	}
	if _, ok := r.instances[id]; ok {
		return nil, fmt.Errorf("schema: generated instance id %q already in use", id)
	}

	inst := &Instance{
		ID:          id,
		Type:        t,
		values:      make(map[string]any, len(t.fields)),
		owners:      make(map[*Relationship]*Instance),
		collections: make(map[string][]*Instance),
	}
	for _, f := range t.fields {
		if v, ok := overrides[f.Name]; ok {
			inst.values[f.Name] = v
			continue
		}
		inst.values[f.Name] = f.initial()
	}

	t.instances = append(t.instances, inst)
	r.instances[id] = inst

	r.logger.Debugw("created instance", "type", typeName, "id", id)
	return inst, nil
}

// AddRelationship declares a relationship named name on owner pointing at
// target.
//
// For OneToMany, backref is optional and names the scalar reference from a
// target instance back to its owner. For ManyToMany, backref is required and
// names the collection on target holding the owners.
//
// A OneToMany without backref declared opposite to an existing OneToMany
// without backref between the same two distinct types names that relationship's
// reverse side instead of creating a new one: after declaring House.owner
// over Person, declaring Person.houses over House makes houses the view of
// owner.
func (r *Registry) AddRelationship(kind RelationshipKind, ownerName, targetName, name, backref string) error {
	if kind != OneToMany && kind != ManyToMany {
		return fmt.Errorf("schema: invalid relationship kind %q", kind)
	}
	owner, err := r.lookupType(ownerName)
	if err != nil {
		return err
	}
	target, err := r.lookupType(targetName)
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New("schema: relationship name must not be empty")
	}
	if owner.hasName(name) {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateRelationship, ownerName, name)
	}

	backrefTaken := backref != "" && (target.hasName(backref) || (owner == target && backref == name))
	switch kind {
	case ManyToMany:
		if backref == "" {
			return fmt.Errorf("%w: many-to-many %s.%s declares no backref", ErrMissingBackref, ownerName, name)
		}
		if backrefTaken {
			return fmt.Errorf("%w: %s.%s is already taken", ErrMissingBackref, targetName, backref)
		}
	case OneToMany:
		if backrefTaken {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateRelationship, targetName, backref)
		}
		if backref == "" {
			reverse, err := r.reverseOf(owner, target, name)
			if err != nil {
				return err
			}
			if reverse != nil {
				reverse.Backref = name
				owner.addSide(name, side{rel: reverse, forward: false})
				r.logger.Debugw("added reverse side", "type", ownerName, "name", name, "of", targetName+"."+reverse.Name)
				return nil
			}
		}
	}

	rel := &Relationship{
		Kind:    kind,
		Owner:   owner,
		Target:  target,
		Name:    name,
		Backref: backref,
	}
	if kind == OneToMany {
		fk, ok := freeColumn(target, foreignKeyColumns(r.naming, rel))
		if !ok {
			return fmt.Errorf("%w: %s.%s has no free foreign key column on %s", ErrDuplicateRelationship, ownerName, name, target.Table)
		}
		rel.ForeignKey = fk
	} else {
		rel.JoinTable = joinTableName(rel)
		if user, ok := r.tables[rel.JoinTable]; ok {
			return fmt.Errorf("%w: %s.%s maps to table %q already used by %s", ErrDuplicateRelationship, ownerName, name, rel.JoinTable, user)
		}
	}

	r.relations = append(r.relations, rel)
	owner.addSide(name, side{rel: rel, forward: true})
	if backref != "" {
		target.addSide(backref, side{rel: rel, forward: false})
	}
	if rel.ForeignKey != "" {
		target.columns[rel.ForeignKey] = ownerName + "." + name
	} else {
		r.tables[rel.JoinTable] = ownerName + "." + name
	}

	r.logger.Debugw("added relationship", "kind", string(kind), "owner", ownerName, "target", targetName, "name", name, "backref", backref)
	for _, l := range r.listeners {
		l.RelationshipAdded(rel)
	}
	return nil
}

// Link associates b with a through the relationship side a's type knows as
// name. Linking through a backref has the same effect as linking through the
// forward side in the opposite direction.
func (r *Registry) Link(a *Instance, name string, b *Instance) error {
	if err := r.owns(a); err != nil {
		return err
	}
	if err := r.owns(b); err != nil {
		return err
	}
	s, ok := a.Type.sides[name]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownRelationship, a.Type.Name, name)
	}
	if want := s.other(); b.Type != want {
		return fmt.Errorf("%w: %s.%s expects %s, got %s", ErrTypeMismatch, a.Type.Name, name, want.Name, b.Type.Name)
	}

	rel := s.rel
	owner, target := a, b
	if !s.forward {
		owner, target = b, a
	}

	switch rel.Kind {
	case OneToMany:
		// Reassigning the owner moves the target out of the previous
		// owner's computed collection.
		target.owners[rel] = owner
	case ManyToMany:
		owner.collections[rel.Name] = appendUnique(owner.collections[rel.Name], target)
		target.collections[rel.Backref] = appendUnique(target.collections[rel.Backref], owner)
	}

	r.logger.Debugw("linked instances", "from", a.String(), "relationship", name, "to", b.String())
	return nil
}

// LinkByID is Link addressed by instance ids.
func (r *Registry) LinkByID(aID, name, bID string) error {
	a, err := r.lookupInstance(aID)
	if err != nil {
		return err
	}
	b, err := r.lookupInstance(bID)
	if err != nil {
		return err
	}
	return r.Link(a, name, b)
}

// Type returns a registered entity type.
func (r *Registry) Type(name string) (*EntityType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Types returns every registered type in registration order.
func (r *Registry) Types() []*EntityType {
	return slices.Clone(r.typeOrder)
}

// Relationships returns every declared relationship in declaration order.
func (r *Registry) Relationships() []*Relationship {
	return slices.Clone(r.relations)
}

// Instance returns the instance with the given id.
func (r *Registry) Instance(id string) (*Instance, bool) {
	inst, ok := r.instances[id]
	return inst, ok
}

// Instances returns the instances of a type in creation order.
func (r *Registry) Instances(typeName string) ([]*Instance, error) {
	t, err := r.lookupType(typeName)
	if err != nil {
		return nil, err
	}
	return slices.Clone(t.instances), nil
}

// Relationship returns the relationship reachable from typeName under name.
func (r *Registry) Relationship(typeName, name string) (*Relationship, error) {
	t, err := r.lookupType(typeName)
	if err != nil {
		return nil, err
	}
	rel, ok := t.Relationship(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRelationship, typeName, name)
	}
	return rel, nil
}

func (r *Registry) lookupType(name string) (*EntityType, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return t, nil
}

func (r *Registry) lookupInstance(id string) (*Instance, error) {
	inst, ok := r.instances[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstance, id)
	}
	return inst, nil
}

func (r *Registry) owns(inst *Instance) error {
	if inst == nil {
		return fmt.Errorf("%w: nil instance", ErrUnknownInstance)
	}
	if r.instances[inst.ID] != inst {
		return fmt.Errorf("%w: %s does not belong to this registry", ErrUnknownInstance, inst)
	}
	return nil
}

// reverseOf finds the one-to-many declared from target to owner whose
// reverse side is still unnamed. More than one candidate is ambiguous.
// Self-referential relationships have no opposite direction and never match.
func (r *Registry) reverseOf(owner, target *EntityType, name string) (*Relationship, error) {
	if owner == target {
		return nil, nil
	}
	var found *Relationship
	for _, rel := range r.relations {
		if rel.Kind != OneToMany || rel.Owner != target || rel.Target != owner || rel.Backref != "" {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %s.%s could be the reverse of %s.%s or %s.%s",
				ErrDuplicateRelationship, owner.Name, name, target.Name, found.Name, target.Name, rel.Name)
		}
		found = rel
	}
	return found, nil
}

// freeColumn returns the first candidate not yet used on t's table.
func freeColumn(t *EntityType, candidates []string) (string, bool) {
	for _, c := range candidates {
		if _, taken := t.columns[c]; !taken {
			return c, true
		}
	}
	return "", false
}

func appendUnique(list []*Instance, inst *Instance) []*Instance {
	if slices.Contains(list, inst) {
		return list
	}
	return append(list, inst)
}
