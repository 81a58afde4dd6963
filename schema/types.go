package schema

import (
	"fmt"
	"maps"
	"slices"
)

// FieldKind is the scalar kind of a field. It decides the zero value handed
// to instances when a field has no default, and the column type used when the
// field is mirrored into DDL.
type FieldKind uint8

const (
	KindAny FieldKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

var kindNames = [...]string{"any", "string", "int", "float", "bool"}

func (k FieldKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Zero returns the type-appropriate zero value for the kind.
func (k FieldKind) Zero() any {
	switch k {
	case KindString:
		return ""
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindBool:
		return false
	default:
		return nil
	}
}

// KindOf infers the field kind from a default value.
func KindOf(v any) FieldKind {
	switch v.(type) {
	case string:
		return KindString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case bool:
		return KindBool
	default:
		return KindAny
	}
}

// RelationshipKind identifies the cardinality of a relationship.
type RelationshipKind string

const (
	OneToMany  RelationshipKind = "one-to-many"
	ManyToMany RelationshipKind = "many-to-many"
)

// ParseRelationshipKind maps the textual kind used on the command line.
func ParseRelationshipKind(s string) (RelationshipKind, error) {
	switch RelationshipKind(s) {
	case OneToMany, ManyToMany:
		return RelationshipKind(s), nil
	}
	return "", fmt.Errorf("invalid relationship kind %q (expected %s or %s)", s, OneToMany, ManyToMany)
}

// PrimaryKeyColumn is the column every entity table keys its instances by.
// It is reserved on every type.
const PrimaryKeyColumn = "id"

// Field is a named, defaulted scalar slot on an EntityType.
type Field struct {
	Name    string
	Kind    FieldKind
	Default any
	// Column is the database column name derived by the naming strategy.
	Column string
}

// initial is the value a fresh instance receives when no override is given.
func (f *Field) initial() any {
	if f.Default != nil {
		return f.Default
	}
	return f.Kind.Zero()
}

// Relationship is a named association between two entity types.
//
// For OneToMany the owner is the "one" side: Name is the collection on the
// owner and Backref (optional) is the scalar reference on the target. For
// ManyToMany both Name and Backref are stored collections.
type Relationship struct {
	Kind    RelationshipKind
	Owner   *EntityType
	Target  *EntityType
	Name    string
	Backref string

	// ForeignKey is the column on the target table holding the owner id
	// (one-to-many only).
	ForeignKey string
	// JoinTable names the association table (many-to-many only).
	JoinTable string
}

// side is one traversable end of a relationship as seen from a type.
type side struct {
	rel     *Relationship
	forward bool
}

// other returns the entity type found at the far end of the side.
func (s side) other() *EntityType {
	if s.forward {
		return s.rel.Target
	}
	return s.rel.Owner
}

// name returns the name the side is registered under.
func (s side) name() string {
	if s.forward {
		return s.rel.Name
	}
	return s.rel.Backref
}

// EntityType is a named schema definition, analogous to a mapped table.
type EntityType struct {
	Name  string
	Table string

	fields   []*Field
	fieldMap map[string]*Field
	sides    map[string]side
	sideList []string
	// columns maps each column of the type's table to the field or
	// relationship that uses it.
	columns map[string]string
	// instances of this type in creation order.
	instances []*Instance
}

func newEntityType(name, table string) *EntityType {
	return &EntityType{
		Name:     name,
		Table:    table,
		fieldMap: make(map[string]*Field),
		sides:    make(map[string]side),
		columns:  map[string]string{PrimaryKeyColumn: "the primary key"},
	}
}

// Fields returns the declared fields in declaration order.
func (t *EntityType) Fields() []*Field {
	return slices.Clone(t.fields)
}

// FieldNames returns the declared field names in declaration order.
func (t *EntityType) FieldNames() []string {
	names := make([]string, len(t.fields))
	for i, f := range t.fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a declared field.
func (t *EntityType) Field(name string) (*Field, bool) {
	f, ok := t.fieldMap[name]
	return f, ok
}

// Relationships returns the names of every relationship side (forward names
// and backrefs) this type participates in, in declaration order.
func (t *EntityType) Relationships() []string {
	return slices.Clone(t.sideList)
}

// Relationship returns the relationship reachable from this type under name.
func (t *EntityType) Relationship(name string) (*Relationship, bool) {
	s, ok := t.sides[name]
	if !ok {
		return nil, false
	}
	return s.rel, true
}

func (t *EntityType) hasName(name string) bool {
	if _, ok := t.fieldMap[name]; ok {
		return true
	}
	_, ok := t.sides[name]
	return ok
}

func (t *EntityType) addSide(name string, s side) {
	t.sides[name] = s
	t.sideList = append(t.sideList, name)
}

// Instance is a single record of an EntityType.
type Instance struct {
	ID   string
	Type *EntityType

	values map[string]any
	// owners holds the single "one"-side reference per one-to-many
	// relationship in which this instance is the target.
	owners map[*Relationship]*Instance
	// collections holds stored many-to-many collections keyed by side name.
	collections map[string][]*Instance
}

// Get returns the value of a field.
func (i *Instance) Get(field string) (any, bool) {
	v, ok := i.values[field]
	return v, ok
}

// Values returns a copy of the instance's field mapping.
func (i *Instance) Values() map[string]any {
	return maps.Clone(i.values)
}

// OwnerOf returns the owner this instance is linked to through a one-to-many
// relationship in which it is the target.
func (i *Instance) OwnerOf(rel *Relationship) (*Instance, bool) {
	owner, ok := i.owners[rel]
	return owner, ok && owner != nil
}

func (i *Instance) String() string {
	return i.Type.Name + ":" + i.ID
}
