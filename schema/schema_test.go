package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =========================================================================
// Test Helpers
// =========================================================================

func newTestRegistry(t *testing.T, types ...string) *Registry {
	t.Helper()
	r := New(WithIDGenerator(NewSequenceGenerator()))
	for _, name := range types {
		_, err := r.RegisterType(name)
		require.NoError(t, err)
	}
	return r
}

func mustCreate(t *testing.T, r *Registry, typeName string, overrides map[string]any) *Instance {
	t.Helper()
	inst, err := r.CreateInstance(typeName, overrides)
	require.NoError(t, err)
	return inst
}

func mustRelated(t *testing.T, r *Registry, inst *Instance, name string) []*Instance {
	t.Helper()
	related, err := r.Related(inst, name)
	require.NoError(t, err)
	return related
}

// =========================================================================
// Type Registration Tests
// =========================================================================

func TestRegisterType(t *testing.T) {
	r := newTestRegistry(t)

	person, err := r.RegisterType("Person")
	require.NoError(t, err)
	assert.Equal(t, "Person", person.Name)
	assert.Equal(t, "people", person.Table)
	assert.Empty(t, person.Fields())
	assert.Empty(t, person.Relationships())

	_, err = r.RegisterType("Person")
	assert.ErrorIs(t, err, ErrDuplicateType)

	_, err = r.RegisterType("")
	assert.Error(t, err)
	assert.False(t, IsRegistryError(err))

	got, ok := r.Type("Person")
	require.True(t, ok)
	assert.Same(t, person, got)
}

func TestRegisterTypeRejectsTableCollision(t *testing.T) {
	r := newTestRegistry(t, "Person")

	_, err := r.RegisterType("person")
	assert.ErrorIs(t, err, ErrDuplicateType)
	assert.ErrorContains(t, err, `table "people"`)

	_, ok := r.Type("person")
	assert.False(t, ok)
	assert.Len(t, r.Types(), 1)
}

func TestTypesKeepRegistrationOrder(t *testing.T) {
	r := newTestRegistry(t, "Person", "Car", "House")

	var names []string
	for _, et := range r.Types() {
		names = append(names, et.Name)
	}
	assert.Equal(t, []string{"Person", "Car", "House"}, names)
}

// =========================================================================
// Field Tests
// =========================================================================

func TestAddFieldDefaultsNewInstances(t *testing.T) {
	tests := []struct {
		name     string
		def      any
		wantKind FieldKind
	}{
		{name: "EmptyString", def: "", wantKind: KindString},
		{name: "String", def: "n/a", wantKind: KindString},
		{name: "Int", def: int64(7), wantKind: KindInt},
		{name: "Float", def: 1.5, wantKind: KindFloat},
		{name: "Bool", def: true, wantKind: KindBool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(t, "Widget")
			require.NoError(t, r.AddField("Widget", "value", tt.def))

			f, ok := r.types["Widget"].Field("value")
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, f.Kind)

			inst := mustCreate(t, r, "Widget", nil)
			got, ok := inst.Get("value")
			require.True(t, ok)
			assert.Equal(t, tt.def, got)
		})
	}
}

func TestAddFieldBackfillsExistingInstances(t *testing.T) {
	r := newTestRegistry(t, "Person", "Car")
	p1 := mustCreate(t, r, "Person", nil)
	p2 := mustCreate(t, r, "Person", nil)
	car := mustCreate(t, r, "Car", nil)

	require.NoError(t, r.AddField("Person", "nickname", "none"))

	for _, p := range []*Instance{p1, p2} {
		v, ok := p.Get("nickname")
		require.True(t, ok)
		assert.Equal(t, "none", v)
	}

	_, ok := car.Get("nickname")
	assert.False(t, ok, "backfill must not leak into other types")
}

func TestAddFieldDuplicateLeavesFieldsUnchanged(t *testing.T) {
	r := newTestRegistry(t, "Person")
	require.NoError(t, r.AddField("Person", "unicode_field", ""))
	require.NoError(t, r.AddField("Person", "age", int64(0)))

	before := r.types["Person"].FieldNames()

	err := r.AddField("Person", "unicode_field", "other")
	assert.ErrorIs(t, err, ErrDuplicateField)
	assert.Equal(t, before, r.types["Person"].FieldNames())

	f, _ := r.types["Person"].Field("unicode_field")
	assert.Equal(t, "", f.Default)
}

func TestAddFieldRejectsColumnCollision(t *testing.T) {
	r := newTestRegistry(t, "Person", "House")
	require.NoError(t, r.AddField("Person", "Age", 0))
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", "owner"))

	tests := []struct {
		name     string
		typeName string
		field    string
	}{
		{"PrimaryKey", "Person", "ID"},
		{"SameColumnOtherSpelling", "Person", "age"},
		{"ForeignKey", "House", "owner_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			et := r.types[tt.typeName]
			before := et.FieldNames()
			err := r.AddField(tt.typeName, tt.field, "")
			assert.ErrorIs(t, err, ErrDuplicateField)
			assert.Equal(t, before, et.FieldNames())
		})
	}
}

func TestAddFieldErrors(t *testing.T) {
	r := newTestRegistry(t, "Person", "House")
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", "owner"))

	assert.ErrorIs(t, r.AddField("Ghost", "x", ""), ErrUnknownType)
	assert.ErrorIs(t, r.AddField("Person", "houses", ""), ErrDuplicateField)
	assert.ErrorIs(t, r.AddField("House", "owner", ""), ErrDuplicateField)
	assert.Error(t, r.AddField("Person", "", ""))
}

func TestAddColumnZeroValues(t *testing.T) {
	r := newTestRegistry(t, "Person")
	existing := mustCreate(t, r, "Person", nil)

	require.NoError(t, r.AddColumn("Person", Field{Name: "age", Kind: KindInt}))
	require.NoError(t, r.AddColumn("Person", Field{Name: "active", Kind: KindBool}))
	require.NoError(t, r.AddColumn("Person", Field{Name: "blob"}))

	fresh := mustCreate(t, r, "Person", nil)
	for _, inst := range []*Instance{existing, fresh} {
		assert.Equal(t, map[string]any{"age": int64(0), "active": false, "blob": nil}, inst.Values())
	}
}

// =========================================================================
// Instance Tests
// =========================================================================

func TestCreateInstanceUnicodeFieldScenario(t *testing.T) {
	r := newTestRegistry(t, "Person", "Car", "House")
	require.NoError(t, r.AddField("Person", "unicode_field", ""))

	p1 := mustCreate(t, r, "Person", map[string]any{})
	v, _ := p1.Get("unicode_field")
	assert.Equal(t, "", v)

	p2 := mustCreate(t, r, "Person", map[string]any{"unicode_field": "hello unicode field"})
	v, _ = p2.Get("unicode_field")
	assert.Equal(t, "hello unicode field", v)

	assert.NotEqual(t, p1.ID, p2.ID)
	got, ok := r.Instance(p2.ID)
	require.True(t, ok)
	assert.Same(t, p2, got)
}

func TestCreateInstanceErrors(t *testing.T) {
	r := newTestRegistry(t, "Person")
	require.NoError(t, r.AddField("Person", "name", ""))

	_, err := r.CreateInstance("Ghost", nil)
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = r.CreateInstance("Person", map[string]any{"name": "x", "age": 3})
	assert.ErrorIs(t, err, ErrUnknownField)

	instances, err := r.Instances("Person")
	require.NoError(t, err)
	assert.Empty(t, instances, "failed creation must not register an instance")
}

func TestInstanceValuesIsACopy(t *testing.T) {
	r := newTestRegistry(t, "Person")
	require.NoError(t, r.AddField("Person", "name", "a"))
	p := mustCreate(t, r, "Person", nil)

	vals := p.Values()
	vals["name"] = "mutated"

	v, _ := p.Get("name")
	assert.Equal(t, "a", v)
}

// =========================================================================
// Relationship Declaration Tests
// =========================================================================

func TestAddRelationshipErrors(t *testing.T) {
	r := newTestRegistry(t, "Person", "Car", "House")
	require.NoError(t, r.AddField("Car", "color", ""))
	require.NoError(t, r.AddRelationship(ManyToMany, "Person", "Car", "cars", "persons"))

	tests := []struct {
		name    string
		kind    RelationshipKind
		owner   string
		target  string
		rel     string
		backref string
		want    error
	}{
		{"UnknownOwner", OneToMany, "Ghost", "House", "houses", "", ErrUnknownType},
		{"UnknownTarget", OneToMany, "Person", "Ghost", "ghosts", "", ErrUnknownType},
		{"DuplicateName", OneToMany, "Person", "House", "cars", "", ErrDuplicateRelationship},
		{"MissingBackref", ManyToMany, "Person", "House", "homes", "", ErrMissingBackref},
		{"BackrefCollidesWithRelationship", ManyToMany, "Person", "Car", "rides", "persons", ErrMissingBackref},
		{"BackrefCollidesWithField", ManyToMany, "Person", "Car", "rides", "color", ErrMissingBackref},
		{"SelfReferentialSameName", ManyToMany, "Person", "Person", "friends", "friends", ErrMissingBackref},
		{"OneToManyBackrefCollides", OneToMany, "Person", "Car", "fleet", "color", ErrDuplicateRelationship},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := r.types["Person"].Relationships()
			err := r.AddRelationship(tt.kind, tt.owner, tt.target, tt.rel, tt.backref)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsRegistryError(err))
			assert.Equal(t, before, r.types["Person"].Relationships())
		})
	}

	assert.Error(t, r.AddRelationship("one-to-one", "Person", "House", "house", ""))
}

func TestOneToManyForeignKeysStayDistinct(t *testing.T) {
	r := newTestRegistry(t, "Person", "House")
	require.NoError(t, r.AddField("House", "person_id", ""))
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", ""))
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "summer_houses", ""))

	houses, err := r.Relationship("Person", "houses")
	require.NoError(t, err)
	summer, err := r.Relationship("Person", "summer_houses")
	require.NoError(t, err)
	assert.Equal(t, "houses_person_id", houses.ForeignKey)
	assert.Equal(t, "summer_houses_person_id", summer.ForeignKey)

	// Both candidate columns of cabins are taken.
	require.NoError(t, r.AddField("House", "cabins_person_id", ""))
	err = r.AddRelationship(OneToMany, "Person", "House", "cabins", "")
	assert.ErrorIs(t, err, ErrDuplicateRelationship)
	assert.ErrorContains(t, err, "no free foreign key column")
	_, err = r.Relationship("Person", "cabins")
	assert.ErrorIs(t, err, ErrUnknownRelationship)
	assert.Len(t, r.Relationships(), 2)
}

func TestManyToManyRejectsJoinTableCollision(t *testing.T) {
	r := New(WithNamingStrategy(NewNamingStrategy(TableSnakeCaseSingular)))
	for _, name := range []string{"Person", "Car", "PersonCars"} {
		_, err := r.RegisterType(name)
		require.NoError(t, err)
	}

	err := r.AddRelationship(ManyToMany, "Person", "Car", "cars", "persons")
	assert.ErrorIs(t, err, ErrDuplicateRelationship)
	assert.ErrorContains(t, err, `table "person_cars"`)
	assert.Empty(t, r.types["Car"].Relationships())

	require.NoError(t, r.AddRelationship(ManyToMany, "Person", "Car", "rides", "riders"))
	_, err = r.RegisterType("PersonRides")
	assert.ErrorIs(t, err, ErrDuplicateType)
}

func TestAddRelationshipMetadata(t *testing.T) {
	r := newTestRegistry(t, "Person", "Car", "House")
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", "owner"))
	require.NoError(t, r.AddRelationship(ManyToMany, "Person", "Car", "cars", "persons"))

	assert.Equal(t, []string{"houses", "cars"}, r.types["Person"].Relationships())
	assert.Equal(t, []string{"owner"}, r.types["House"].Relationships())
	assert.Equal(t, []string{"persons"}, r.types["Car"].Relationships())

	houses, err := r.Relationship("Person", "houses")
	require.NoError(t, err)
	owner, err := r.Relationship("House", "owner")
	require.NoError(t, err)
	assert.Same(t, houses, owner)
	assert.Equal(t, "owner_id", houses.ForeignKey)

	cars, err := r.Relationship("Car", "persons")
	require.NoError(t, err)
	assert.Equal(t, "people_cars", cars.JoinTable)

	_, err = r.Relationship("Person", "pets")
	assert.ErrorIs(t, err, ErrUnknownRelationship)
}

func TestNewRelationshipStartsEmpty(t *testing.T) {
	r := newTestRegistry(t, "Person", "House")
	p := mustCreate(t, r, "Person", nil)
	h := mustCreate(t, r, "House", nil)

	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", "owner"))

	assert.Empty(t, mustRelated(t, r, p, "houses"))
	assert.Empty(t, mustRelated(t, r, h, "owner"))
}

// =========================================================================
// One-to-many Tests
// =========================================================================

func TestOneToManyTraversalIsIdempotent(t *testing.T) {
	r := newTestRegistry(t, "Person", "House")
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", ""))

	person := mustCreate(t, r, "Person", nil)
	house := mustCreate(t, r, "House", nil)
	require.NoError(t, r.Link(person, "houses", house))

	seq, err := r.Traverse(person, "houses")
	require.NoError(t, err)
	assert.Equal(t, []*Instance{house}, Collect(seq))
	assert.Equal(t, []*Instance{house}, Collect(seq), "sequence must be restartable")
	assert.Equal(t, []*Instance{house}, mustRelated(t, r, person, "houses"))
}

func TestOneToManyOwnerBackrefScenario(t *testing.T) {
	r := newTestRegistry(t, "Person", "Car", "House")
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", "owner"))

	// A second declaration of the reverse side is a redefinition of a name
	// the first one already placed on the type.
	err := r.AddRelationship(OneToMany, "House", "Person", "owner", "")
	assert.ErrorIs(t, err, ErrDuplicateRelationship)

	person := mustCreate(t, r, "Person", nil)
	house := mustCreate(t, r, "House", nil)
	require.NoError(t, r.Link(house, "owner", person))

	assert.Equal(t, []*Instance{house}, mustRelated(t, r, person, "houses"))
	assert.Equal(t, []*Instance{person}, mustRelated(t, r, house, "owner"))
}

func TestOneToManyReverseDeclaration(t *testing.T) {
	l := &recordingListener{}
	r := New(WithIDGenerator(NewSequenceGenerator()), WithListener(l))
	for _, name := range []string{"Person", "Car", "House"} {
		_, err := r.RegisterType(name)
		require.NoError(t, err)
	}

	require.NoError(t, r.AddRelationship(OneToMany, "House", "Person", "owner", ""))
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", ""))

	owner, err := r.Relationship("House", "owner")
	require.NoError(t, err)
	houses, err := r.Relationship("Person", "houses")
	require.NoError(t, err)
	assert.Same(t, owner, houses)
	assert.Equal(t, "houses", owner.Backref)
	assert.Len(t, r.Relationships(), 1)
	assert.Equal(t, []string{"type:Person", "type:Car", "type:House", "rel:House.owner"}, l.events)

	person := mustCreate(t, r, "Person", nil)
	house := mustCreate(t, r, "House", nil)
	require.NoError(t, r.Link(house, "owner", person))

	seq, err := r.Traverse(person, "houses")
	require.NoError(t, err)
	assert.Equal(t, []*Instance{house}, Collect(seq))
	assert.Equal(t, []*Instance{house}, Collect(seq))

	// The name is now taken on Person.
	err = r.AddRelationship(OneToMany, "Person", "House", "houses", "")
	assert.ErrorIs(t, err, ErrDuplicateRelationship)
}

func TestOneToManyReverseDeclarationWithLinksInPlace(t *testing.T) {
	r := newTestRegistry(t, "Person", "House")
	require.NoError(t, r.AddRelationship(OneToMany, "House", "Person", "owner", ""))

	person := mustCreate(t, r, "Person", nil)
	house := mustCreate(t, r, "House", nil)
	require.NoError(t, r.Link(house, "owner", person))

	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", ""))
	assert.Equal(t, []*Instance{house}, mustRelated(t, r, person, "houses"))
}

func TestOneToManyIndependentDeclarations(t *testing.T) {
	t.Run("BackrefGiven", func(t *testing.T) {
		r := newTestRegistry(t, "Person", "House")
		require.NoError(t, r.AddRelationship(OneToMany, "House", "Person", "owner", ""))
		require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", "seller"))
		assert.Len(t, r.Relationships(), 2)
	})

	t.Run("SelfReferential", func(t *testing.T) {
		r := newTestRegistry(t, "Person")
		require.NoError(t, r.AddRelationship(OneToMany, "Person", "Person", "children", ""))
		require.NoError(t, r.AddRelationship(OneToMany, "Person", "Person", "mentees", ""))
		assert.Len(t, r.Relationships(), 2)
	})

	t.Run("Ambiguous", func(t *testing.T) {
		r := newTestRegistry(t, "Person", "House")
		require.NoError(t, r.AddRelationship(OneToMany, "House", "Person", "owner", ""))
		require.NoError(t, r.AddRelationship(OneToMany, "House", "Person", "landlord", ""))

		err := r.AddRelationship(OneToMany, "Person", "House", "houses", "")
		assert.ErrorIs(t, err, ErrDuplicateRelationship)
		assert.ErrorContains(t, err, "could be the reverse of")
		assert.Empty(t, r.types["Person"].Relationships())
	})
}

func TestOneToManyOrderAndReassignment(t *testing.T) {
	r := newTestRegistry(t, "Person", "House")
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", "owner"))

	alice := mustCreate(t, r, "Person", nil)
	bob := mustCreate(t, r, "Person", nil)
	h1 := mustCreate(t, r, "House", nil)
	h2 := mustCreate(t, r, "House", nil)
	h3 := mustCreate(t, r, "House", nil)

	require.NoError(t, r.Link(alice, "houses", h3))
	require.NoError(t, r.Link(alice, "houses", h1))
	require.NoError(t, r.Link(h2, "owner", bob))

	assert.Equal(t, []*Instance{h1, h3}, mustRelated(t, r, alice, "houses"))
	assert.Equal(t, []*Instance{h2}, mustRelated(t, r, bob, "houses"))

	// Moving h1 to bob removes it from alice's computed collection.
	require.NoError(t, r.Link(bob, "houses", h1))
	assert.Equal(t, []*Instance{h3}, mustRelated(t, r, alice, "houses"))
	assert.Equal(t, []*Instance{h1, h2}, mustRelated(t, r, bob, "houses"))
	assert.Equal(t, []*Instance{bob}, mustRelated(t, r, h1, "owner"))
}

func TestOneToManyReflectsLaterLinks(t *testing.T) {
	r := newTestRegistry(t, "Person", "House")
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", ""))
	person := mustCreate(t, r, "Person", nil)

	seq, err := r.Traverse(person, "houses")
	require.NoError(t, err)
	assert.Empty(t, Collect(seq))

	house := mustCreate(t, r, "House", nil)
	require.NoError(t, r.Link(person, "houses", house))
	assert.Equal(t, []*Instance{house}, Collect(seq))
}

func TestTraverseStopsEarly(t *testing.T) {
	r := newTestRegistry(t, "Person", "House")
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", ""))
	person := mustCreate(t, r, "Person", nil)
	for range 3 {
		require.NoError(t, r.Link(person, "houses", mustCreate(t, r, "House", nil)))
	}

	seq, err := r.Traverse(person, "houses")
	require.NoError(t, err)

	seen := 0
	for range seq {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

// =========================================================================
// Many-to-many Tests
// =========================================================================

func TestManyToManyLinkIsSymmetric(t *testing.T) {
	r := newTestRegistry(t, "Person", "Car")
	require.NoError(t, r.AddRelationship(ManyToMany, "Person", "Car", "cars", "persons"))

	person1 := mustCreate(t, r, "Person", nil)
	person2 := mustCreate(t, r, "Person", nil)
	car1 := mustCreate(t, r, "Car", nil)
	car2 := mustCreate(t, r, "Car", nil)

	require.NoError(t, r.Link(person1, "cars", car1))
	require.NoError(t, r.Link(car2, "persons", person1))
	require.NoError(t, r.Link(car2, "persons", person2))

	assert.Equal(t, []*Instance{car1, car2}, mustRelated(t, r, person1, "cars"))
	assert.Equal(t, []*Instance{car2}, mustRelated(t, r, person2, "cars"))
	assert.Equal(t, []*Instance{person1}, mustRelated(t, r, car1, "persons"))
	assert.Equal(t, []*Instance{person1, person2}, mustRelated(t, r, car2, "persons"))
}

func TestManyToManyDuplicateLinkIgnored(t *testing.T) {
	r := newTestRegistry(t, "Person", "Car")
	require.NoError(t, r.AddRelationship(ManyToMany, "Person", "Car", "cars", "persons"))
	p := mustCreate(t, r, "Person", nil)
	c := mustCreate(t, r, "Car", nil)

	require.NoError(t, r.Link(p, "cars", c))
	require.NoError(t, r.Link(c, "persons", p))

	assert.Equal(t, []*Instance{c}, mustRelated(t, r, p, "cars"))
	assert.Equal(t, []*Instance{p}, mustRelated(t, r, c, "persons"))
}

func TestManyToManySelfReferential(t *testing.T) {
	r := newTestRegistry(t, "Person")
	require.NoError(t, r.AddRelationship(ManyToMany, "Person", "Person", "follows", "followers"))

	a := mustCreate(t, r, "Person", nil)
	b := mustCreate(t, r, "Person", nil)
	require.NoError(t, r.Link(a, "follows", b))

	assert.Equal(t, []*Instance{b}, mustRelated(t, r, a, "follows"))
	assert.Empty(t, mustRelated(t, r, a, "followers"))
	assert.Equal(t, []*Instance{a}, mustRelated(t, r, b, "followers"))
	assert.Empty(t, mustRelated(t, r, b, "follows"))
}

// =========================================================================
// Link Error Tests
// =========================================================================

func TestLinkErrors(t *testing.T) {
	r := newTestRegistry(t, "Person", "Car", "House")
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", "owner"))
	require.NoError(t, r.AddRelationship(ManyToMany, "Person", "Car", "cars", "persons"))

	p := mustCreate(t, r, "Person", nil)
	c := mustCreate(t, r, "Car", nil)
	h := mustCreate(t, r, "House", nil)

	assert.ErrorIs(t, r.Link(p, "pets", h), ErrUnknownRelationship)
	assert.ErrorIs(t, r.Link(p, "houses", c), ErrTypeMismatch)
	assert.ErrorIs(t, r.Link(h, "owner", c), ErrTypeMismatch)
	assert.ErrorIs(t, r.Link(c, "persons", h), ErrTypeMismatch)
	assert.ErrorIs(t, r.Link(p, "cars", nil), ErrUnknownInstance)

	other := newTestRegistry(t, "Car")
	stranger := mustCreate(t, other, "Car", nil)
	assert.ErrorIs(t, r.Link(p, "cars", stranger), ErrUnknownInstance)

	assert.Empty(t, mustRelated(t, r, p, "houses"))
	assert.Empty(t, mustRelated(t, r, p, "cars"))
	assert.Empty(t, mustRelated(t, r, c, "persons"))
}

func TestLinkByIDAndTraverseByID(t *testing.T) {
	r := newTestRegistry(t, "Person", "Car")
	require.NoError(t, r.AddRelationship(ManyToMany, "Person", "Car", "cars", "persons"))
	p := mustCreate(t, r, "Person", nil)
	c := mustCreate(t, r, "Car", nil)

	require.NoError(t, r.LinkByID(c.ID, "persons", p.ID))
	assert.ErrorIs(t, r.LinkByID("nope", "cars", c.ID), ErrUnknownInstance)

	seq, err := r.TraverseByID(p.ID, "cars")
	require.NoError(t, err)
	assert.Equal(t, []*Instance{c}, Collect(seq))

	_, err = r.TraverseByID("nope", "cars")
	assert.ErrorIs(t, err, ErrUnknownInstance)
}

func TestTraverseUnknownRelationship(t *testing.T) {
	r := newTestRegistry(t, "Person")
	p := mustCreate(t, r, "Person", nil)

	_, err := r.Traverse(p, "houses")
	assert.ErrorIs(t, err, ErrUnknownRelationship)
}

func TestCollectNeverNil(t *testing.T) {
	got := Collect(func(func(*Instance) bool) {})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// =========================================================================
// Listener Tests
// =========================================================================

type recordingListener struct {
	events []string
}

func (l *recordingListener) TypeRegistered(t *EntityType) {
	l.events = append(l.events, "type:"+t.Name)
}

func (l *recordingListener) FieldAdded(t *EntityType, f *Field) {
	l.events = append(l.events, "field:"+t.Name+"."+f.Name)
}

func (l *recordingListener) RelationshipAdded(r *Relationship) {
	l.events = append(l.events, "rel:"+r.Owner.Name+"."+r.Name)
}

func TestListenersSeeOnlySuccessfulMutations(t *testing.T) {
	l := &recordingListener{}
	r := New(WithListener(l))

	_, err := r.RegisterType("Person")
	require.NoError(t, err)
	_, err = r.RegisterType("Person")
	require.Error(t, err)
	_, err = r.RegisterType("House")
	require.NoError(t, err)
	require.NoError(t, r.AddField("Person", "name", ""))
	require.Error(t, r.AddField("Person", "name", ""))
	require.NoError(t, r.AddRelationship(OneToMany, "Person", "House", "houses", "owner"))
	require.Error(t, r.AddRelationship(ManyToMany, "Person", "House", "homes", ""))

	assert.Equal(t, []string{"type:Person", "type:House", "field:Person.name", "rel:Person.houses"}, l.events)
}

// =========================================================================
// Error Taxonomy Tests
// =========================================================================

func TestIsRegistryError(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.CreateInstance("Ghost", nil)
	assert.True(t, IsRegistryError(err))
	assert.False(t, IsRegistryError(errors.New("boom")))
	assert.False(t, IsRegistryError(nil))
}
