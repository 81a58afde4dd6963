package migrate

import (
	"slices"
	"strings"

	"github.com/Konsultn-Engineering/dynschema/dialect"
	"github.com/Konsultn-Engineering/dynschema/schema"
)

const primaryKey = schema.PrimaryKeyColumn

// Journal records registry mutations as DDL operations. Subscribe it to a
// registry with schema.WithListener.
type Journal struct {
	dialect dialect.Dialect
	ops     []Op
	tables  []string
}

var _ schema.Listener = (*Journal)(nil)

func NewJournal(d dialect.Dialect) *Journal {
	return &Journal{dialect: d}
}

func (j *Journal) TypeRegistered(t *schema.EntityType) {
	j.record(CreateTable{Table: t.Table, PrimaryKey: primaryKey, KeyType: j.dialect.PrimaryKeyType()})
	j.tables = append(j.tables, t.Table)
}

func (j *Journal) FieldAdded(t *schema.EntityType, f *schema.Field) {
	j.record(AddColumn{
		Table:   t.Table,
		Column:  f.Column,
		Type:    j.dialect.ColumnType(f.Kind),
		Kind:    f.Kind,
		Default: f.Default,
	})
}

func (j *Journal) RelationshipAdded(r *schema.Relationship) {
	keyType := j.dialect.PrimaryKeyType()

	switch r.Kind {
	case schema.OneToMany:
		j.record(AddColumn{Table: r.Target.Table, Column: r.ForeignKey, Type: keyType})
		j.record(CreateForeignKey{
			Name:       "fk_" + r.Target.Table + "_" + strings.TrimSuffix(r.ForeignKey, "_id"),
			Source:     r.Target.Table,
			Referent:   r.Owner.Table,
			LocalCols:  []string{r.ForeignKey},
			RemoteCols: []string{primaryKey},
		})
	case schema.ManyToMany:
		ownerCol, targetCol := schema.JoinColumns(r)
		j.record(CreateJoinTable{
			Table:        r.JoinTable,
			OwnerTable:   r.Owner.Table,
			OwnerColumn:  ownerCol,
			TargetTable:  r.Target.Table,
			TargetColumn: targetCol,
			PrimaryKey:   primaryKey,
			KeyType:      keyType,
		})
		j.tables = append(j.tables, r.JoinTable)
	}
}

// Ops returns the recorded operations in order.
func (j *Journal) Ops() []Op {
	return slices.Clone(j.ops)
}

// Tables returns every table the journal created, in creation order.
func (j *Journal) Tables() []string {
	return slices.Clone(j.tables)
}

// SQL renders the journal as a script.
func (j *Journal) SQL() string {
	return Render(j.dialect, j.ops)
}

func (j *Journal) record(op Op) {
	j.ops = append(j.ops, op)
}
