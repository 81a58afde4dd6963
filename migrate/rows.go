package migrate

import (
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/dynschema/dialect"
	"github.com/Konsultn-Engineering/dynschema/schema"
)

// InsertRow inserts a single row with literal values. Kinds, parallel to
// Values, selects how each value is rendered.
type InsertRow struct {
	Table   string
	Columns []string
	Kinds   []schema.FieldKind
	Values  []any
}

func (o InsertRow) SQL(d dialect.Dialect) string {
	vals := make([]string, len(o.Values))
	for i, v := range o.Values {
		if i < len(o.Kinds) {
			vals[i] = d.RenderColumnValue(o.Kinds[i], v)
			continue
		}
		vals[i] = d.RenderValue(v)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdentifier(o.Table), quoteList(d, o.Columns), strings.Join(vals, ", "))
}

func (o InsertRow) String() string { return "insert " + o.Table }

// SetColumn updates one column of the row with the given primary key.
type SetColumn struct {
	Table  string
	Column string
	Value  any
	ID     string
}

func (o SetColumn) SQL(d dialect.Dialect) string {
	q := d.QuoteIdentifier
	return fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
		q(o.Table), q(o.Column), d.RenderValue(o.Value), q(primaryKey), d.RenderValue(o.ID))
}

func (o SetColumn) String() string { return "update " + o.Table + "." + o.Column }

// Rows snapshots the registry's instances and links as data operations:
// one insert per instance, then the foreign key of every one-to-many link,
// then one association row per many-to-many link. Foreign keys are set after
// all inserts so reference order between tables never matters.
func Rows(r *schema.Registry) []Op {
	var ops []Op

	for _, t := range r.Types() {
		instances, _ := r.Instances(t.Name)
		fields := t.Fields()
		cols := make([]string, 0, len(fields)+1)
		kinds := make([]schema.FieldKind, 0, len(fields)+1)
		cols = append(cols, primaryKey)
		kinds = append(kinds, schema.KindString)
		for _, f := range fields {
			cols = append(cols, f.Column)
			kinds = append(kinds, f.Kind)
		}
		for _, inst := range instances {
			vals := make([]any, 0, len(cols))
			vals = append(vals, inst.ID)
			for _, f := range fields {
				v, _ := inst.Get(f.Name)
				vals = append(vals, v)
			}
			ops = append(ops, InsertRow{Table: t.Table, Columns: cols, Kinds: kinds, Values: vals})
		}
	}

	for _, rel := range r.Relationships() {
		if rel.Kind != schema.OneToMany {
			continue
		}
		targets, _ := r.Instances(rel.Target.Name)
		for _, inst := range targets {
			if owner, ok := inst.OwnerOf(rel); ok {
				ops = append(ops, SetColumn{Table: rel.Target.Table, Column: rel.ForeignKey, Value: owner.ID, ID: inst.ID})
			}
		}
	}

	for _, rel := range r.Relationships() {
		if rel.Kind != schema.ManyToMany {
			continue
		}
		ownerCol, targetCol := schema.JoinColumns(rel)
		owners, _ := r.Instances(rel.Owner.Name)
		for _, owner := range owners {
			related, _ := r.Related(owner, rel.Name)
			for _, target := range related {
				ops = append(ops, InsertRow{
					Table:   rel.JoinTable,
					Columns: []string{ownerCol, targetCol},
					Values:  []any{owner.ID, target.ID},
				})
			}
		}
	}

	return ops
}
