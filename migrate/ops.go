// Package migrate mirrors registry mutations as DDL operations, in the order
// they happened, snapshots instances as data operations, and applies both to a
// live database.
package migrate

import (
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/dynschema/dialect"
	"github.com/Konsultn-Engineering/dynschema/schema"
)

// Op is a single schema operation.
type Op interface {
	SQL(d dialect.Dialect) string
	String() string
}

// CreateTable creates an entity table with a text primary key.
type CreateTable struct {
	Table      string
	PrimaryKey string
	KeyType    string
}

func (o CreateTable) SQL(d dialect.Dialect) string {
	q := d.QuoteIdentifier
	return fmt.Sprintf("CREATE TABLE %s (%s %s PRIMARY KEY)", q(o.Table), q(o.PrimaryKey), o.KeyType)
}

func (o CreateTable) String() string { return "create_table " + o.Table }

// AddColumn adds a column to an existing table.
type AddColumn struct {
	Table  string
	Column string
	Type   string
	// Kind is the field kind the default is rendered for.
	Kind schema.FieldKind
	// Default is rendered as the column default when non-nil.
	Default any
}

func (o AddColumn) SQL(d dialect.Dialect) string {
	q := d.QuoteIdentifier
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", q(o.Table), q(o.Column), o.Type)
	if o.Default != nil {
		stmt += " DEFAULT " + d.RenderColumnValue(o.Kind, o.Default)
	}
	return stmt
}

func (o AddColumn) String() string { return "add_column " + o.Table + "." + o.Column }

// CreateForeignKey adds a named foreign key constraint.
type CreateForeignKey struct {
	Name       string
	Source     string
	Referent   string
	LocalCols  []string
	RemoteCols []string
}

func (o CreateForeignKey) SQL(d dialect.Dialect) string {
	q := d.QuoteIdentifier
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		q(o.Source), q(o.Name), quoteList(d, o.LocalCols), q(o.Referent), quoteList(d, o.RemoteCols))
}

func (o CreateForeignKey) String() string { return "create_foreign_key " + o.Name }

// CreateJoinTable creates the association table of a many-to-many
// relationship.
type CreateJoinTable struct {
	Table        string
	OwnerTable   string
	OwnerColumn  string
	TargetTable  string
	TargetColumn string
	PrimaryKey   string
	KeyType      string
}

func (o CreateJoinTable) SQL(d dialect.Dialect) string {
	q := d.QuoteIdentifier
	return fmt.Sprintf(
		"CREATE TABLE %s (%s %s NOT NULL REFERENCES %s (%s), %s %s NOT NULL REFERENCES %s (%s), PRIMARY KEY (%s, %s))",
		q(o.Table),
		q(o.OwnerColumn), o.KeyType, q(o.OwnerTable), q(o.PrimaryKey),
		q(o.TargetColumn), o.KeyType, q(o.TargetTable), q(o.PrimaryKey),
		q(o.OwnerColumn), q(o.TargetColumn),
	)
}

func (o CreateJoinTable) String() string { return "create_join_table " + o.Table }

// DropTable drops a table and anything depending on it.
type DropTable struct {
	Table string
}

func (o DropTable) SQL(d dialect.Dialect) string {
	return "DROP TABLE IF EXISTS " + d.QuoteIdentifier(o.Table) + " CASCADE"
}

func (o DropTable) String() string { return "drop_table " + o.Table }

// DropTables returns drops for tables in reverse order, so association
// tables go before the tables they reference.
func DropTables(tables []string) []Op {
	ops := make([]Op, 0, len(tables))
	for i := len(tables) - 1; i >= 0; i-- {
		ops = append(ops, DropTable{Table: tables[i]})
	}
	return ops
}

// Render renders ops as a semicolon-terminated script.
func Render(d dialect.Dialect, ops []Op) string {
	var b strings.Builder
	for _, op := range ops {
		b.WriteString(op.SQL(d))
		b.WriteString(";\n")
	}
	return b.String()
}

func quoteList(d dialect.Dialect, cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}
