// Package dialect renders registry metadata as SQL for a target database.
package dialect

import "github.com/Konsultn-Engineering/dynschema/schema"

type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	RenderValue(v any) string
	// RenderColumnValue renders v for a column of the given field kind.
	RenderColumnValue(kind schema.FieldKind, v any) string
	// ColumnType maps a field kind to a column type.
	ColumnType(kind schema.FieldKind) string
	// PrimaryKeyType is the column type of generated instance ids.
	PrimaryKeyType() string
}
