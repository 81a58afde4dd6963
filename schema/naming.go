package schema

import (
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"

	"github.com/Konsultn-Engineering/dynschema/cache"
)

// pluralizeClient is shared so pluralization rules are consistent across registries.
var pluralizeClient = pluralizer.NewClient()

// NamingStrategy decides the database names an entity type and its fields
// are mirrored under.
type NamingStrategy interface {
	// TableName converts an entity type name to a table name.
	TableName(typeName string) string
	// ColumnName converts a field name to a column name.
	ColumnName(fieldName string) string
}

// TableNamingType represents the table naming conventions on offer.
type TableNamingType int

const (
	TableSnakeCasePlural   TableNamingType = iota // people, blog_posts
	TableSnakeCaseSingular                        // person, blog_post
	TableCamelCasePlural                          // people, blogPosts
)

// ParseTableNaming maps a configuration value to a TableNamingType.
// Unknown values fall back to TableSnakeCasePlural.
func ParseTableNaming(s string) TableNamingType {
	switch strings.ToLower(s) {
	case "snake_singular":
		return TableSnakeCaseSingular
	case "camel_plural":
		return TableCamelCasePlural
	default:
		return TableSnakeCasePlural
	}
}

type namingStrategy struct {
	tables TableNamingType
}

// NewNamingStrategy creates a strategy with snake_case columns and the given
// table convention.
func NewNamingStrategy(tables TableNamingType) NamingStrategy {
	return &namingStrategy{tables: tables}
}

// DefaultNamingStrategy returns snake_case columns with plural snake_case tables.
func DefaultNamingStrategy() NamingStrategy {
	return NewNamingStrategy(TableSnakeCasePlural)
}

func (n *namingStrategy) TableName(typeName string) string {
	switch n.tables {
	case TableSnakeCaseSingular:
		return toSnakeCase(typeName)
	case TableCamelCasePlural:
		return pluralize(toCamelCase(typeName))
	default:
		return pluralize(toSnakeCase(typeName))
	}
}

func (n *namingStrategy) ColumnName(fieldName string) string {
	return toSnakeCase(fieldName)
}

// cachedNaming memoises a strategy. Names are resolved on every type
// registration and relationship declaration, so a bounded LRU keeps repeated
// lookups off the pluralizer.
type cachedNaming struct {
	inner   NamingStrategy
	tables  *cache.Memo[string, string]
	columns *cache.Memo[string, string]
}

func newCachedNaming(inner NamingStrategy, size int) NamingStrategy {
	if size <= 0 {
		return inner
	}
	tables, err := cache.NewMemo[string, string](size)
	if err != nil {
		return inner
	}
	columns, err := cache.NewMemo[string, string](size)
	if err != nil {
		return inner
	}
	return &cachedNaming{inner: inner, tables: tables, columns: columns}
}

func (c *cachedNaming) TableName(typeName string) string {
	return c.tables.GetOrCompute(typeName, c.inner.TableName)
}

func (c *cachedNaming) ColumnName(fieldName string) string {
	return c.columns.GetOrCompute(fieldName, c.inner.ColumnName)
}

// foreignKeyColumns lists, in order of preference, the columns on the
// "many" table that may reference the owner of a one-to-many relationship:
// owner_id for a backref named owner, otherwise the singular owner table
// followed by _id. The fallback prefixes the relationship name, so two
// relationships between the same types get distinct columns.
func foreignKeyColumns(n NamingStrategy, rel *Relationship) []string {
	ownerID := singularize(toSnakeCase(rel.Owner.Name)) + "_id"
	fallback := n.ColumnName(rel.Name) + "_" + ownerID
	if rel.Backref != "" {
		return []string{n.ColumnName(rel.Backref) + "_id", fallback}
	}
	return []string{ownerID, fallback}
}

// joinTableName names the association table of a many-to-many relationship.
func joinTableName(rel *Relationship) string {
	return rel.Owner.Table + "_" + toSnakeCase(rel.Name)
}

// JoinColumns returns the owner and target column names of a many-to-many
// association table. Self-referential relationships are disambiguated with
// the side names.
func JoinColumns(rel *Relationship) (ownerCol, targetCol string) {
	if rel.Owner == rel.Target {
		return toSnakeCase(rel.Backref) + "_id", toSnakeCase(rel.Name) + "_id"
	}
	return singularize(toSnakeCase(rel.Owner.Name)) + "_id", singularize(toSnakeCase(rel.Target.Name)) + "_id"
}

// toSnakeCase converts any naming convention to snake_case, keeping acronyms
// together: "ID" -> "id", "UserID" -> "user_id", "HTTPServer" -> "http_server".
func toSnakeCase(name string) string {
	if name == "" {
		return ""
	}
	if strings.Contains(name, "_") && !hasUpperCase(name) {
		return name
	}

	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// toCamelCase converts any naming convention to camelCase.
func toCamelCase(name string) string {
	parts := strings.Split(toSnakeCase(name), "_")
	var b strings.Builder
	b.Grow(len(name))
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

func pluralize(name string) string {
	if name == "" {
		return ""
	}
	return preserveCase(name, pluralizeClient.Plural(name))
}

func singularize(name string) string {
	if name == "" {
		return ""
	}
	return preserveCase(name, pluralizeClient.Singular(name))
}

func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// preserveCase keeps an all-lowercase input lowercase after pluralization.
func preserveCase(original, result string) string {
	if strings.ToLower(original) == original {
		return strings.ToLower(result)
	}
	return result
}
