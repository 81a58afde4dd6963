package dialect

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Konsultn-Engineering/dynschema/schema"
)

type Postgres struct{}

func NewPostgresDialect() Dialect {
	return &Postgres{}
}

func (Postgres) Name() string {
	return "postgres"
}

func (Postgres) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (Postgres) RenderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		f := reflect.ValueOf(val).Float()
		switch {
		case math.IsNaN(f):
			return "'NaN'"
		case math.IsInf(f, 1):
			return "'Infinity'"
		case math.IsInf(f, -1):
			return "'-Infinity'"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case time.Time:
		return "'" + val.Format("2006-01-02 15:04:05.000000") + "'"
	case []byte:
		return fmt.Sprintf("E'\\\\x%x'", val) // hex bytea literal
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(val), "'", "''") + "'"
	}
}

// RenderColumnValue renders v for a column of the given kind. Text columns,
// which also hold fields of any kind, receive the text form of every scalar.
func (p Postgres) RenderColumnValue(kind schema.FieldKind, v any) string {
	if kind == schema.KindString || kind == schema.KindAny {
		return p.RenderValue(textOf(v))
	}
	return p.RenderValue(v)
}

func textOf(v any) any {
	switch val := v.(type) {
	case nil, string:
		return val
	case []byte:
		return string(val)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}

func (Postgres) ColumnType(kind schema.FieldKind) string {
	switch kind {
	case schema.KindString:
		return "TEXT"
	case schema.KindInt:
		return "BIGINT"
	case schema.KindFloat:
		return "DOUBLE PRECISION"
	case schema.KindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// PrimaryKeyType is TEXT since instance ids may be ULIDs, UUIDs or sequence
// numbers depending on the registry's generator.
func (Postgres) PrimaryKeyType() string {
	return "TEXT"
}
