// Package row holds the in-memory representation of a database row read
// from a content or audit table, plus the value helpers every other package
// relies on: column-name normalization, canonical string formatting and the
// null-aware comparison used when reconciling audit rows against content.
package row

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NullToken is the canonical string form of a SQL NULL.
const NullToken = "null"

// Row maps normalized column names to scalar values.
// A nil value is SQL NULL.
type Row map[string]any

var upper = cases.Upper(language.Und)

// Normalize returns the canonical (upper-case) form of an identifier.
// Table and column names are compared case-insensitively everywhere.
func Normalize(name string) string {
	return upper.String(strings.TrimSpace(name))
}

// Get returns the value of a column, looking it up case-insensitively.
// The second return is false when the column is absent from the row.
func (r Row) Get(column string) (any, bool) {
	v, ok := r[Normalize(column)]
	return v, ok
}

// Columns returns the row's column names in no particular order.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	return cols
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Value normalizes a value scanned from a database driver.
// []byte becomes string and the narrower numeric types widen to int64 or
// float64 so values read through different drivers compare equal.
func Value(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}

// Format returns the canonical, locale-independent string form of a value.
// It is stable across calls and drivers, which is what identity encoding needs.
func Format(v any) string {
	switch val := Value(v).(type) {
	case nil:
		return NullToken
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Compare orders two values with NULL sorting first.
// Two NULLs compare equal; NULL against a value is never equal.
// Numbers of different Go types compare numerically. Values of unrelated
// types fall back to comparing their canonical string forms.
func Compare(a, b any) int {
	a, b = Value(a), Value(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if x, ok := numeric(a); ok {
		if y, ok := numeric(b); ok {
			return x.Cmp(y)
		}
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case []byte:
		if y, ok := b.([]byte); ok {
			return bytes.Compare(x, y)
		}
	}

	return strings.Compare(Format(a), Format(b))
}

// Equal reports whether two values compare equal under Compare.
func Equal(a, b any) bool {
	return Compare(a, b) == 0
}

func numeric(v any) (*big.Float, bool) {
	switch val := v.(type) {
	case int64:
		return new(big.Float).SetInt64(val), true
	case uint64:
		return new(big.Float).SetUint64(val), true
	case float64:
		if math.IsNaN(val) {
			return nil, false
		}
		return big.NewFloat(val), true
	default:
		return nil, false
	}
}
