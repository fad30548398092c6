// Package identity turns the primary-key values of a row into the string key
// used to match audit history against live content.
package identity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/revaudit/internal/row"
)

// Delimiter separates key components in the delimited encoding.
const Delimiter = "-"

// Encoding selects how key components are joined.
type Encoding string

const (
	// Delimited joins canonical values with Delimiter. NULL contributes
	// row.NullToken. A single value containing the delimiter can collide
	// with a multi-column tuple.
	Delimited Encoding = "delimited"

	// Tuple length-prefixes every component so distinct tuples never collide.
	Tuple Encoding = "tuple"
)

// tupleNull stands for NULL in the tuple encoding. It cannot be confused
// with a value because values always carry a length prefix.
const tupleNull = "~"

// ParseEncoding validates an encoding name. The empty string selects Delimited.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(s))) {
	case "", Delimited:
		return Delimited, nil
	case Tuple:
		return Tuple, nil
	default:
		return "", fmt.Errorf("unknown identity encoding %q: must be %q or %q", s, Delimited, Tuple)
	}
}

// Encoder computes identities. The zero value uses the Delimited encoding.
//
// Thread-safety: Encoder is immutable and safe for concurrent use.
type Encoder struct {
	Encoding Encoding
}

// Encode returns the identity of r for the given key columns, in order.
// Column lookups are case-insensitive. Encode is pure.
func (e Encoder) Encode(keyColumns []string, r row.Row) string {
	if e.Encoding == Tuple {
		return encodeTuple(keyColumns, r)
	}
	return encodeDelimited(keyColumns, r)
}

// Encode is shorthand for Encoder{}.Encode.
func Encode(keyColumns []string, r row.Row) string {
	return encodeDelimited(keyColumns, r)
}

func encodeDelimited(keyColumns []string, r row.Row) string {
	tokens := make([]string, len(keyColumns))
	for i, col := range keyColumns {
		v, _ := r.Get(col)
		tokens[i] = row.Format(v)
	}
	return strings.Join(tokens, Delimiter)
}

func encodeTuple(keyColumns []string, r row.Row) string {
	var b strings.Builder
	for i, col := range keyColumns {
		if i > 0 {
			b.WriteByte(',')
		}
		v, _ := r.Get(col)
		if v == nil {
			b.WriteString(tupleNull)
			continue
		}
		s := row.Format(v)
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	}
	return b.String()
}
