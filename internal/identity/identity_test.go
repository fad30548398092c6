package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revaudit/internal/row"
)

func TestEncode_SingleColumnStable(t *testing.T) {
	r := row.Row{"ID": "5"}
	first := Encode([]string{"id"}, r)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Encode([]string{"id"}, r))
	}
	assert.Equal(t, "5", first)
}

func TestEncode_SameAcrossValueTypes(t *testing.T) {
	// Snapshot and history rows may arrive as int64 or []byte depending on driver.
	assert.Equal(t,
		Encode([]string{"ID"}, row.Row{"ID": int64(5)}),
		Encode([]string{"ID"}, row.Row{"ID": []byte("5")}),
	)
}

func TestEncode_MultiColumnOrder(t *testing.T) {
	r := row.Row{"A": int64(1), "B": "x"}
	assert.Equal(t, "1-x", Encode([]string{"a", "b"}, r))
	assert.Equal(t, "x-1", Encode([]string{"b", "a"}, r))
}

func TestEncode_NullPlaceholder(t *testing.T) {
	r := row.Row{"A": nil}
	assert.Equal(t, "null-null", Encode([]string{"A", "MISSING"}, r))
}

func TestEncode_DelimitedCollision(t *testing.T) {
	// Known limitation of the delimited form; the tuple form avoids it.
	single := Encode([]string{"A"}, row.Row{"A": "1-2"})
	pair := Encode([]string{"A", "B"}, row.Row{"A": "1", "B": "2"})
	assert.Equal(t, single, pair)
}

func TestEncoder_TupleInjective(t *testing.T) {
	enc := Encoder{Encoding: Tuple}

	single := enc.Encode([]string{"A"}, row.Row{"A": "1-2"})
	pair := enc.Encode([]string{"A", "B"}, row.Row{"A": "1", "B": "2"})
	assert.NotEqual(t, single, pair)

	null := enc.Encode([]string{"A"}, row.Row{"A": nil})
	literal := enc.Encode([]string{"A"}, row.Row{"A": "null"})
	assert.NotEqual(t, null, literal)
	assert.Equal(t, "~", null)
	assert.Equal(t, "4:null", literal)
}

func TestEncoder_ZeroValueIsDelimited(t *testing.T) {
	r := row.Row{"A": int64(1), "B": int64(2)}
	assert.Equal(t, Encode([]string{"A", "B"}, r), Encoder{}.Encode([]string{"A", "B"}, r))
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding("")
	require.NoError(t, err)
	assert.Equal(t, Delimited, enc)

	enc, err = ParseEncoding("TUPLE")
	require.NoError(t, err)
	assert.Equal(t, Tuple, enc)

	_, err = ParseEncoding("base64")
	assert.Error(t, err)
}
