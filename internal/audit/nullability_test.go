package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revaudit/internal/record"
	"github.com/roach88/revaudit/internal/row"
)

func exempt() map[string]struct{} {
	return ExemptColumns([]string{"id", "rev"}, []string{"REVTYPE"})
}

// Scenario E: a Remove row still carrying amount is reported with its revision.
func TestCheckRemoveNullability_ResidualData(t *testing.T) {
	h := record.History{"1": {
		add(1, row.Row{"ID": int64(1), "AMOUNT": int64(100)}),
		remove(4, row.Row{"ID": int64(1), "AMOUNT": int64(100)}),
	}}

	res, err := CheckRemoveNullability("ACCOUNT_AUD", h, types, exempt(), "REV")
	require.NoError(t, err)

	assert.True(t, res.Failed())
	assert.Equal(t, map[string][]string{"1": {"4"}}, res.Offending)
	assert.Equal(t, "audit table ACCOUNT_AUD has Remove revisions with non-null columns for identities: 1 (revisions 4)", res.Message())
}

func TestCheckRemoveNullability_CleanRemove(t *testing.T) {
	h := record.History{"1": {
		add(1, row.Row{"ID": int64(1), "AMOUNT": int64(100)}),
		remove(2, row.Row{"ID": int64(1), "AMOUNT": nil}),
	}}

	res, err := CheckRemoveNullability("ACCOUNT_AUD", h, types, exempt(), "REV")
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Empty(t, res.Message())
}

func TestCheckRemoveNullability_DeclaredNonNullExempt(t *testing.T) {
	h := record.History{"1": {
		add(1, row.Row{"ID": int64(1), "VERSION": int64(3)}),
		remove(2, row.Row{"ID": int64(1), "VERSION": int64(3)}),
	}}
	ex := ExemptColumns([]string{"ID", "REV", "REVTYPE"}, []string{"version"})

	res, err := CheckRemoveNullability("T_AUD", h, types, ex, "REV")
	require.NoError(t, err)
	assert.False(t, res.Failed())
}

func TestCheckRemoveNullability_NonRemoveRowsIgnored(t *testing.T) {
	h := record.History{"1": {
		add(1, row.Row{"ID": int64(1), "AMOUNT": int64(1)}),
		modify(2, row.Row{"ID": int64(1), "AMOUNT": int64(2)}),
	}}
	res, err := CheckRemoveNullability("T_AUD", h, types, exempt(), "REV")
	require.NoError(t, err)
	assert.False(t, res.Failed())
}

func TestCheckRemoveNullability_UnknownTypeIsConfigError(t *testing.T) {
	h := record.History{"1": {row.Row{"ID": int64(1)}}}
	_, err := CheckRemoveNullability("T_AUD", h, types, exempt(), "REV")
	assert.True(t, IsConfigError(err))
}

func TestCheckRemoveNullability_SortedIdentities(t *testing.T) {
	h := record.History{
		"2": {add(1, nil), remove(3, row.Row{"X": "a"})},
		"1": {add(2, nil), remove(5, row.Row{"X": "b"})},
	}
	res, err := CheckRemoveNullability("T_AUD", h, types, exempt(), "REV")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, res.Identities())
	assert.Contains(t, res.Message(), "1 (revisions 5); 2 (revisions 3)")
}
