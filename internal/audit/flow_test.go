package audit

import (
	"regexp"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revaudit/internal/record"
	"github.com/roach88/revaudit/internal/row"
)

func TestValidateFlow_Table(t *testing.T) {
	tests := []struct {
		name  string
		rows  []row.Row
		valid bool
	}{
		{"add", []row.Row{add(1, nil)}, true},
		{"add modify modify", []row.Row{add(1, nil), modify(2, nil), modify(3, nil)}, true},
		{"add remove", []row.Row{add(1, nil), remove(2, nil)}, true},
		{"add modify remove", []row.Row{add(1, nil), modify(2, nil), remove(3, nil)}, true},
		{"modify first", []row.Row{modify(1, nil)}, false},
		{"remove first", []row.Row{remove(1, nil)}, false},
		{"double add", []row.Row{add(1, nil), add(2, nil)}, false},
		{"modify after remove", []row.Row{add(1, nil), remove(2, nil), modify(3, nil)}, false},
		{"add after remove", []row.Row{add(1, nil), remove(2, nil), add(3, nil)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateFlow("T_AUD", record.History{"1": tt.rows}, types)
			require.NoError(t, err)
			assert.Equal(t, !tt.valid, res.Failed())
		})
	}
}

// Scenario D: a history starting with Modify is invalid.
func TestValidateFlow_ModifyWithoutAdd(t *testing.T) {
	h := record.History{
		"1": {add(1, nil), modify(2, nil)},
		"2": {modify(3, nil)},
	}
	res, err := ValidateFlow("ACCOUNT_AUD", h, types)
	require.NoError(t, err)

	assert.Equal(t, []string{"2"}, res.Invalid)
	assert.Contains(t, res.Message(), "ACCOUNT_AUD")
	assert.Contains(t, res.Message(), ": 2")
}

func TestValidateFlow_ReportsAllOffenders(t *testing.T) {
	h := record.History{
		"3": {remove(1, nil)},
		"1": {modify(2, nil)},
		"2": {add(3, nil)},
	}
	res, err := ValidateFlow("T_AUD", h, types)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, res.Invalid)
}

func TestValidateFlow_UnknownTypeIsConfigError(t *testing.T) {
	h := record.History{"1": {row.Row{"REV": int64(1)}}}

	_, err := ValidateFlow("T_AUD", h, types)
	require.Error(t, err)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeUnmappedRevisionType, ce.Code)
	assert.Equal(t, "T_AUD", ce.Table)
	assert.True(t, IsConfigError(err))
}

func TestValidateFlow_UnmappedValueIsConfigError(t *testing.T) {
	h := record.History{"1": {auditRow(1, 7, nil)}}
	_, err := ValidateFlow("T_AUD", h, types)
	assert.True(t, IsConfigError(err))
}

func TestValidateFlow_EmptyHistoryPasses(t *testing.T) {
	res, err := ValidateFlow("T_AUD", record.History{}, types)
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Empty(t, res.Message())
}

var legalFlow = regexp.MustCompile(`^AM*R?$`)

func TestProperty_FlowLanguage(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("flow passes iff history matches Add Modify* Remove?", prop.ForAll(
		func(kinds []int) bool {
			if len(kinds) == 0 {
				return true
			}
			var word strings.Builder
			rows := make([]row.Row, len(kinds))
			for i, k := range kinds {
				rows[i] = auditRow(int64(i+1), int64(k), nil)
				word.WriteByte("AMR"[k])
			}

			res, err := ValidateFlow("T_AUD", record.History{"1": rows}, types)
			if err != nil {
				return false
			}
			return res.Failed() != legalFlow.MatchString(word.String())
		},
		gen.SliceOf(gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}
