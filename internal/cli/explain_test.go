package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplain_Text(t *testing.T) {
	f := newNoteFixture(t)

	out, err := execute(NewExplainCommand(&RootOptions{Format: "text"}), "--config", writeConfig(t, f), "note_aud")
	require.NoError(t, err)
	assert.Equal(t, "NOTE_AUD\n"+
		"  key columns: ID\n"+
		"  snapshot: select * from NOTE NOTE\n"+
		"  history:  select * from NOTE_AUD NOTE_AUD order by NOTE_AUD.REV asc\n", out)
}

func TestExplain_AllTablesJSON(t *testing.T) {
	f := newNoteFixture(t)

	out, err := execute(NewExplainCommand(&RootOptions{Format: "json"}), "--config", writeConfig(t, f))
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			Table   string `json:"table"`
			History string `json:"history"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "NOTE_AUD", resp.Data[0].Table)
}

func TestExplain_UnknownTable(t *testing.T) {
	f := newNoteFixture(t)

	_, err := execute(NewExplainCommand(&RootOptions{Format: "text"}), "--config", writeConfig(t, f), "OTHER_AUD")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "OTHER_AUD is not configured")
}
