package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_Text(t *testing.T) {
	f := newNoteFixture(t)
	f.Exec(`CREATE TABLE TAG_AUD (ID INTEGER, REV INTEGER)`)

	out, err := execute(NewDiscoverCommand(&RootOptions{Format: "text"}), "--config", writeConfig(t, f))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"TABLE", "CONFIGURED", "FOUND", "BY"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"NOTE_AUD", "yes", "suffix,", "foreign", "key"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"TAG_AUD", "no", "suffix"}, strings.Fields(lines[2]))
}

func TestDiscover_JSON(t *testing.T) {
	f := newNoteFixture(t)

	out, err := execute(NewDiscoverCommand(&RootOptions{Format: "json"}), "--config", writeConfig(t, f))
	require.NoError(t, err)

	var resp struct {
		Data []struct {
			Table      string `json:"table"`
			Configured bool   `json:"configured"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "NOTE_AUD", resp.Data[0].Table)
	assert.True(t, resp.Data[0].Configured)
}
