package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/revaudit/internal/testutil"
)

// newNoteFixture creates one audited table with a consistent history for
// identity 1.
func newNoteFixture(t *testing.T) *testutil.EnversFixture {
	t.Helper()
	f := testutil.NewEnversFixture(t,
		`CREATE TABLE NOTE (ID INTEGER PRIMARY KEY, BODY TEXT)`,
		`CREATE TABLE NOTE_AUD (
			ID INTEGER NOT NULL,
			REV INTEGER NOT NULL REFERENCES REVINFO (REV),
			REVTYPE INTEGER,
			BODY TEXT,
			PRIMARY KEY (ID, REV)
		)`,
	)
	f.Audit("NOTE_AUD", testutil.RevAdd, map[string]any{"ID": 1, "BODY": "hello"})
	f.Put("NOTE", map[string]any{"ID": 1, "BODY": "hello"})
	return f
}

func writeConfig(t *testing.T, f *testutil.EnversFixture) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "revaudit.yaml")
	content := fmt.Sprintf(`database:
  driver: sqlite3
  dsn: %q
tables:
  - content: NOTE
`, f.Path)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs cmd with args and returns stdout and the command error.
// Diagnostic logs are discarded into a separate buffer.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
