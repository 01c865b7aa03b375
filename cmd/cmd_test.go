// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// quietConfig keeps command output free of log lines.
const quietConfig = `
logger:
  level: error
`

// executeCommand runs a fresh command tree with args and captures its output.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// writeConfig writes a YAML config file and returns the --config arguments for it.
func writeConfig(t *testing.T, content string) []string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "framesmith.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return []string{"--config", path}
}

// writeTempFile writes content to name inside a fresh temp directory.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
