// File: cmd/framesmith/main_test.go
package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetMocks restores the original function implementations.
func resetMocks() {
	osWriteFile = os.WriteFile
	osExit = os.Exit
}

func TestInteractiveArgs(t *testing.T) {
	testCases := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "pasted link runs generate",
			line: "https://www.figma.com/design/AbC123/Landing?node-id=1-2&t=xyz",
			want: []string{"generate", "https://www.figma.com/design/AbC123/Landing?node-id=1-2&t=xyz"},
		},
		{
			name: "command line is split on whitespace",
			line: "convert  frame.json --stdout",
			want: []string{"convert", "frame.json", "--stdout"},
		},
		{
			name: "link without node id is not a paste",
			line: "https://www.figma.com/design/AbC123/Landing",
			want: []string{"https://www.figma.com/design/AbC123/Landing"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, interactiveArgs(tc.line))
		})
	}
}

func TestRunShell(t *testing.T) {
	in := strings.NewReader("\nversion\n  https://www.figma.com/design/k/n?node-id=3-4  \nquit\nversion\n")
	var out bytes.Buffer
	var got [][]string

	err := runShell(context.Background(), in, &out, func(_ context.Context, args []string) {
		got = append(got, args)
	})

	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"version"},
		{"generate", "https://www.figma.com/design/k/n?node-id=3-4"},
	}, got)
	assert.Contains(t, out.String(), "framesmith > ")
}

func TestRunShell_StopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := strings.NewReader("version\nversion\n")
	calls := 0

	err := runShell(ctx, in, &bytes.Buffer{}, func(context.Context, []string) {
		calls++
		cancel()
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestHandlePanic(t *testing.T) {
	t.Cleanup(resetMocks)

	t.Run("writes the panic log and exits 1", func(t *testing.T) {
		var written string
		var exitCode = -1
		osWriteFile = func(name string, data []byte, _ os.FileMode) error {
			assert.Equal(t, panicLogFile, name)
			written = string(data)
			return nil
		}
		osExit = func(code int) { exitCode = code }

		func() {
			defer handlePanic()
			panic("converter exploded")
		}()

		assert.Equal(t, 1, exitCode)
		assert.True(t, strings.HasPrefix(written, "panic: converter exploded"))
		assert.Contains(t, written, "goroutine")
	})

	t.Run("exits 1 when the log cannot be written", func(t *testing.T) {
		var exitCode = -1
		osWriteFile = func(string, []byte, os.FileMode) error { return errors.New("read-only filesystem") }
		osExit = func(code int) { exitCode = code }

		func() {
			defer handlePanic()
			panic("boom")
		}()

		assert.Equal(t, 1, exitCode)
	})

	t.Run("does nothing without a panic", func(t *testing.T) {
		osExit = func(code int) { t.Fatalf("unexpected exit %d", code) }
		assert.NotPanics(t, func() {
			defer handlePanic()
		})
	})
}
