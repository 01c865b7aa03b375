// File: cmd/framesmith/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/xkilldash9x/framesmith/cmd"
	"github.com/xkilldash9x/framesmith/internal/figma"
	"github.com/xkilldash9x/framesmith/internal/observability"
)

const panicLogFile = "panic.log"

const banner = `
  framesmith %s
  Paste a design link to generate code, or type a command (help, exit).

`

// Function variables for mocking in tests.
var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
)

func main() {
	defer handlePanic()

	// Cancel on SIGINT/SIGTERM for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 {
		if err := cmd.Execute(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				osExit(0)
			} else {
				osExit(1)
			}
		}
		return
	}

	// -- Interactive Mode --
	fmt.Printf(banner, cmd.Version)
	if err := runShell(ctx, os.Stdin, os.Stdout, executeInteractiveCommand); err != nil {
		fmt.Fprintln(os.Stderr, "Error reading from stdin:", err)
		osExit(1)
	}
	fmt.Println("Exiting framesmith.")
}

// runShell reads lines until EOF, exit or quit and hands each one to exec.
func runShell(ctx context.Context, in io.Reader, out io.Writer, exec func(context.Context, []string)) error {
	scanner := bufio.NewScanner(in)
	// Pasted links can be long.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "framesmith > ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		exec(ctx, interactiveArgs(line))
		if ctx.Err() != nil {
			break
		}
	}
	return scanner.Err()
}

// interactiveArgs turns a shell line into command arguments. A pasted design
// link is shorthand for generate.
func interactiveArgs(line string) []string {
	if figma.LooksLikeDesignLink(line) {
		return []string{"generate", line}
	}
	return strings.Fields(line)
}

// executeInteractiveCommand runs one command on a fresh command tree so flags
// from one line never leak into the next.
func executeInteractiveCommand(ctx context.Context, args []string) {
	rootCmd := cmd.NewRootCommand()
	rootCmd.SetArgs(args)

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Error: Command panicked: %v\n", r)
		}
	}()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nCommand aborted.")
			return
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
}

// handlePanic records an unrecovered panic to panicLogFile and exits 1.
func handlePanic() {
	if r := recover(); r != nil {
		observability.Sync()

		panicMessage := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
		if err := osWriteFile(panicLogFile, []byte(panicMessage), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "CRITICAL: Failed to write panic log: %v\n", err)
			fmt.Fprintf(os.Stderr, "Panic details:\n%s\n", panicMessage)
			osExit(1)
			return
		}

		fmt.Fprintf(os.Stderr, "\nframesmith crashed. Details logged to %s\n", panicLogFile)
		osExit(1)
	}
}
