// Package ffmpeg runs compiled commands against the external engine and
// propagates its exit status unchanged.
package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"ffauto/command"
	"ffauto/internal/timeutil"
)

// EngineError reports a non-zero exit or a failed launch of the external
// engine. The engine's own diagnostics are passed through, not reinterpreted.
type EngineError struct {
	ExitCode int
	Err      error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ffmpeg exited with code %d: %v", e.ExitCode, e.Err)
	}
	return fmt.Sprintf("ffmpeg exited with code %d", e.ExitCode)
}

func (e *EngineError) Unwrap() error { return e.Err }

// Runner executes compiled invocations. The zero value runs against the real
// engine with default streams; tests and debug mode swap the fields.
type Runner struct {
	Logger zerolog.Logger

	// Confirm prints the full command line and waits for Enter before
	// starting the engine (debug mode).
	Confirm bool

	// Stdin and Stdout default to the process streams when nil.
	Stdin  io.Reader
	Stdout io.Writer
}

// Run starts the engine with the exact synthesized arguments, streams its
// output, and waits for completion. Engine output lines repeat while ffmpeg
// rewrites its progress line; consecutive duplicates are suppressed.
func (r *Runner) Run(ctx context.Context, c command.Compiled) error {
	stdout := r.stdout()

	if c.Note != "" {
		fmt.Fprintln(stdout, c.Note)
	}

	if r.Confirm {
		if err := r.confirm(c); err != nil {
			return err
		}
	}

	start := time.Now()

	cmd := exec.CommandContext(ctx, "ffmpeg", c.Args...)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pw.Close()
		return &EngineError{ExitCode: 1, Err: fmt.Errorf("failed to start ffmpeg: %w", err)}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		copyLines(stdout, pr)
	}()

	err := cmd.Wait()
	pw.Close()
	<-done

	if err != nil {
		code := 1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			code = exitErr.ExitCode()
		}
		return &EngineError{ExitCode: code, Err: err}
	}

	r.Logger.Info().
		Str("elapsed", timeutil.FormatSeconds(time.Since(start).Seconds())).
		Str("output", c.OutputPath).
		Msg("ffmpeg completed")
	return nil
}

// confirm prints the command for inspection and blocks until Enter.
func (r *Runner) confirm(c command.Compiled) error {
	stdout := r.stdout()
	stdin := r.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	fmt.Fprintln(stdout, "########################################")
	fmt.Fprintln(stdout, c.CommandLine())
	fmt.Fprintln(stdout, "########################################")
	fmt.Fprint(stdout, "Press Enter to continue...")

	if _, err := bufio.NewReader(stdin).ReadString('\n'); err != nil && err != io.EOF {
		return fmt.Errorf("confirmation aborted: %w", err)
	}
	fmt.Fprintln(stdout)
	return nil
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

// copyLines writes each line from r to w, dropping consecutive duplicates.
func copyLines(w io.Writer, r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	last := ""
	for scanner.Scan() {
		line := scanner.Text()
		if line == last {
			continue
		}
		fmt.Fprintln(w, line)
		last = line
	}
}
