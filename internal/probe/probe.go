// Package probe implements the boolean checks blocks run against system state.
//
// A probe never panics on missing files or commands. Anything that prevents a
// definite answer comes back as *Error.
package probe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is wrapped by *Error when a probe exceeds its deadline.
var ErrTimeout = errors.New("probe timed out")

// Func answers one yes/no question about the system.
type Func func(ctx context.Context) (bool, error)

// Error reports that a probe could not be evaluated.
type Error struct {
	Probe string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Probe, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FileHasLine returns a probe that is true iff some line of path equals line
// exactly.
func FileHasLine(path, line string) Func {
	return func(_ context.Context) (bool, error) {
		f, err := os.Open(path)
		if err != nil {
			return false, &Error{Probe: path, Err: err}
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if scanner.Text() == line {
				return true, nil
			}
		}
		if err := scanner.Err(); err != nil {
			return false, &Error{Probe: path, Err: fmt.Errorf("read: %w", err)}
		}
		return false, nil
	}
}

// CommandOutputContains returns a probe that runs name with args under
// LC_ALL=C and is true iff any output line contains marker.
//
// A non-zero exit is only an error when the command printed nothing: service
// managers exit non-zero for inactive units but still report their status.
func CommandOutputContains(marker, name string, args ...string) Func {
	label := strings.TrimSpace(name + " " + strings.Join(args, " "))
	return func(ctx context.Context) (bool, error) {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Env = append(os.Environ(), "LC_ALL=C")
		out, err := cmd.Output()
		if ctx.Err() != nil {
			return false, &Error{Probe: label, Err: ctxError(ctx)}
		}
		if err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) || len(bytes.TrimSpace(out)) == 0 {
				return false, &Error{Probe: label, Err: err}
			}
		}

		scanner := bufio.NewScanner(bytes.NewReader(out))
		for scanner.Scan() {
			if strings.Contains(scanner.Text(), marker) {
				return true, nil
			}
		}
		return false, nil
	}
}

// All returns a probe that is true iff every probe is true. Evaluation stops
// at the first false answer or error.
func All(probes ...Func) Func {
	return func(ctx context.Context) (bool, error) {
		for _, p := range probes {
			ok, err := p(ctx)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// WithTimeout bounds fn by d. When the deadline passes first the caller gets
// an *Error wrapping ErrTimeout and fn is left to finish on its own. A zero or
// negative d disables the bound.
func WithTimeout(name string, fn Func, d time.Duration) Func {
	if d <= 0 {
		return fn
	}
	return func(ctx context.Context) (bool, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		type result struct {
			ok  bool
			err error
		}
		done := make(chan result, 1)
		go func() {
			ok, err := fn(ctx)
			done <- result{ok: ok, err: err}
		}()

		select {
		case r := <-done:
			return r.ok, r.err
		case <-ctx.Done():
			return false, &Error{Probe: name, Err: ctxError(ctx)}
		}
	}
}

func ctxError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ctx.Err()
}
