package input

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// NewFIFOSource reads click events from the named pipe at path, creating it
// when missing. Bars that cannot write to the process's stdin can write to
// the pipe instead.
func NewFIFOSource(ctx context.Context, path string, conf ...StdinConfig) (*StdinSource, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := syscall.Mkfifo(path, 0600); err != nil {
			return nil, fmt.Errorf("input: mkfifo %s: %w", path, err)
		}
	case err != nil:
		return nil, fmt.Errorf("input: stat %s: %w", path, err)
	case info.Mode()&os.ModeNamedPipe == 0:
		return nil, fmt.Errorf("input: %s is not a named pipe", path)
	}

	// O_RDWR keeps the pipe open across writers, so the reader never sees EOF
	// between clicks and the open does not block waiting for a writer.
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("input: open %s: %w", path, err)
	}

	s := newStdinSourceWithReader(ctx, f, conf...)
	s.name = "fifo"
	s.closer = f
	return s, nil
}
