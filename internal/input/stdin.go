package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"

	"github.com/tinytelemetry/guardbar/internal/block"
)

const (
	// DefaultStdinBuffer is the default channel buffer size for click events.
	DefaultStdinBuffer = 64

	// DefaultStdinMaxLineSize is the default maximum size (in bytes) of a single event line.
	DefaultStdinMaxLineSize = 64 * 1024
)

// StdinConfig holds tunable parameters for the stdin source.
type StdinConfig struct {
	BufferSize  int
	MaxLineSize int
}

// StdinSource reads JSON click events, one per line, from stdin. Streams
// framed as an endless JSON array ("[", then ",{...}" lines) are accepted.
type StdinSource struct {
	name   string
	ch     chan block.ClickEvent
	cancel context.CancelFunc
	closer io.Closer
}

// NewStdinSource creates a StdinSource that reads from stdin in a background goroutine.
func NewStdinSource(ctx context.Context, conf ...StdinConfig) *StdinSource {
	return newStdinSourceWithReader(ctx, os.Stdin, conf...)
}

func newStdinSourceWithReader(ctx context.Context, r io.Reader, conf ...StdinConfig) *StdinSource {
	bufferSize := DefaultStdinBuffer
	maxLineSize := DefaultStdinMaxLineSize
	if len(conf) > 0 {
		if conf[0].BufferSize > 0 {
			bufferSize = conf[0].BufferSize
		}
		if conf[0].MaxLineSize > 0 {
			maxLineSize = conf[0].MaxLineSize
		}
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &StdinSource{
		name:   "stdin",
		ch:     make(chan block.ClickEvent, bufferSize),
		cancel: cancel,
	}
	go s.read(ctx, r, maxLineSize)
	return s
}

func (s *StdinSource) read(ctx context.Context, r io.Reader, maxLineSize int) {
	defer close(s.ch)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	// The scan blocks in its own goroutine so Stop is observed without
	// waiting for the next line.
	lines := make(chan []byte)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				log.Printf("input: stdin line exceeded max size (%d bytes), stopping stdin source", maxLineSize)
				return
			}
			log.Printf("input: stdin scanner error: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			ev, ok, err := ParseClick(line)
			if err != nil {
				log.Printf("input: stdin: skipping malformed click event: %v", err)
				continue
			}
			if !ok {
				continue
			}
			select {
			case s.ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// ParseClick decodes one line of a click stream. It reports false for lines
// that carry no event, such as blank lines or the opening "[" of an array.
func ParseClick(line []byte) (block.ClickEvent, bool, error) {
	line = bytes.TrimSpace(line)
	line = bytes.TrimPrefix(line, []byte("["))
	line = bytes.TrimSpace(line)
	line = bytes.TrimPrefix(line, []byte(","))
	line = bytes.TrimSpace(line)
	line = bytes.TrimSuffix(line, []byte("]"))
	line = bytes.TrimSuffix(line, []byte(","))
	if len(line) == 0 {
		return block.ClickEvent{}, false, nil
	}

	var ev block.ClickEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		return block.ClickEvent{}, false, err
	}
	return ev, true, nil
}

func (s *StdinSource) Events() <-chan block.ClickEvent { return s.ch }
func (s *StdinSource) Name() string                    { return s.name }

func (s *StdinSource) Stop() {
	s.cancel()
	if s.closer != nil {
		_ = s.closer.Close()
	}
}
