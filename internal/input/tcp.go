package input

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"github.com/tinytelemetry/guardbar/internal/block"
)

// DefaultTCPMaxLineSize is the default maximum size (in bytes) of a single event line.
const DefaultTCPMaxLineSize = DefaultStdinMaxLineSize

// TCPConfig holds tunable parameters for the TCP source.
type TCPConfig struct {
	BufferSize  int
	MaxLineSize int
}

// TCPSource accepts newline-delimited JSON click events over TCP. Each
// connection may carry any number of events.
type TCPSource struct {
	listener    net.Listener
	addr        string
	ch          chan block.ClickEvent
	maxLineSize int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

// NewTCPSource creates a TCP source. It does not listen until Start.
func NewTCPSource(addr string, conf ...TCPConfig) *TCPSource {
	bufferSize := DefaultStdinBuffer
	maxLineSize := DefaultTCPMaxLineSize
	if len(conf) > 0 {
		if conf[0].BufferSize > 0 {
			bufferSize = conf[0].BufferSize
		}
		if conf[0].MaxLineSize > 0 {
			maxLineSize = conf[0].MaxLineSize
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TCPSource{
		addr:        addr,
		ch:          make(chan block.ClickEvent, bufferSize),
		maxLineSize: maxLineSize,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins accepting TCP connections.
func (s *TCPSource) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.wg.Add(1)
	go s.acceptLoop(listener)

	return nil
}

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// acceptLoop serves listener until Stop. Accept errors back off
// exponentially up to maxAcceptBackoff.
func (s *TCPSource) acceptLoop(listener net.Listener) {
	defer s.wg.Done()

	var backoff time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff = min(2*backoff, maxAcceptBackoff)
			}
			log.Printf("input: tcp: accept: %v; retrying in %s", err, backoff)
			select {
			case <-s.ctx.Done():
				return
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *TCPSource) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Unblock the scanner when the source stops.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-s.ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), s.maxLineSize)

	for scanner.Scan() {
		ev, ok, err := ParseClick(scanner.Bytes())
		if err != nil {
			log.Printf("input: tcp %s: skipping malformed click event: %v", conn.RemoteAddr(), err)
			continue
		}
		if !ok {
			continue
		}
		select {
		case s.ch <- ev:
		case <-s.ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil && s.ctx.Err() == nil {
		if errors.Is(err, bufio.ErrTooLong) {
			log.Printf("input: tcp: dropped connection %s due to line exceeding max size (%d bytes)", conn.RemoteAddr(), s.maxLineSize)
			return
		}
		log.Printf("input: tcp: scanner error from %s: %v", conn.RemoteAddr(), err)
	}
}

// Stop closes the listener and every open connection, then closes Events.
func (s *TCPSource) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		close(s.ch)
	})
}

// Addr returns the active listen address.
// Before Start, it returns the configured address.
func (s *TCPSource) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *TCPSource) Events() <-chan block.ClickEvent { return s.ch }
func (s *TCPSource) Name() string                    { return "tcp" }
