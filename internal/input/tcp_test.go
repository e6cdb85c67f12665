package input

import (
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

// failingListener fails every Accept, like a process out of descriptors.
type failingListener struct {
	accepts atomic.Int32
	closed  chan struct{}
}

func (l *failingListener) Accept() (net.Conn, error) {
	l.accepts.Add(1)
	select {
	case <-l.closed:
		return nil, net.ErrClosed
	default:
		return nil, errors.New("accept: too many open files")
	}
}

func (l *failingListener) Close() error {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
	return nil
}

func (l *failingListener) Addr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}
}

func TestTCPSourceStartStop(t *testing.T) {
	src := NewTCPSource("127.0.0.1:0")
	if err := src.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	addr := src.Addr()
	if addr == "" || addr == "127.0.0.1:0" {
		t.Fatalf("Addr() = %q, want resolved address", addr)
	}

	src.Stop()
	src.Stop()

	select {
	case _, ok := <-src.Events():
		if ok {
			t.Fatal("expected closed events channel after Stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestTCPSourceReceivesClicks(t *testing.T) {
	src := NewTCPSource("127.0.0.1:0")
	if err := src.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer src.Stop()

	conn, err := net.Dial("tcp", src.Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	payload := "garbage\n" + `{"instance":"ks","button":2}` + "\n"
	if _, err := conn.Write([]byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ev := <-src.Events():
		if ev.ID != "ks" {
			t.Fatalf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for click")
	}
}

func TestTCPSourceStopWithOpenConnection(t *testing.T) {
	src := NewTCPSource("127.0.0.1:0")
	if err := src.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	conn, err := net.Dial("tcp", src.Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		src.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on an idle connection")
	}
}

func TestTCPSourceBacksOffOnAcceptErrors(t *testing.T) {
	src := NewTCPSource("127.0.0.1:0")
	ln := &failingListener{closed: make(chan struct{})}
	src.listener = ln
	src.wg.Add(1)
	go src.acceptLoop(ln)

	time.Sleep(100 * time.Millisecond)
	src.Stop()

	// 5+10+20+40ms of backoff fits in 100ms; a spinning loop would make
	// many thousands of calls.
	if n := ln.accepts.Load(); n > 10 {
		t.Fatalf("Accept called %d times in 100ms, want backoff", n)
	}
}
