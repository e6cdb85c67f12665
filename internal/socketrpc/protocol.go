package socketrpc

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/tinytelemetry/guardbar/internal/block"
	"github.com/tinytelemetry/guardbar/internal/model"
)

// JSON-RPC 2.0 Method Reference
//
// The socket RPC server exposes model.BarAPI over a Unix domain socket.
// Each method maps 1:1 to the BarAPI interface.
//
//   Method     Params                  Result
//   ───────    ────────────────────    ─────────────────
//   Blocks     (none)                  []BlockView
//   Click      {Event: ClickEvent}     true
//   Refresh    {ID: string}            true
//
// Error codes follow JSON-RPC 2.0:
//   -32700  Parse error (malformed JSON)
//   -32601  Method not found
//   -32602  Invalid params
//   -32603  Internal error (marshal failure)
//   -32000  Application error
//   -32001  Unknown block id
//   -32002  Scheduler queue full
//   -32003  Scheduler stopped

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternal       = -32603
	codeApplication    = -32000
	codeUnknownBlock   = -32001
	codeQueueFull      = -32002
	codeStopped        = -32003
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return e.Message }

// Unwrap restores the sentinel behind an application error code so callers
// can match remote failures with errors.Is.
func (e *RPCError) Unwrap() error {
	switch e.Code {
	case codeUnknownBlock:
		return model.ErrUnknownBlock
	case codeQueueFull:
		return block.ErrQueueFull
	case codeStopped:
		return block.ErrSchedulerStopped
	default:
		return nil
	}
}

func applicationError(err error) *RPCError {
	code := codeApplication
	switch {
	case errors.Is(err, model.ErrUnknownBlock):
		code = codeUnknownBlock
	case errors.Is(err, block.ErrQueueFull):
		code = codeQueueFull
	case errors.Is(err, block.ErrSchedulerStopped):
		code = codeStopped
	}
	return &RPCError{Code: code, Message: err.Error()}
}

// DefaultSocketPath returns the default Unix socket path.
// It prefers $XDG_RUNTIME_DIR/guardbar/guardbar.sock, falling back to
// ~/.local/state/guardbar/guardbar.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "guardbar", "guardbar.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/guardbar.sock"
	}
	return filepath.Join(home, ".local", "state", "guardbar", "guardbar.sock")
}
