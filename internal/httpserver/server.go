package httpserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/guardbar/internal/block"
	"github.com/tinytelemetry/guardbar/internal/model"
)

// DefaultAddr is the loopback address the API listens on when none is given.
const DefaultAddr = "127.0.0.1:3010"

// Server provides an HTTP API for reading and driving the bar.
type Server struct {
	addr      string
	bar       model.BarAPI
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, bar model.BarAPI) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   addr,
		bar:    bar,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/blocks", s.handleBlocks)
	r.POST("/api/blocks/:id/click", s.handleClick)
	r.POST("/api/blocks/:id/refresh", s.handleRefresh)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.routes(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = listener.Addr().String()

	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Addr returns the listen address, resolved once Start has succeeded.
func (s *Server) Addr() string {
	return s.addr
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
		"blocks": len(s.bar.Blocks()),
	})
}

func (s *Server) handleBlocks(c *gin.Context) {
	blocks := s.bar.Blocks()
	c.JSON(http.StatusOK, gin.H{
		"blocks": blocks,
		"count":  len(blocks),
	})
}

func (s *Server) handleClick(c *gin.Context) {
	var req struct {
		Button    block.MouseButton `json:"button"`
		X         int               `json:"x"`
		Y         int               `json:"y"`
		Modifiers []string          `json:"modifiers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
		req.Button = block.ButtonLeft
	}

	ev := block.ClickEvent{
		ID:        c.Param("id"),
		Button:    req.Button,
		X:         req.X,
		Y:         req.Y,
		Modifiers: req.Modifiers,
	}
	if err := s.bar.Click(ev); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.bar.Refresh(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrUnknownBlock):
		return http.StatusNotFound
	case errors.Is(err, block.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, block.ErrSchedulerStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
