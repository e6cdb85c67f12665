package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/guardbar/internal/block"
	"github.com/tinytelemetry/guardbar/internal/model"
	"github.com/tinytelemetry/guardbar/internal/widget"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBar struct {
	mu        sync.Mutex
	views     []model.BlockView
	clicks    []block.ClickEvent
	refreshed []string
	err       error
}

func (b *fakeBar) Blocks() []model.BlockView { return b.views }

func (b *fakeBar) known(id string) bool {
	for _, v := range b.views {
		if v.ID == id {
			return true
		}
	}
	return false
}

func (b *fakeBar) Click(ev block.ClickEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.known(ev.ID) {
		return fmt.Errorf("%w: %q", model.ErrUnknownBlock, ev.ID)
	}
	if b.err != nil {
		return b.err
	}
	b.clicks = append(b.clicks, ev)
	return nil
}

func (b *fakeBar) Refresh(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.known(id) {
		return fmt.Errorf("%w: %q", model.ErrUnknownBlock, id)
	}
	if b.err != nil {
		return b.err
	}
	b.refreshed = append(b.refreshed, id)
	return nil
}

func newTestServer(t *testing.T) (*fakeBar, *gin.Engine) {
	t.Helper()
	bar := &fakeBar{views: []model.BlockView{
		{ID: "fw", Kind: "firewall", Segments: []widget.Segment{{Icon: "firewall", State: widget.Good}}},
		{ID: "ks", Kind: "killswitch", Segments: []widget.Segment{{Icon: "killswitch", Text: "down", State: widget.Critical}}},
	}}
	srv := NewServer("", bar)
	srv.startTime = time.Now()
	return bar, srv.routes()
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	w := do(r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal health: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("health status = %v, want ok", body["status"])
	}
	if body["blocks"] != float64(2) {
		t.Errorf("blocks = %v, want 2", body["blocks"])
	}
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	_, r := newTestServer(t)

	w := do(r, http.MethodPost, "/api/health", "")
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("health POST status = %d, want 405 or 404", w.Code)
	}
}

func TestBlocksEndpoint(t *testing.T) {
	_, r := newTestServer(t)

	w := do(r, http.MethodGet, "/api/blocks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("blocks status = %d, body: %s", w.Code, w.Body.String())
	}

	var body struct {
		Blocks []model.BlockView `json:"blocks"`
		Count  int               `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal blocks: %v", err)
	}
	if body.Count != 2 || len(body.Blocks) != 2 {
		t.Fatalf("blocks = %+v", body)
	}
	seg := body.Blocks[1].Segments[0]
	if body.Blocks[1].Kind != "killswitch" || seg.State != widget.Critical || seg.Text != "down" {
		t.Errorf("killswitch view = %+v", body.Blocks[1])
	}
}

func TestClickEndpoint(t *testing.T) {
	bar, r := newTestServer(t)

	w := do(r, http.MethodPost, "/api/blocks/fw/click", `{"button": 3, "x": 4, "modifiers": ["Shift"]}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("click status = %d, body: %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodPost, "/api/blocks/ks/click", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("empty click status = %d, body: %s", w.Code, w.Body.String())
	}

	if len(bar.clicks) != 2 {
		t.Fatalf("clicks = %+v", bar.clicks)
	}
	if got := bar.clicks[0]; got.ID != "fw" || got.Button != block.ButtonRight || got.X != 4 || len(got.Modifiers) != 1 {
		t.Errorf("first click = %+v", got)
	}
	if got := bar.clicks[1]; got.ID != "ks" || got.Button != block.ButtonLeft {
		t.Errorf("empty body click = %+v, want left click on ks", got)
	}
}

func TestClickEndpoint_Errors(t *testing.T) {
	bar, r := newTestServer(t)

	tests := []struct {
		name string
		path string
		body string
		err  error
		want int
	}{
		{"unknown block", "/api/blocks/vpn/click", "", nil, http.StatusNotFound},
		{"invalid body", "/api/blocks/fw/click", "{", nil, http.StatusBadRequest},
		{"queue full", "/api/blocks/fw/click", "", &block.ScheduleError{BlockID: "fw", Err: block.ErrQueueFull}, http.StatusTooManyRequests},
		{"stopped", "/api/blocks/fw/click", "", &block.ScheduleError{BlockID: "fw", Err: block.ErrSchedulerStopped}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar.err = tt.err
			w := do(r, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d; body: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRefreshEndpoint(t *testing.T) {
	bar, r := newTestServer(t)

	w := do(r, http.MethodPost, "/api/blocks/ks/refresh", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("refresh status = %d, body: %s", w.Code, w.Body.String())
	}
	if len(bar.refreshed) != 1 || bar.refreshed[0] != "ks" {
		t.Errorf("refreshed = %v", bar.refreshed)
	}

	w = do(r, http.MethodPost, "/api/blocks/nope/refresh", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown refresh status = %d, want 404", w.Code)
	}
}

func TestRefreshEndpoint_WrongMethod(t *testing.T) {
	_, r := newTestServer(t)

	w := do(r, http.MethodGet, "/api/blocks/ks/refresh", "")
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("refresh GET status = %d, want 405 or 404", w.Code)
	}
}

func TestStartAndStop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", &fakeBar{})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { _ = srv.Stop() }()

	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
}

func TestGinRecovery(t *testing.T) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("panic recovery status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
