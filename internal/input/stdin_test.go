package input

import (
	"context"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tinytelemetry/guardbar/internal/block"
)

func TestParseClick(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		want    block.ClickEvent
		wantOK  bool
		wantErr bool
	}{
		{name: "blank", line: "   "},
		{name: "array open", line: "["},
		{name: "array close", line: "]"},
		{
			name:   "plain object",
			line:   `{"instance":"abc","button":1,"x":10,"y":2}`,
			want:   block.ClickEvent{ID: "abc", Button: block.ButtonLeft, X: 10, Y: 2},
			wantOK: true,
		},
		{
			name:   "array element",
			line:   `,{"instance":"abc","button":3,"modifiers":["Shift"]}`,
			want:   block.ClickEvent{ID: "abc", Button: block.ButtonRight, Modifiers: []string{"Shift"}},
			wantOK: true,
		},
		{
			name:   "first element on the opening line",
			line:   `[{"instance":"abc","button":2}`,
			want:   block.ClickEvent{ID: "abc", Button: block.ButtonMiddle},
			wantOK: true,
		},
		{name: "garbage", line: "click!", wantErr: true},
		{name: "wrong types", line: `{"instance":7,"button":"left"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseClick([]byte(tt.line))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("event = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStdinSourceSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"[",
		`{"instance":"a","button":1}`,
		"not json",
		`,{"instance":"b","button":3}`,
		"",
	}, "\n")

	src := newStdinSourceWithReader(context.Background(), strings.NewReader(input))
	defer src.Stop()

	var ids []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-src.Events():
			if !ok {
				if want := []string{"a", "b"}; !reflect.DeepEqual(ids, want) {
					t.Fatalf("ids = %v, want %v", ids, want)
				}
				return
			}
			ids = append(ids, ev.ID)
		case <-timeout:
			t.Fatalf("timed out, got %v", ids)
		}
	}
}

func TestStdinSourceStopClosesEvents(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer func() { _ = w.Close() }()

	src := newStdinSourceWithReader(context.Background(), r)
	src.Stop()

	select {
	case _, ok := <-src.Events():
		if ok {
			t.Fatal("expected events channel to be closed after Stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events channel to close")
	}
}

func TestStdinSourceStopIsIdempotent(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer func() { _ = w.Close() }()

	src := newStdinSourceWithReader(context.Background(), r)
	src.Stop()
	src.Stop()
}
