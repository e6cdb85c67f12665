package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tinytelemetry/guardbar/internal/widget"
)

func TestBuiltin(t *testing.T) {
	th, err := Builtin("")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	if th.Name != DefaultName {
		t.Errorf("Name = %q, want %q", th.Name, DefaultName)
	}
	if th.Color(widget.Critical) == "" {
		t.Error("default theme has no critical colour")
	}

	if _, err := Builtin("neon"); err == nil {
		t.Error("expected error for unknown built-in theme")
	}
}

func TestBuiltinReturnsCopies(t *testing.T) {
	a, _ := Builtin("plain")
	b, _ := Builtin("plain")
	a.icons["firewall"] = "changed"
	if b.Icon("firewall") != "FW" {
		t.Fatal("built-in themes share state")
	}
}

func TestParseOverridesBase(t *testing.T) {
	data := []byte(`
extends: plain
separator: " :: "
icons:
  firewall: "F"
colors:
  critical: "#ff0000"
  OK: "#00ff00"
`)
	th, err := Parse("default", data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if th.Name != "plain" {
		t.Errorf("Name = %q, want plain", th.Name)
	}
	if th.Separator != " :: " {
		t.Errorf("Separator = %q", th.Separator)
	}
	if th.Icon("firewall") != "F" {
		t.Errorf("Icon(firewall) = %q, want F", th.Icon("firewall"))
	}
	if th.Icon("killswitch") != "KS" {
		t.Errorf("Icon(killswitch) = %q, want KS from base", th.Icon("killswitch"))
	}
	if th.Color(widget.Critical) != "#ff0000" {
		t.Errorf("Color(critical) = %q", th.Color(widget.Critical))
	}
	if th.Color(widget.Good) != "#00ff00" {
		t.Errorf("Color(good) = %q", th.Color(widget.Good))
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	if _, err := Parse("default", []byte("colours:\n  good: red\n")); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseEmptyKeepsBase(t *testing.T) {
	th, err := Parse("plain", nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if th.Name != "plain" {
		t.Errorf("Name = %q, want plain", th.Name)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yml")
	if err := os.WriteFile(path, []byte("name: mine\nicons:\n  killswitch: K\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	th, err := Load("default", path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if th.Name != "mine" || th.Icon("killswitch") != "K" {
		t.Fatalf("Load = %+v", th)
	}

	if _, err := Load("default", filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Fatal("expected error for missing theme file")
	}
}

func TestNilThemeFallbacks(t *testing.T) {
	var th *Theme
	if th.Icon("firewall") != "firewall" {
		t.Error("nil theme should fall back to the icon key")
	}
	if th.Color(widget.Good) != "" {
		t.Error("nil theme should have no colours")
	}
}
