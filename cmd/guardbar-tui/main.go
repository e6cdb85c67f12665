package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tinytelemetry/guardbar/internal/socketrpc"
	"github.com/tinytelemetry/guardbar/internal/theme"
	"github.com/tinytelemetry/guardbar/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var socketPath string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/guardbar/config.yml)")
	flag.StringVar(&socketPath, "socket", "", "override socket path to connect to the guardbar service")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Guardbar TUI - Bar Preview\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if socketPath != "" {
		cfg.SocketPath = socketPath
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	t, err := theme.Load(cfg.Theme, cfg.ThemeFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load theme '%s': %v (using default)\n", cfg.Theme, err)
		t, _ = theme.Builtin(theme.DefaultName)
	}

	client, err := socketrpc.Dial(cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("cannot connect to guardbar at %s: %w\nIs guardbar running with socket-enabled?", cfg.SocketPath, err)
	}
	defer client.Close()

	preview := tui.NewModel(client, t, cfg.UpdateInterval, "Socket")

	p := tea.NewProgram(preview, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
