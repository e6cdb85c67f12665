package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/tinytelemetry/guardbar/internal/block"
	"github.com/tinytelemetry/guardbar/internal/httpserver"
	"github.com/tinytelemetry/guardbar/internal/input"
	"github.com/tinytelemetry/guardbar/internal/render"
	"github.com/tinytelemetry/guardbar/internal/scheduler"
	"github.com/tinytelemetry/guardbar/internal/socketrpc"
	"golang.org/x/sync/errgroup"
)

// runBar builds the configured blocks and drives them until SIGINT/SIGTERM.
// The bar line goes to stdout; logs go to the state directory.
func runBar(cfg appConfig) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	t, err := loadTheme(cfg)
	if err != nil {
		return err
	}
	shared := block.Shared{Theme: t, ProbeTimeout: cfg.ProbeTimeout}

	reg, err := newRegistry()
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Config{
		RetryInterval: cfg.RetryInterval,
		QueueSize:     cfg.QueueSize,
	})
	if n := buildBlocks(reg, sched, shared, cfg.Blocks); n == 0 {
		log.Printf("bar: no usable blocks configured, rendering an empty bar")
	}

	// Start HTTP API server if enabled
	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, sched)
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	// Start socket RPC server for the preview TUI
	socketUp := false
	if cfg.SocketEnabled {
		sockServer := socketrpc.NewServer(cfg.SocketPath, sched)
		if err := sockServer.Start(); err != nil {
			log.Printf("Warning: failed to start socket server: %v", err)
		} else {
			socketUp = true
			defer sockServer.Stop()
		}
	}

	// Set up context and signal handling before errgroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Printf("bar: shutting down")
		cancel()

		// Shutdown deadline starts now, not at boot.
		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			log.Printf("bar: forced shutdown")
		case <-deadline.C:
			log.Printf("bar: shutdown timed out, forcing exit")
		}
		cleanupSocket(cfg.SocketPath)
		os.Exit(1)
	}()

	// Build input plugins and source multiplexer
	plugins := buildInputPlugins(InputPluginConfig{
		StdinClicks:  cfg.StdinClicks,
		ClickFIFO:    cfg.ClickFIFO,
		ClickTCPAddr: cfg.ClickTCPAddr,
	})

	sources := make([]input.Source, 0, len(plugins))
	for _, plugin := range plugins {
		if !plugin.Enabled() {
			continue
		}
		src, err := plugin.Build(ctx)
		if err != nil {
			log.Printf("Error initializing input plugin %q: %v", plugin.Name(), err)
			continue
		}
		sources = append(sources, src)
	}

	mux := input.NewMultiplexer(ctx, sources, cfg.MuxBufferSize)
	mux.Start()

	line := render.NewLine(os.Stdout, t, render.Config{NoColor: cfg.NoColor})

	if isatty.IsTerminal(os.Stderr.Fd()) {
		printStartupBanner(cfg, sched.Len(), mux.Names(), socketUp)
	}

	// Use errgroup for concurrent goroutine lifecycle management.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sched.Run(gctx)
	})

	g.Go(func() error {
		return line.Run(gctx, sched, sched.Redraw())
	})

	// Click routing loop
	if mux.HasSources() {
		g.Go(func() error {
			for ev := range mux.Events() {
				if err := sched.Click(ev); err != nil {
					log.Printf("bar: click: %v", err)
				}
			}
			return nil
		})
	}

	// Wait for context cancellation (from signal handler) in the errgroup
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("bar: errgroup exited with error: %v", err)
	}

	cancel()
	mux.Stop()

	// If we reach here, graceful shutdown succeeded within the deadline.
	// The signal goroutine (if active) dies with the process.
	signal.Stop(sigCh)

	return nil
}

func cleanupSocket(path string) {
	if path != "" {
		os.Remove(path)
	}
}

func configureRuntimeLogger() func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "guardbar")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logPath := filepath.Join(logDir, "guardbar.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}

// printStartupBanner writes a summary to stderr. Stdout carries the bar.
func printStartupBanner(cfg appConfig, blockCount int, inputs []string, socketUp bool) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔═╗╦ ╦╔═╗╦═╗╔╦╗╔╗ ╔═╗╦═╗
    ║ ╦║ ║╠═╣╠╦╝ ║║╠╩╗╠═╣╠╦╝
    ╚═╝╚═╝╩ ╩╩╚══╩╝╚═╝╩ ╩╩╚═`)

	ver := dim.Render("v" + version)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, logo)
	lines = append(lines, "    "+ver)
	lines = append(lines, "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator)
	lines = append(lines, "")

	// Bar
	lines = append(lines, bold.Render("    Bar"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  Blocks         %s", check, cyan.Render(fmt.Sprint(blockCount))))
	theme := cfg.Theme
	if cfg.ThemeFile != "" {
		theme = shortenPath(cfg.ThemeFile)
	}
	lines = append(lines, fmt.Sprintf("    %s  Theme          %s", check, dim.Render(theme)))
	lines = append(lines, fmt.Sprintf("    %s  Probe Timeout  %s", check, dim.Render(cfg.ProbeTimeout.String())))
	lines = append(lines, "")

	// Gateway
	lines = append(lines, bold.Render("    Gateway"))
	lines = append(lines, "")

	if cfg.APIEnabled {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(cfg.APIAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", dot, dim.Render("disabled")))
	}

	if socketUp {
		lines = append(lines, fmt.Sprintf("    %s  Unix Socket    %s", check, cyan.Render(shortenPath(cfg.SocketPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Unix Socket    %s", dot, dim.Render("disabled")))
	}

	if len(inputs) > 0 {
		lines = append(lines, fmt.Sprintf("    %s  Click Input    %s", check, cyan.Render(strings.Join(inputs, ", "))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Click Input    %s", dot, dim.Render("none")))
	}

	lines = append(lines, "")
	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "")
	lines = append(lines, separator)
	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Fprintln(os.Stderr, strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
