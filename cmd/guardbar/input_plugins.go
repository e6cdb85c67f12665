package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tinytelemetry/guardbar/internal/input"
)

// InputSourcePlugin is a small plugin primitive for wiring click inputs.
type InputSourcePlugin interface {
	Name() string
	Enabled() bool
	Build(ctx context.Context) (input.Source, error)
}

// InputPluginConfig defines runtime input selection.
type InputPluginConfig struct {
	StdinClicks  bool
	ClickFIFO    string
	ClickTCPAddr string
}

func buildInputPlugins(cfg InputPluginConfig) []InputSourcePlugin {
	plugins := make([]InputSourcePlugin, 0, 3)
	plugins = append(plugins, stdinInputPlugin{enabled: cfg.StdinClicks})
	plugins = append(plugins, fifoInputPlugin{path: cfg.ClickFIFO})
	plugins = append(plugins, tcpInputPlugin{addr: cfg.ClickTCPAddr})
	return plugins
}

type stdinInputPlugin struct {
	enabled bool
}

func (p stdinInputPlugin) Name() string { return "stdin" }

// Enabled reports whether clicks are wanted and stdin is piped rather than
// an interactive terminal.
func (p stdinInputPlugin) Enabled() bool {
	if !p.enabled {
		return false
	}
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

func (p stdinInputPlugin) Build(ctx context.Context) (input.Source, error) {
	return input.NewStdinSource(ctx), nil
}

type fifoInputPlugin struct {
	path string
}

func (p fifoInputPlugin) Name() string { return "fifo" }

func (p fifoInputPlugin) Enabled() bool { return p.path != "" }

func (p fifoInputPlugin) Build(ctx context.Context) (input.Source, error) {
	src, err := input.NewFIFOSource(ctx, p.path)
	if err != nil {
		return nil, err
	}
	return src, nil
}

type tcpInputPlugin struct {
	addr string
}

func (p tcpInputPlugin) Name() string { return "tcp" }

func (p tcpInputPlugin) Enabled() bool { return p.addr != "" }

func (p tcpInputPlugin) Build(_ context.Context) (input.Source, error) {
	src := input.NewTCPSource(p.addr)
	if err := src.Start(); err != nil {
		return nil, fmt.Errorf("start tcp click source: %w", err)
	}
	return src, nil
}
