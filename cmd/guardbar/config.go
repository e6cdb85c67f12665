package main

import (
	"time"

	"github.com/tinytelemetry/guardbar/internal/blocks"
	"github.com/tinytelemetry/guardbar/internal/httpserver"
	"github.com/tinytelemetry/guardbar/internal/input"
	"github.com/tinytelemetry/guardbar/internal/model"
)

const (
	defaultTheme         = model.DefaultTheme
	defaultProbeTimeout  = model.DefaultProbeTimeout
	defaultRetryInterval = model.DefaultRetryInterval
	defaultQueueSize     = 64
	defaultMuxBufferSize = input.DefaultMuxBuffer
	defaultAPIAddr       = httpserver.DefaultAddr
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Theme         string           `mapstructure:"theme"`
	ThemeFile     string           `mapstructure:"theme-file"`
	ProbeTimeout  time.Duration    `mapstructure:"probe-timeout"`
	RetryInterval time.Duration    `mapstructure:"retry-interval"`
	QueueSize     int              `mapstructure:"queue-size"`
	StdinClicks   bool             `mapstructure:"stdin-clicks"`
	ClickFIFO     string           `mapstructure:"click-fifo"`
	ClickTCPAddr  string           `mapstructure:"click-tcp-addr"`
	MuxBufferSize int              `mapstructure:"mux-buffer-size"`
	NoColor       bool             `mapstructure:"no-color"`
	APIEnabled    bool             `mapstructure:"api-enabled"`
	APIAddr       string           `mapstructure:"api-addr"`
	SocketEnabled bool             `mapstructure:"socket-enabled"`
	SocketPath    string           `mapstructure:"socket-path"`
	Blocks        []map[string]any `mapstructure:"blocks"`
	ConfigPath    string           `mapstructure:"-"` // not from config file
}

// defaultBlocks is the bar shown when the config file names none.
func defaultBlocks() []map[string]any {
	return []map[string]any{
		{"block": blocks.KindFirewall},
		{"block": blocks.KindKillswitch},
	}
}
