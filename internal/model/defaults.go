package model

import "time"

// Shared defaults used by both the bar and the preview binaries.
const (
	DefaultUpdateInterval = time.Second
	DefaultProbeTimeout   = 2 * time.Second
	DefaultRetryInterval  = 5 * time.Second
	DefaultTheme          = "default"
)
