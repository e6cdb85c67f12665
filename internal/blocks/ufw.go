package blocks

import (
	"github.com/tinytelemetry/guardbar/internal/block"
	"github.com/tinytelemetry/guardbar/internal/probe"
)

const (
	KindFirewall   = "firewall"
	KindKillswitch = "killswitch"
)

const (
	ufwConfPath     = "/etc/ufw/ufw.conf"
	ufwEnabledLine  = "ENABLED=yes"
	ufwActiveMarker = "Active: active "

	ufwDefaultsPath = "/etc/default/ufw"
	killswitchLine  = `DEFAULT_OUTPUT_POLICY="DROP"`
)

// Register adds every block in this package to reg.
func Register(reg *block.Registry) error {
	if err := reg.Register(KindFirewall, NewFirewall); err != nil {
		return err
	}
	return reg.Register(KindKillswitch, NewKillswitch)
}

// NewFirewall builds the firewall block: up iff ufw is enabled in its config
// and systemd reports the unit active.
func NewFirewall(fragment map[string]any, shared block.Shared, handle block.Handle) (block.Block, error) {
	b, err := newFirewall(fragment, shared, handle, firewallProbe(ufwConfPath, "systemctl", "status", "ufw"))
	if err != nil {
		return nil, err
	}
	return b, nil
}

// NewKillswitch builds the killswitch block: up iff ufw's default outgoing
// policy is DROP.
func NewKillswitch(fragment map[string]any, shared block.Shared, handle block.Handle) (block.Block, error) {
	b, err := newKillswitch(fragment, shared, handle, killswitchProbe(ufwDefaultsPath))
	if err != nil {
		return nil, err
	}
	return b, nil
}

func newFirewall(fragment map[string]any, shared block.Shared, handle block.Handle, p probe.Func) (*toggle, error) {
	cfg, err := block.DecodeIntervalConfig(KindFirewall, fragment)
	if err != nil {
		return nil, err
	}
	return newToggle(KindFirewall, cfg.Interval, shared, handle, p), nil
}

func newKillswitch(fragment map[string]any, shared block.Shared, handle block.Handle, p probe.Func) (*toggle, error) {
	cfg, err := block.DecodeIntervalConfig(KindKillswitch, fragment)
	if err != nil {
		return nil, err
	}
	return newToggle(KindKillswitch, cfg.Interval, shared, handle, p), nil
}

func firewallProbe(confPath string, status ...string) probe.Func {
	return probe.All(
		probe.FileHasLine(confPath, ufwEnabledLine),
		probe.CommandOutputContains(ufwActiveMarker, status[0], status[1:]...),
	)
}

func killswitchProbe(defaultsPath string) probe.Func {
	return probe.FileHasLine(defaultsPath, killswitchLine)
}
