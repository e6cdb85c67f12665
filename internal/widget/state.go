package widget

import "strings"

// State is the presentational severity of a widget. It only drives colour and
// iconography downstream.
type State int

const (
	Idle State = iota
	Info
	Good
	Warning
	Critical
)

// String returns the lower-case state name used in theme files and APIs.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Info:
		return "info"
	case Good:
		return "good"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "idle"
	}
}

// ParseState converts the textual variants found in theme files and API
// payloads to a State. Unknown values map to Idle.
func ParseState(s string) State {
	normalized := strings.ToUpper(strings.TrimSpace(s))

	switch normalized {
	case "IDLE", "NONE", "NEUTRAL", "":
		return Idle
	case "INFO", "INFORMATION", "INF":
		return Info
	case "GOOD", "OK", "OKAY", "UP":
		return Good
	case "WARN", "WARNING", "WRN":
		return Warning
	case "CRITICAL", "CRIT", "CRT", "ERROR", "ERR", "DOWN", "FATAL":
		return Critical
	default:
		if len(normalized) >= 4 {
			switch normalized[:4] {
			case "INFO":
				return Info
			case "GOOD":
				return Good
			case "WARN":
				return Warning
			case "CRIT", "ERRO":
				return Critical
			}
		}
		return Idle
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name with ParseState.
func (s *State) UnmarshalText(text []byte) error {
	*s = ParseState(string(text))
	return nil
}
