package block

// MouseButton identifies the button of a click event.
type MouseButton int

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
	ButtonWheelUp
	ButtonWheelDown
)

func (b MouseButton) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonWheelUp:
		return "wheel-up"
	case ButtonWheelDown:
		return "wheel-down"
	default:
		return "none"
	}
}

// ClickEvent is a user interaction routed to a block by ID.
// Every field may be garbage; blocks validate what they use.
type ClickEvent struct {
	ID        string      `json:"instance"`
	Name      string      `json:"name,omitempty"`
	Button    MouseButton `json:"button"`
	X         int         `json:"x,omitempty"`
	Y         int         `json:"y,omitempty"`
	Modifiers []string    `json:"modifiers,omitempty"`
}
