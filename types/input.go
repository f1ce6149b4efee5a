package types

// ------------------------
// Button
// ------------------------

// ButtonEvent is a classified, debounced press.
type ButtonEvent uint8

const (
	ButtonNone ButtonEvent = iota
	ButtonSingle
	ButtonLong
	ButtonDouble
)

func (e ButtonEvent) String() string {
	switch e {
	case ButtonSingle:
		return "single"
	case ButtonLong:
		return "long"
	case ButtonDouble:
		return "double"
	default:
		return "none"
	}
}

// ParseButtonEvent is the inverse of String; unknown names give ButtonNone.
func ParseButtonEvent(s string) ButtonEvent {
	switch s {
	case "single", "press":
		return ButtonSingle
	case "long":
		return ButtonLong
	case "double":
		return ButtonDouble
	}
	return ButtonNone
}
