package domain

// Mode is the editing mode of the session.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeVisual
	ModeVisualLine
	ModeReplace
	ModeCommandLine
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	case ModeVisual:
		return "VISUAL"
	case ModeVisualLine:
		return "VISUAL LINE"
	case ModeReplace:
		return "REPLACE"
	case ModeCommandLine:
		return "COMMAND"
	default:
		return "UNKNOWN"
	}
}
