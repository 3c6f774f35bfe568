package tui

// ViewState is the screen the browser currently shows.
type ViewState int

// View states.
const (
	ViewStateLoading ViewState = iota
	ViewStateList
	ViewStateDetail
	ViewStateForm
	ViewStateQuitting
)

func (s ViewState) String() string {
	switch s {
	case ViewStateLoading:
		return "loading"
	case ViewStateList:
		return "list"
	case ViewStateDetail:
		return "detail"
	case ViewStateForm:
		return "form"
	case ViewStateQuitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// Key bindings.
const (
	keyQuit     = "q"
	keyCtrlC    = "ctrl+c"
	keyEnter    = "enter"
	keyEsc      = "esc"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyNew      = "n"
	keyRetry    = "r"
	keyCtrlS    = "ctrl+s"
	keyUp       = "up"
	keyDown     = "down"
)

// Fallback terminal size before the first WindowSizeMsg.
const (
	defaultWidth  = 120
	defaultHeight = 30
)
