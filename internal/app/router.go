package app

// Screen is a top-level view. Overlays are tracked separately and never
// change the screen.
type Screen int

const (
	ScreenAuth Screen = iota
	ScreenTodo
	ScreenHistory
	ScreenPublicFeed
)

func (s Screen) String() string {
	switch s {
	case ScreenAuth:
		return "auth"
	case ScreenTodo:
		return "todo"
	case ScreenHistory:
		return "history"
	case ScreenPublicFeed:
		return "public_feed"
	default:
		return "unknown"
	}
}

// Event moves the router between screens.
type Event int

const (
	EventLogin Event = iota
	EventLogout
	EventShowHistory
	EventShowPublic
	EventBack
)

type transition struct {
	from  Screen
	event Event
}

var transitions = map[transition]Screen{
	{ScreenAuth, EventLogin}:       ScreenTodo,
	{ScreenTodo, EventLogout}:      ScreenAuth,
	{ScreenTodo, EventShowHistory}: ScreenHistory,
	{ScreenHistory, EventBack}:     ScreenTodo,
	{ScreenTodo, EventShowPublic}:  ScreenPublicFeed,
	{ScreenPublicFeed, EventBack}:  ScreenTodo,
}

// Router is the screen state machine.
type Router struct {
	state Screen
}

// NewRouter starts in initial.
func NewRouter(initial Screen) Router {
	return Router{state: initial}
}

// State returns the current screen.
func (r Router) State() Screen {
	return r.state
}

// Fire applies e. It returns false and leaves the state unchanged when e
// is not valid from the current screen.
func (r *Router) Fire(e Event) bool {
	next, ok := transitions[transition{r.state, e}]
	if !ok {
		return false
	}
	r.state = next
	return true
}
