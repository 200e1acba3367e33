// Package session keeps per-user conversation state in memory.
//
// Sessions are created lazily on first access and never persisted: a restart
// drops all conversations back to idle, which is safe because every flow can
// be re-entered from the start button.
package session

// Flow identifies which conversation a user is currently in.
type Flow string

const (
	FlowNone    Flow = "none"
	FlowAuth    Flow = "auth"
	FlowReceipt Flow = "receipt"
	FlowMeter   Flow = "meter"
)

// Session holds the conversation state of a single user.
type Session struct {
	UserID  int64
	ChatID  int64
	Flow    Flow
	State   string
	Scratch map[string]any
}

// Active reports whether the session is inside a flow.
func (s *Session) Active() bool {
	return s != nil && s.Flow != FlowNone && s.Flow != ""
}

// Reset returns the session to the idle state and clears scratch data.
func (s *Session) Reset() {
	if s == nil {
		return
	}
	s.Flow = FlowNone
	s.State = ""
	s.Scratch = make(map[string]any)
}

// Enter switches the session into the given flow and state, dropping any
// scratch data from a previous flow.
func (s *Session) Enter(flow Flow, state string) {
	if s == nil {
		return
	}
	s.Flow = flow
	s.State = state
	s.Scratch = make(map[string]any)
}

// PutString stores a string value in scratch.
func (s *Session) PutString(key, value string) {
	if s.Scratch == nil {
		s.Scratch = make(map[string]any)
	}
	s.Scratch[key] = value
}

// GetString reads a string value from scratch.
func (s *Session) GetString(key string) (string, bool) {
	if s.Scratch == nil {
		return "", false
	}
	v, ok := s.Scratch[key]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// Put stores an arbitrary value in scratch.
func (s *Session) Put(key string, value any) {
	if s.Scratch == nil {
		s.Scratch = make(map[string]any)
	}
	s.Scratch[key] = value
}

// Get reads an arbitrary value from scratch.
func (s *Session) Get(key string) (any, bool) {
	if s.Scratch == nil {
		return nil, false
	}
	v, ok := s.Scratch[key]
	return v, ok
}
