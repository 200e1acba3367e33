package session

import "sync"

// Store owns all sessions and serializes access per user.
//
// Do runs fn while holding a lock dedicated to the user, so an in-flight
// transition (including its upstream calls) finishes before the next update
// for the same user is evaluated. Different users never block each other.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	locks    map[int64]*sync.Mutex
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (st *Store) userLock(userID int64) *sync.Mutex {
	st.mu.Lock()
	defer st.mu.Unlock()
	l, ok := st.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		st.locks[userID] = l
	}
	return l
}

func (st *Store) session(userID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		s = &Session{
			UserID:  userID,
			Flow:    FlowNone,
			Scratch: make(map[string]any),
		}
		st.sessions[userID] = s
	}
	return s
}

// Do runs fn with exclusive access to the user's session.
func (st *Store) Do(userID int64, fn func(s *Session)) {
	lock := st.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	fn(st.session(userID))
}

// InProgress reports whether the user currently has an active flow.
// It takes the user lock, so a transition in flight is observed as active.
func (st *Store) InProgress(userID int64) bool {
	lock := st.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return st.session(userID).Active()
}
