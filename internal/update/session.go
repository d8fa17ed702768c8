package update

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

type State string

const (
	StateIdle         State = "idle"
	StateAwaitingText State = "awaiting_text"
	StateAwaitingDay  State = "awaiting_day"
)

const (
	eventOpenMenu   = "open_menu"
	eventBeginEntry = "begin_entry"
	eventOpenWeek   = "open_week"
	eventPickDay    = "pick_day"
	eventRecord     = "record"
)

var anyState = []string{string(StateIdle), string(StateAwaitingText), string(StateAwaitingDay)}

// Session is the in-memory conversation state of one chat. Callers hold mu while handling an event.
type Session struct {
	mu           sync.Mutex
	id           string
	machine      *fsm.FSM
	selectedDate string
	lastSeen     time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		id: id,
		machine: fsm.NewFSM(
			string(StateIdle),
			fsm.Events{
				{Name: eventOpenMenu, Src: anyState, Dst: string(StateIdle)},
				{Name: eventBeginEntry, Src: anyState, Dst: string(StateAwaitingText)},
				{Name: eventOpenWeek, Src: anyState, Dst: string(StateAwaitingDay)},
				{Name: eventPickDay, Src: []string{string(StateAwaitingDay)}, Dst: string(StateAwaitingText)},
				{Name: eventRecord, Src: []string{string(StateAwaitingText)}, Dst: string(StateIdle)},
			},
			fsm.Callbacks{},
		),
		lastSeen: now,
	}
}

func (s *Session) State() State {
	return State(s.machine.Current())
}

// fire runs an FSM event. Staying in the same state is not an error.
func (s *Session) fire(ctx context.Context, event string) error {
	err := s.machine.Event(ctx, event)
	var same fsm.NoTransitionError
	if errors.As(err, &same) {
		return nil
	}
	return err
}

// Sessions maps transport session ids to their conversation state.
type Sessions struct {
	mu sync.Mutex
	m  map[string]*Session
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]*Session)}
}

func (s *Sessions) get(id string, now time.Time) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.m[id]
	if sess == nil {
		sess = newSession(id, now)
		s.m[id] = sess
	}
	return sess
}

// acquire returns the session for id locked and marked as seen at now.
// A session pruned before its lock was taken is dropped and looked up again.
func (s *Sessions) acquire(id string, now time.Time) *Session {
	for {
		sess := s.get(id, now)
		sess.mu.Lock()
		if cur, ok := s.lookup(id); ok && cur == sess {
			sess.lastSeen = now
			return sess
		}
		sess.mu.Unlock()
	}
}

func (s *Sessions) lookup(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	return sess, ok
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Prune drops sessions idle since before cutoff and returns how many were removed.
// A session that is handling an event is skipped.
func (s *Sessions) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.m {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.lastSeen.Before(cutoff) {
			delete(s.m, id)
			removed++
		}
		sess.mu.Unlock()
	}
	return removed
}
