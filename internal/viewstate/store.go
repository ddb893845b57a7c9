package viewstate

import (
	"log/slog"
	"sync"
)

// Store owns the current ViewState. Dispatch is the only way to change it;
// each event is reduced and published under one lock, so subscribers see
// complete transitions in the order they were applied.
type Store struct {
	mu    sync.Mutex
	state ViewState
	log   *slog.Logger

	nextSubID int
	subs      map[int]chan ViewState
}

// NewStore creates a store whose sources start Idle.
func NewStore(log *slog.Logger, sources ...Source) *Store {
	return &Store{
		state: New(sources...),
		log:   log,
		subs:  make(map[int]chan ViewState),
	}
}

// Current returns the latest view state.
func (s *Store) Current() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces e into the current state. It returns the resulting state
// and whether the event was applied.
func (s *Store) Dispatch(e Event) (ViewState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := Reduce(s.state, e)
	if !changed {
		if st, ok := e.(Settled); ok {
			s.log.Debug("dropped settlement",
				"source", st.Source, "token", st.Token, "current", s.state.Token)
		}
		return s.state, false
	}
	s.state = next

	for _, ch := range s.subs {
		offer(ch, next)
	}
	return next, true
}

// Subscribe returns a channel that receives the current state immediately and
// every state after it. Delivery is latest-wins: a subscriber that falls
// behind skips intermediate states but never misses the most recent one.
func (s *Store) Subscribe() (id int, ch <-chan ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id = s.nextSubID
	s.nextSubID++
	c := make(chan ViewState, 1)
	c <- s.state
	s.subs[id] = c
	return id, c
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[id]; ok {
		close(ch)
		delete(s.subs, id)
	}
}

// offer replaces any undelivered state in ch with v. Callers hold s.mu, so
// no other sender can refill the buffer between the drain and the send.
func offer(ch chan ViewState, v ViewState) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
