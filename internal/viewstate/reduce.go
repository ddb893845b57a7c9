package viewstate

import "maps"

// Event is an input to Reduce: either Started or Settled.
type Event interface {
	event()
}

// Started begins a new query cycle for Selection.
type Started struct {
	Token     Token
	Selection string
}

// Settled carries the outcome of one source's fetch in the cycle Token.
type Settled struct {
	Token   Token
	Source  Source
	Outcome Outcome
}

func (Started) event() {}
func (Settled) event() {}

// Outcome is the result of a single fetch.
type Outcome struct {
	Value  any
	Failed bool
	Reason string
}

// Success wraps a fetched value.
func Success(v any) Outcome {
	return Outcome{Value: v}
}

// Failure records a fetch error as a short human-readable reason.
func Failure(reason string) Outcome {
	if reason == "" {
		reason = "request failed"
	}
	return Outcome{Failed: true, Reason: reason}
}

// Reduce merges e into s and reports whether the state changed. It never
// modifies s.
//
// A Started event with a newer token resets every source to Loading. A
// Settled event is applied only when its token is the current one and its
// source is still Loading; anything else (superseded cycles, duplicate
// settlements, unknown sources) leaves s untouched.
func Reduce(s ViewState, e Event) (ViewState, bool) {
	switch e := e.(type) {
	case Started:
		if e.Token <= s.Token {
			return s, false
		}
		next := ViewState{
			Selection: e.Selection,
			Token:     e.Token,
			Sources:   make(map[Source]SourceState, len(s.Sources)),
		}
		for src := range s.Sources {
			next.Sources[src] = SourceState{Status: Loading}
		}
		return next, true

	case Settled:
		if s.Token == 0 || e.Token != s.Token {
			return s, false
		}
		cur, ok := s.Sources[e.Source]
		if !ok || cur.Status != Loading {
			return s, false
		}
		next := s
		next.Sources = maps.Clone(s.Sources)
		if e.Outcome.Failed {
			next.Sources[e.Source] = SourceState{Status: Failed, Reason: e.Outcome.Reason}
		} else {
			next.Sources[e.Source] = SourceState{Status: Loaded, Value: e.Outcome.Value}
		}
		return next, true
	}
	return s, false
}
