// package signal contains the cancellation channel shared between a message
// and the transport code processing it.
package signal

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/frankli0324/go-http-message/internal/errs"
)

type Event int

const (
	Abort Event = iota
	RequestStarted
	RequestBytes
	RequestEnded
	ResponseStarted
	ResponseBytes
	ResponseEnded
)

var eventNames = [...]string{
	Abort:           "abort",
	RequestStarted:  "requestStarted",
	RequestBytes:    "requestBytes",
	RequestEnded:    "requestEnded",
	ResponseStarted: "responseStarted",
	ResponseBytes:   "responseBytes",
	ResponseEnded:   "responseEnded",
}

func (e Event) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "unknown"
}

// Signal carries abort and progress notifications. The value passed with
// RequestBytes and ResponseBytes is the byte count so far, other events
// carry 0.
type Signal struct {
	Emitter[Event, int64]

	aborted  atomic.Bool
	initOnce sync.Once
	done     chan struct{}
}

func New() *Signal {
	s := &Signal{}
	s.init()
	return s
}

func (s *Signal) init() {
	s.initOnce.Do(func() { s.done = make(chan struct{}) })
}

// Abort fires the abort event. Only the first call notifies listeners, it
// reports whether this call was the one that aborted.
func (s *Signal) Abort() bool {
	s.init()
	if !s.aborted.CompareAndSwap(false, true) {
		return false
	}
	s.Emitter.Emit(Abort, 0)
	close(s.done)
	return true
}

func (s *Signal) Aborted() bool {
	return s.aborted.Load()
}

// Done is closed once the signal is aborted and the abort listeners
// returned.
func (s *Signal) Done() <-chan struct{} {
	s.init()
	return s.done
}

// Emit notifies listeners of ev. Abort is routed through [Signal.Abort] so it
// is recorded and delivered only once.
func (s *Signal) Emit(ev Event, n int64) {
	if ev == Abort {
		s.Abort()
		return
	}
	s.Emitter.Emit(ev, n)
}

// Context returns a copy of parent that is cancelled with [errs.ErrAborted]
// as its cause when the signal aborts.
func (s *Signal) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	off := s.Once(Abort, func(int64) { cancel(errs.ErrAborted) })
	if s.Aborted() { // aborted before the listener was registered
		cancel(errs.ErrAborted)
	}
	context.AfterFunc(ctx, off)
	return ctx, func() { cancel(context.Canceled) }
}
