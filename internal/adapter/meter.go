package adapter

import (
	"errors"
	"io"
	"sync"

	"github.com/frankli0324/go-http-message/internal/signal"
)

// tracked is the part of an envelope a meter reports to.
type tracked interface {
	MarkStarted()
	MarkFinished()
	SetBytesTransferred(n int64) bool
	Signal() *signal.Signal
}

// phase names the signal events of one direction of an exchange.
type phase struct {
	started, bytes, ended signal.Event
}

var (
	requestPhase  = phase{signal.RequestStarted, signal.RequestBytes, signal.RequestEnded}
	responsePhase = phase{signal.ResponseStarted, signal.ResponseBytes, signal.ResponseEnded}
)

// meter reports the progress of reading a body to its envelope and signal.
// onEOF runs once the body was read in full, before the final Read returns.
type meter struct {
	rc    io.ReadCloser
	msg   tracked
	phase phase
	onEOF func()

	n         int64
	startOnce sync.Once
	endOnce   sync.Once
}

func newMeter(rc io.ReadCloser, msg tracked, p phase, onEOF func()) *meter {
	return &meter{rc: rc, msg: msg, phase: p, onEOF: onEOF}
}

func (m *meter) start() {
	m.startOnce.Do(func() {
		m.msg.MarkStarted()
		m.msg.Signal().Emit(m.phase.started, 0)
	})
}

func (m *meter) end() {
	m.endOnce.Do(func() {
		if m.onEOF != nil {
			m.onEOF()
		}
		m.msg.MarkFinished()
		m.msg.Signal().Emit(m.phase.ended, 0)
	})
}

func (m *meter) Read(p []byte) (int, error) {
	m.start()
	n, err := m.rc.Read(p)
	if n > 0 {
		m.n += int64(n)
		m.msg.SetBytesTransferred(m.n)
		m.msg.Signal().Emit(m.phase.bytes, m.n)
	}
	if errors.Is(err, io.EOF) {
		m.end()
	}
	return n, err
}

func (m *meter) Close() error { return m.rc.Close() }

type bodyCloser struct {
	io.Reader
	close func() error
}

func (b bodyCloser) Close() error { return b.close() }
