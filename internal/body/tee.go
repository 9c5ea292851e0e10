package body

import (
	"io"
	"sync"
)

// teeSource fans one stream out to two branches. Whichever branch reads
// first pulls from the source and queues a copy of the chunk for its
// sibling, so each branch sees the full byte sequence no matter how far
// apart the two readers are.
type teeSource struct {
	readMu sync.Mutex // held while reading src

	mu       sync.Mutex // guards everything below
	src      io.ReadCloser
	err      error // sticky source error, io.EOF included
	branches [2]*teeBranch
	open     int
}

type teeBranch struct {
	s       *teeSource
	idx     int
	pending [][]byte
	closed  bool
}

func tee(rc io.ReadCloser) (io.ReadCloser, io.ReadCloser) {
	s := &teeSource{src: rc, open: 2}
	s.branches[0] = &teeBranch{s: s, idx: 0}
	s.branches[1] = &teeBranch{s: s, idx: 1}
	return s.branches[0], s.branches[1]
}

func (b *teeBranch) sibling() *teeBranch { return b.s.branches[1-b.idx] }

// serve copies queued data into p, must be called with s.mu held
func (b *teeBranch) serve(p []byte) int {
	n := 0
	for len(b.pending) > 0 && n < len(p) {
		c := copy(p[n:], b.pending[0])
		n += c
		if c == len(b.pending[0]) {
			b.pending[0] = nil
			b.pending = b.pending[1:]
		} else {
			b.pending[0] = b.pending[0][c:]
		}
	}
	return n
}

func (b *teeBranch) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s := b.s
	for {
		s.mu.Lock()
		if b.closed {
			s.mu.Unlock()
			return 0, io.ErrClosedPipe
		}
		if n := b.serve(p); n > 0 {
			s.mu.Unlock()
			return n, nil
		}
		if s.err != nil {
			err := s.err
			s.mu.Unlock()
			return 0, err
		}
		s.mu.Unlock()

		s.readMu.Lock()
		s.mu.Lock()
		// the sibling may have pulled a chunk while we waited for readMu
		ready := len(b.pending) > 0 || s.err != nil || b.closed
		s.mu.Unlock()
		if ready {
			s.readMu.Unlock()
			continue
		}

		n, err := s.src.Read(p)

		s.mu.Lock()
		if sib := b.sibling(); n > 0 && !sib.closed {
			sib.pending = append(sib.pending, append([]byte(nil), p[:n]...))
		}
		if err != nil {
			s.err = err
		}
		closed := b.closed
		s.mu.Unlock()
		s.readMu.Unlock()

		if closed {
			return 0, io.ErrClosedPipe
		}
		if n > 0 {
			return n, nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// Close detaches the branch. The source is closed once both branches are
// closed.
func (b *teeBranch) Close() error {
	s := b.s
	s.mu.Lock()
	if b.closed {
		s.mu.Unlock()
		return nil
	}
	b.closed = true
	b.pending = nil
	s.open--
	last := s.open == 0
	s.mu.Unlock()

	if !last {
		return nil
	}
	// also unblocks a Read still waiting on the source
	return s.src.Close()
}
