package signal

import "sync"

type listener[V any] struct {
	id uint64
	fn func(V)
}

type eachListener[K comparable, V any] struct {
	id uint64
	fn func(K, V)
}

// Emitter is a typed event emitter. Listeners run synchronously on the
// emitting goroutine, in registration order, against the set of listeners
// registered when Emit was called.
type Emitter[K comparable, V any] struct {
	mu   sync.Mutex
	seq  uint64
	any  map[K][]listener[V]
	each []eachListener[K, V]
}

// On registers fn for events of type k and returns a func removing it.
func (e *Emitter[K, V]) On(k K, fn func(V)) (off func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.add(k, fn)
	return func() { e.off(k, id) }
}

// Once is like On but fn runs for the first event only.
func (e *Emitter[K, V]) Once(k K, fn func(V)) (off func()) {
	var once sync.Once
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.seq + 1
	off = func() { e.off(k, id) }
	e.add(k, func(v V) {
		once.Do(func() {
			off()
			fn(v)
		})
	})
	return off
}

// add must be called with e.mu held
func (e *Emitter[K, V]) add(k K, fn func(V)) uint64 {
	if e.any == nil {
		e.any = map[K][]listener[V]{}
	}
	e.seq++
	e.any[k] = append(e.any[k], listener[V]{e.seq, fn})
	return e.seq
}

// Each registers fn for events of every type.
func (e *Emitter[K, V]) Each(fn func(K, V)) (off func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	id := e.seq
	e.each = append(e.each, eachListener[K, V]{id, fn})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.each {
			if l.id == id {
				e.each = append(e.each[:i:i], e.each[i+1:]...)
				return
			}
		}
	}
}

func (e *Emitter[K, V]) off(k K, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	stack := e.any[k]
	for i, l := range stack {
		if l.id == id {
			e.any[k] = append(stack[:i:i], stack[i+1:]...)
			return
		}
	}
}

// Listeners returns the number of listeners registered for k, not
// counting ones registered with Each.
func (e *Emitter[K, V]) Listeners(k K) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.any[k])
}

func (e *Emitter[K, V]) Emit(k K, v V) {
	e.mu.Lock()
	stack := e.any[k]
	each := e.each
	e.mu.Unlock()

	// both slices are replaced, never modified in place, on removal
	for _, l := range stack {
		l.fn(v)
	}
	for _, l := range each {
		l.fn(k, v)
	}
}
