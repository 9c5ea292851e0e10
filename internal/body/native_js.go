//go:build js && wasm

package body

import (
	"errors"
	"io"
	"syscall/js"
)

// native converts browser values: strings, ArrayBuffer and Uint8Array are
// copied into Go memory, a ReadableStream is read through its default
// reader.
func native(v any) (any, bool) {
	jv, ok := v.(js.Value)
	if !ok {
		return nil, false
	}
	global := js.Global()
	switch {
	case jv.IsNull() || jv.IsUndefined():
		return nil, true
	case jv.Type() == js.TypeString:
		return jv.String(), true
	case jv.InstanceOf(global.Get("ArrayBuffer")):
		return copyBytes(global.Get("Uint8Array").New(jv)), true
	case jv.InstanceOf(global.Get("Uint8Array")):
		return copyBytes(jv), true
	case jv.InstanceOf(global.Get("ReadableStream")):
		return &jsStreamReader{reader: jv.Call("getReader")}, true
	}
	return nil, false
}

func copyBytes(u8 js.Value) []byte {
	b := make([]byte, u8.Get("byteLength").Int())
	js.CopyBytesToGo(b, u8)
	return b
}

type jsStreamReader struct {
	reader  js.Value
	pending []byte
	done    bool
}

func (r *jsStreamReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.done {
			return 0, io.EOF
		}
		result, err := await(r.reader.Call("read"))
		if err != nil {
			return 0, err
		}
		if result.Get("done").Bool() {
			r.done = true
			continue
		}
		r.pending = copyBytes(result.Get("value"))
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *jsStreamReader) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	r.pending = nil
	_, err := await(r.reader.Call("cancel"))
	return err
}

// await blocks the calling goroutine until promise settles, the js event
// loop keeps running meanwhile.
func await(promise js.Value) (js.Value, error) {
	type settled struct {
		v   js.Value
		err error
	}
	ch := make(chan settled, 1)
	onResolve := js.FuncOf(func(this js.Value, args []js.Value) any {
		v := js.Undefined()
		if len(args) > 0 {
			v = args[0]
		}
		ch <- settled{v: v}
		return nil
	})
	defer onResolve.Release()
	onReject := js.FuncOf(func(this js.Value, args []js.Value) any {
		err := errors.New("promise rejected")
		if len(args) > 0 {
			err = js.Error{Value: args[0]}
		}
		ch <- settled{err: err}
		return nil
	})
	defer onReject.Release()

	promise.Call("then", onResolve, onReject)
	s := <-ch
	return s.v, s.err
}
