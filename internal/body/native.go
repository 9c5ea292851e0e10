//go:build !(js && wasm)

package body

// native converts values of the platform payload vocabulary. Outside of
// js/wasm builds the Go types handled by [New] are the whole vocabulary.
func native(v any) (any, bool) {
	return nil, false
}
