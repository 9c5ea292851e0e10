// package adapter converts between the envelopes of this module and the
// native objects of net/http.
package adapter

import (
	"github.com/rs/zerolog"
)

type Options struct {
	// MaxBufferSize bounds buffering of the converted bodies, 0 means no
	// bound.
	MaxBufferSize int64

	Logger *zerolog.Logger
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}
