package body

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/valyala/bytebufferpool"

	"github.com/frankli0324/go-http-message/internal/errs"
)

var drainPool bytebufferpool.Pool

// drain reads rc to completion and closes it. A positive limit bounds the
// number of bytes read, going over fails with [errs.ErrBufferLimit] and
// drops what was read so far. rc is closed as soon as ctx is done so a
// blocked Read returns.
func drain(ctx context.Context, rc io.ReadCloser, limit int64) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() { rc.Close() })
	defer stop()
	defer rc.Close()

	bb := drainPool.Get()
	defer drainPool.Put(bb)

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	// ReadFrom reports io.EOF as nil
	if _, err := bb.ReadFrom(r); err != nil && !errors.Is(err, io.EOF) {
		if ctxErr := context.Cause(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if limit > 0 && int64(bb.Len()) > limit {
		return nil, errs.ErrBufferLimit.Wrap(fmt.Errorf("limit is %d bytes", limit))
	}
	return append([]byte{}, bb.B...), nil
}
