package model_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/frankli0324/go-http-message/internal/headers"
	"github.com/frankli0324/go-http-message/internal/model"
)

func TestResponseStatus(t *testing.T) {
	cases := map[string]struct {
		status int
		want   int
		ok     bool
	}{
		"Default":  {0, 200, true},
		"Created":  {201, 201, true},
		"NotFound": {404, 404, false},
		"Redirect": {302, 302, false},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			res, err := model.NewResponse(nil, model.ResponseOptions{Status: c.status})
			if err != nil {
				t.Fatal(err)
			}
			if res.Status() != c.want || res.OK() != c.ok {
				t.Errorf("status = %d, ok = %v", res.Status(), res.OK())
			}
		})
	}
}

func TestResponseSignal(t *testing.T) {
	req := newRequest(t, "/", model.RequestOptions{})
	res, err := model.NewResponse("body", model.ResponseOptions{Request: req})
	if err != nil {
		t.Fatal(err)
	}
	if res.Request() != req || res.Signal() != req.Signal() {
		t.Fatal("response not tied to its request")
	}
	req.Abort()
	if !res.Body().Destroyed() {
		t.Error("aborting the request should destroy the response body")
	}
}

func TestResponseClone(t *testing.T) {
	ctx := context.Background()
	trailer := model.NewTrailer()
	res, err := model.NewResponse([]byte("data"), model.ResponseOptions{
		Status:     404,
		StatusText: "Not Found",
		Trailer:    trailer,
	})
	if err != nil {
		t.Fatal(err)
	}
	c, err := res.Clone()
	if err != nil {
		t.Fatal(err)
	}
	if c.Status() != 404 || c.StatusText() != "Not Found" {
		t.Errorf("clone status %d %q", c.Status(), c.StatusText())
	}
	if _, ok := c.Trailer().Peek(); ok {
		t.Fatal("clone trailer settled before the original")
	}
	h, _ := headers.FromPairs("X-Sum", "1")
	trailer.Resolve(h)
	got, err := c.Trailer().Wait(ctx)
	if err != nil || got.Value("X-Sum") != "1" || got == h {
		t.Errorf("clone trailer = %v, %v", got, err)
	}

	for _, r := range []*model.Response{res, c} {
		if raw, err := r.Bytes(ctx); err != nil || string(raw) != "data" {
			t.Errorf("Bytes = %q, %v", raw, err)
		}
	}
}

func TestSetters(t *testing.T) {
	res, _ := model.NewResponse(nil, model.ResponseOptions{})
	var order []model.Event
	res.Each(func(ev model.Event, _ int64) { order = append(order, ev) })

	h, _ := headers.FromPairs("X-A", "1")
	res.SetHeaders(h)
	res.SetTrailer(nil)
	res.SetBody(nil)
	res.MarkStarted()
	res.MarkFinished()

	want := []model.Event{model.EventHeaders, model.EventTrailers, model.EventBody, model.EventStarted, model.EventFinished}
	if len(order) != len(want) {
		t.Fatalf("events %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, order[i], want[i])
		}
	}
	if res.Headers() != h {
		t.Error("headers not replaced")
	}
	if _, ok := res.Trailer().Peek(); !ok {
		t.Error("nil trailer should resolve to an empty map")
	}
}

func TestLogObject(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	res, _ := model.NewResponse("x", model.ResponseOptions{Status: 500, Logger: &log})
	log.Info().EmbedObject(res).Msg("done")
	want := `{"level":"info","status":500,"ok":false,"started":false,"finished":false,"bytesTransferred":0,"body":{"kind":"text","state":"unused","buffered":true,"length":1},"message":"done"}` + "\n"
	if buf.String() != want {
		t.Errorf("log = %s", buf.String())
	}
}

func TestHTTPError(t *testing.T) {
	req := newRequest(t, "/", model.RequestOptions{})
	cause := errors.New("connection reset")
	err := error(model.NewHTTPError("request failed", model.CodeUnavailable, 502, req, cause))
	if !errors.Is(err, cause) {
		t.Error("cause not unwrapped")
	}
	var herr *model.HTTPError
	if !errors.As(err, &herr) || herr.Code != "EUNAVAILABLE" || herr.Request != req {
		t.Errorf("HTTPError = %+v", herr)
	}
	if err.Error() != "request failed: connection reset" {
		t.Errorf("Error() = %q", err.Error())
	}
}
