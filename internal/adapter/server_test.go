package adapter_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/frankli0324/go-http-message/internal/adapter"
	"github.com/frankli0324/go-http-message/internal/errs"
	"github.com/frankli0324/go-http-message/internal/headers"
	"github.com/frankli0324/go-http-message/internal/model"
	"github.com/frankli0324/go-http-message/internal/signal"
)

func TestFromHTTPRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "http://example.com/upload?x=1", strings.NewReader("hello"))
	r.Header.Set("X-Test", "1")

	req, err := adapter.FromHTTPRequest(r, adapter.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if req.Method() != "POST" || req.URL() != "http://example.com/upload?x=1" {
		t.Errorf("request %s %s", req.Method(), req.URL())
	}
	if req.Headers().Value("X-Test") != "1" || req.Headers().Value("Host") != "example.com" {
		t.Errorf("headers %v", req.Headers())
	}
	if req.Headers().Has("Content-Type") {
		t.Error("inbound headers should not get defaults")
	}
	if c := req.Connection(); c == nil || c.RemoteAddr != "192.0.2.1" || c.RemotePort != 1234 || c.Encrypted {
		t.Errorf("connection %+v", c)
	}

	var progress []int64
	req.Signal().On(signal.RequestBytes, func(n int64) { progress = append(progress, n) })
	ended := 0
	req.Signal().On(signal.RequestEnded, func(int64) { ended++ })

	text, err := req.Text(context.Background())
	if err != nil || text != "hello" {
		t.Fatalf("Text = %q, %v", text, err)
	}
	if !req.Started() || !req.Finished() || req.BytesTransferred() != 5 {
		t.Errorf("started %v finished %v bytes %d", req.Started(), req.Finished(), req.BytesTransferred())
	}
	if len(progress) == 0 || progress[len(progress)-1] != 5 || ended != 1 {
		t.Errorf("progress %v, ended %d", progress, ended)
	}
	if _, ok := req.Trailer().Peek(); !ok {
		t.Error("trailer not resolved at EOF")
	}
}

func TestFromHTTPRequestNoBody(t *testing.T) {
	r := httptest.NewRequest("GET", "/path", nil)
	req, err := adapter.FromHTTPRequest(r, adapter.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if req.Body().HasBody() {
		t.Error("GET without body should have an empty body")
	}
	if req.URL() != "http://example.com/path" {
		t.Errorf("URL = %q", req.URL())
	}
	if _, ok := req.Trailer().Peek(); !ok {
		t.Error("trailer of a bodiless request should resolve right away")
	}
	if !req.Started() || !req.Finished() {
		t.Errorf("started %v finished %v", req.Started(), req.Finished())
	}
}

func TestServedRequestNotAborted(t *testing.T) {
	served := make(chan *model.Request, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := adapter.FromHTTPRequest(r, adapter.Options{})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if _, err := req.Text(r.Context()); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		res, _ := model.NewResponse("ok", model.ResponseOptions{Request: req})
		adapter.WriteResponse(r.Context(), w, res)
		served <- req
	}))
	defer srv.Close()

	cases := map[string]struct {
		method string
		body   string
	}{
		"Get":  {method: "GET"},
		"Post": {method: "POST", body: "data"},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			var body io.Reader
			if c.body != "" {
				body = strings.NewReader(c.body)
			}
			r, _ := http.NewRequest(c.method, srv.URL, body)
			res, err := srv.Client().Do(r)
			if err != nil {
				t.Fatal(err)
			}
			io.Copy(io.Discard, res.Body)
			res.Body.Close()

			req := <-served
			// the context of a served request ends after the handler returned
			deadline := time.Now().Add(time.Second)
			for !req.Closed() && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			if !req.Closed() {
				t.Fatal("request not closed after the handler returned")
			}
			if req.Aborted() || !req.Finished() {
				t.Errorf("aborted %v finished %v", req.Aborted(), req.Finished())
			}
		})
	}
}

func TestRequestContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := httptest.NewRequest("POST", "/", strings.NewReader("data")).WithContext(ctx)
	req, err := adapter.FromHTTPRequest(r, adapter.Options{})
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	select {
	case <-req.Signal().Done():
	case <-time.After(time.Second):
		t.Fatal("signal not aborted")
	}
	if _, err := req.Text(context.Background()); !errors.Is(err, errs.ErrBodyDestroyed) {
		t.Errorf("err = %v", err)
	}
}

func TestWriteResponse(t *testing.T) {
	th, _ := headers.FromPairs("X-Sum", "1")
	res, err := model.NewResponse(strings.NewReader("hello"), model.ResponseOptions{
		Status:  201,
		Headers: map[string]string{"X-Test": "1"},
		Trailer: model.ResolvedTrailer(th),
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	if err := adapter.WriteResponse(context.Background(), rec, res); err != nil {
		t.Fatal(err)
	}
	out := rec.Result()
	if out.StatusCode != 201 || rec.Body.String() != "hello" {
		t.Errorf("response %d %q", out.StatusCode, rec.Body.String())
	}
	for k, want := range map[string]string{"Content-Type": "text/plain", "Content-Length": "5", "X-Test": "1"} {
		if got := out.Header.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	if out.Trailer.Get("X-Sum") != "1" {
		t.Errorf("trailer %v", out.Trailer)
	}
	if !res.Finished() || res.BytesTransferred() != 5 || !res.BodyUsed() {
		t.Errorf("finished %v bytes %d", res.Finished(), res.BytesTransferred())
	}
}

func TestWriteResponseUsedBody(t *testing.T) {
	res, _ := model.NewResponse("x", model.ResponseOptions{})
	res.Text(context.Background())
	if err := adapter.WriteResponse(context.Background(), httptest.NewRecorder(), res); !errors.Is(err, errs.ErrBodyUsed) {
		t.Errorf("err = %v", err)
	}
}
