package model_test

import (
	"io"
	"net/http"
	"testing"
	"testing/iotest"

	"github.com/frankli0324/go-http-message/internal/model"
)

func TestPrepare(t *testing.T) {
	req := newRequest(t, "http://example.com/path", model.RequestOptions{
		Method:  "POST",
		Body:    "payload",
		Headers: map[string]string{"Host": "override.example", "X-Test": "1"},
	})
	pr, err := req.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	if pr.HeaderHost != "override.example" || pr.ContentLength != 7 || !pr.Replayable {
		t.Errorf("prepared %+v", pr)
	}
	if pr.Header.Get("Host") != "" || pr.Header.Get("Content-Length") != "" {
		t.Errorf("Host and Content-Length should be lifted out: %v", pr.Header)
	}
	if pr.Header.Get("X-Test") != "1" || pr.Header.Get("Content-Type") != "text/plain" {
		t.Errorf("header = %v", pr.Header)
	}
	if !req.BodyUsed() {
		t.Error("Prepare should consume the body")
	}
	for i := 0; i < 2; i++ {
		rc, err := pr.GetBody()
		if err != nil {
			t.Fatal(err)
		}
		if err := iotest.TestReader(rc, []byte("payload")); err != nil {
			t.Error(err)
		}
	}
}

func TestPrepareStream(t *testing.T) {
	pr0, pw := io.Pipe()
	defer pw.Close()
	req := newRequest(t, "http://example.com", model.RequestOptions{Body: pr0})
	pr, err := req.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	if pr.ContentLength != -1 || pr.Replayable {
		t.Errorf("prepared %+v", pr)
	}
	if rc, err := pr.GetBody(); err != nil || rc != io.ReadCloser(pr0) {
		t.Fatalf("first GetBody = %v, %v", rc, err)
	}
	if _, err := pr.GetBody(); err != http.ErrBodyReadAfterClose {
		t.Errorf("second GetBody err = %v", err)
	}
}

func TestPrepareEmptyHost(t *testing.T) {
	req := newRequest(t, "/relative", model.RequestOptions{})
	if _, err := req.Prepare(); err == nil {
		t.Error("expected empty host error")
	}
}
