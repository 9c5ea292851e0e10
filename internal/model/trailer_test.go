package model_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frankli0324/go-http-message/internal/headers"
	"github.com/frankli0324/go-http-message/internal/model"
)

func TestTrailerResolve(t *testing.T) {
	tr := model.NewTrailer()
	if _, ok := tr.Peek(); ok {
		t.Fatal("new trailer settled")
	}
	h, _ := headers.FromPairs("X-A", "1")
	go func() {
		time.Sleep(5 * time.Millisecond)
		tr.Resolve(h)
	}()
	got, err := tr.Wait(context.Background())
	if err != nil || got != h {
		t.Fatalf("Wait = %v, %v", got, err)
	}
	if tr.Resolve(nil) || tr.Reject(errors.New("late")) {
		t.Error("trailer settled twice")
	}
	select {
	case <-tr.Done():
	default:
		t.Error("Done not closed")
	}
}

func TestTrailerReject(t *testing.T) {
	boom := errors.New("boom")
	tr := model.NewTrailer()
	called := false
	next := tr.Then(func(h *headers.Headers) (*headers.Headers, error) {
		called = true
		return h, nil
	})
	tr.Reject(boom)
	if _, err := next.Wait(context.Background()); !errors.Is(err, boom) || called {
		t.Errorf("err = %v, called = %v", err, called)
	}
	if !errors.Is(tr.Err(), boom) {
		t.Errorf("Err = %v", tr.Err())
	}
}

func TestTrailerThen(t *testing.T) {
	tr := model.ResolvedTrailer(nil)
	next := tr.Then(func(h *headers.Headers) (*headers.Headers, error) {
		return h.Clone().Set("X-Added", "1"), nil
	})
	h, ok := next.Peek()
	if !ok || h.Value("X-Added") != "1" {
		t.Fatalf("Peek = %v, %v", h, ok)
	}

	failed := tr.Then(func(*headers.Headers) (*headers.Headers, error) {
		return nil, errors.New("bad")
	})
	if _, ok := failed.Peek(); ok || failed.Err() == nil {
		t.Error("error from fn should reject")
	}
}

func TestTrailerWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := model.NewTrailer().Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}
