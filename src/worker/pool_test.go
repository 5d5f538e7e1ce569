package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sprintrstudio/openCap/src/region"
	"github.com/sprintrstudio/openCap/src/session"
)

func TestSubmitRejectsWhileBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	p := New(func(ctx context.Context, sel region.Selection) (session.Result, error) {
		close(started)
		<-release
		return session.Result{Selection: sel, Width: 10, Height: 5}, nil
	})
	defer p.Close()

	done := make(chan session.Result, 1)
	if !p.Submit(context.Background(), region.Monitor(0), func(res session.Result, err error) { done <- res }) {
		t.Fatal("first submit rejected")
	}
	<-started
	if !p.Busy() {
		t.Error("expected pool to report busy")
	}
	if p.Submit(context.Background(), region.Full(), nil) {
		t.Fatal("second submit accepted while a session is in flight")
	}

	close(release)
	select {
	case res := <-done:
		if res.Selection != region.Monitor(0) || res.Width != 10 {
			t.Errorf("unexpected result %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback not invoked")
	}
	if p.Busy() {
		t.Error("pool still busy after callback")
	}
}

func TestSubmitAfterCompletion(t *testing.T) {
	boom := errors.New("boom")
	p := New(func(ctx context.Context, sel region.Selection) (session.Result, error) {
		return session.Result{}, boom
	})
	defer p.Close()

	for i := 0; i < 3; i++ {
		errCh := make(chan error, 1)
		if !p.Submit(context.Background(), region.Full(), func(_ session.Result, err error) { errCh <- err }) {
			t.Fatalf("submit %d rejected", i)
		}
		if err := <-errCh; !errors.Is(err, boom) {
			t.Fatalf("submit %d: got %v", i, err)
		}
	}
}
