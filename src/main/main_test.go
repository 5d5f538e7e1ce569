package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sprintrstudio/openCap/src/region"
	"github.com/sprintrstudio/openCap/src/singleinstance"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"opencap", "-run-once", "-select", "monitor:1"},
			out:  []string{"opencap", "--run-once", "--select", "monitor:1"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"opencap", "-run-once=true", "-save-path=/tmp/shots"},
			out:  []string{"opencap", "--run-once=true", "--save-path=/tmp/shots"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"opencap", "--run-once", "-v", "-other"},
			out:  []string{"opencap", "--run-once", "-v", "-other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNormalizeLegacyArgsDoesNotMutateInput(t *testing.T) {
	in := []string{"opencap", "-run-once"}
	_ = normalizeLegacyArgs(in)
	if in[1] != "-run-once" {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--run-once", "--select", "monitor:1", "--save-path", "/tmp/shots", "-v"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !opts.runOnce {
		t.Fatal("Expected runOnce=true")
	}
	if opts.selection != "monitor:1" {
		t.Fatalf("Expected selection=monitor:1, got %q", opts.selection)
	}
	if opts.savePath != "/tmp/shots" || !opts.verbose {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type fakeClient struct {
	delegated bool
	path      string
	err       error
	called    bool
	sel       region.Selection
}

func (f *fakeClient) TryRunOnce(ctx context.Context, sel region.Selection) (bool, string, error) {
	f.called = true
	f.sel = sel
	return f.delegated, f.path, f.err
}

func TestHandleRunOnceWithDelegation_Delegated(t *testing.T) {
	client := &fakeClient{delegated: true, path: "/shots/a.png"}
	fallbackCalled := false
	var out bytes.Buffer

	err := handleRunOnceWithDelegation(context.Background(), region.Monitor(1), client, &out, func() error {
		fallbackCalled = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !client.called || client.sel != region.Monitor(1) {
		t.Fatalf("Expected client.TryRunOnce with monitor:1, got %v", client.sel)
	}
	if fallbackCalled {
		t.Fatal("Did not expect fallback when delegation succeeds")
	}
	if out.String() != "/shots/a.png\n" {
		t.Fatalf("Expected saved path on stdout, got %q", out.String())
	}
}

func TestHandleRunOnceWithDelegation_NoResidentFallback(t *testing.T) {
	client := &fakeClient{delegated: false}
	fallbackCalled := false

	_ = handleRunOnceWithDelegation(context.Background(), region.Full(), client, &bytes.Buffer{}, func() error {
		fallbackCalled = true
		return nil
	})

	if !client.called {
		t.Fatal("Expected client.TryRunOnce to be called")
	}
	if !fallbackCalled {
		t.Fatal("Expected fallback when no resident is delegated")
	}
}

func TestHandleRunOnceWithDelegation_TransportErrorFallback(t *testing.T) {
	client := &fakeClient{delegated: true, err: errors.New("resident closed without a response: EOF")}
	want := errors.New("standalone failed")

	err := handleRunOnceWithDelegation(context.Background(), region.Full(), client, &bytes.Buffer{}, func() error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("Expected fallback error to propagate, got %v", err)
	}
}

func TestHandleRunOnceWithDelegation_RemoteErrorNoFallback(t *testing.T) {
	for _, msg := range []string{"Busy, please retry", "region extends beyond image bounds"} {
		client := &fakeClient{delegated: true, err: &singleinstance.RemoteError{Message: msg}}
		fallbackCalled := false

		err := handleRunOnceWithDelegation(context.Background(), region.Full(), client, &bytes.Buffer{}, func() error {
			fallbackCalled = true
			return nil
		})
		if fallbackCalled {
			t.Fatalf("%q: did not expect a standalone capture after a resident error", msg)
		}
		if err == nil || err.Error() != msg {
			t.Fatalf("%q: expected the resident error, got %v", msg, err)
		}
	}
}
