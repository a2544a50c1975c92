package process

import (
	"context"
	"testing"
	"time"
)

func TestRunCapturesStdout(t *testing.T) {
	p := New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Run(ctx, []string{"/bin/sh", "-c", "echo hello"}, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if p.Len() != 1 {
		t.Fatalf("expected 1 line, got %d", p.Len())
	}

	code, exited := p.ExitCode()
	if !exited || code != 0 {
		t.Fatalf("expected clean exit, got code=%d exited=%v", code, exited)
	}
}

func TestRunRecordsNonZeroExit(t *testing.T) {
	p := New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Run(ctx, []string{"/bin/sh", "-c", "exit 3"}, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	code, exited := p.ExitCode()
	if !exited || code != 3 {
		t.Fatalf("expected exit code 3, got code=%d exited=%v", code, exited)
	}
}

func TestRunRejectsEmptyArgs(t *testing.T) {
	p := New()
	if err := p.Run(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for empty args")
	}
}

func TestStreamYieldsLinesInOrderThenEnds(t *testing.T) {
	p := New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx, []string{"/bin/sh", "-c", "echo one; echo two; echo three"}, nil)
	}()

	stream := NewStream(p)
	var got []string
	for {
		line, ok, err := stream.Next(ctx)
		if err != nil {
			t.Fatalf("Next errored: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, line.Text)
	}

	if err := <-done; err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestStreamRespectsContextCancellation(t *testing.T) {
	p := New()
	stream := NewStream(p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := stream.Next(ctx)
	if err == nil {
		t.Fatalf("expected context error")
	}
}
