package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunner_RunsImmediatelyAndOnInterval(t *testing.T) {
	repo := newFakeRepo(testEmployee(1))
	checkpoints := &memCheckpoint{t: time.Now(), ok: true} // nothing stale: every pass is NO_UPDATES
	engine := newTestEngine(repo, &fakeIndex{}, stubEmbedder(), checkpoints)

	runner := NewRunner(engine, 20*time.Millisecond, engine.logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return checkpoints.loadCalls.Load() >= 2
	}, time.Second, 5*time.Millisecond, "expected the immediate pass plus at least one tick")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after context cancellation")
	}
}

func TestRunner_StopsOnCancelledContext(t *testing.T) {
	repo := newFakeRepo()
	engine := newTestEngine(repo, &fakeIndex{}, stubEmbedder(), &memCheckpoint{t: time.Now(), ok: true})
	runner := NewRunner(engine, time.Hour, engine.logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not observe cancellation")
	}
}
