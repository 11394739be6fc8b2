package background

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeRunStore struct {
	calls   atomic.Int64
	cutoffs chan time.Time
}

func (f *fakeRunStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.calls.Add(1)
	select {
	case f.cutoffs <- cutoff:
	default:
	}
	return 1, nil
}

func TestRetentionManager_SweepsOnStartup(t *testing.T) {
	store := &fakeRunStore{cutoffs: make(chan time.Time, 1)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rm := NewRetentionManager(store, logger, time.Hour, 30*24*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rm.Start(ctx)
		close(done)
	}()

	select {
	case cutoff := <-store.cutoffs:
		assert.WithinDuration(t, time.Now().UTC().Add(-30*24*time.Hour), cutoff, time.Minute)
	case <-time.After(time.Second):
		t.Fatal("expected an immediate sweep on startup")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("retention manager did not stop on context cancel")
	}
	assert.GreaterOrEqual(t, store.calls.Load(), int64(1))
}

func TestRetentionManager_Stop(t *testing.T) {
	store := &fakeRunStore{cutoffs: make(chan time.Time, 1)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rm := NewRetentionManager(store, logger, time.Hour, time.Hour)

	done := make(chan struct{})
	go func() {
		rm.Start(context.Background())
		close(done)
	}()
	<-store.cutoffs

	rm.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("retention manager did not stop")
	}
}
