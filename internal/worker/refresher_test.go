package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mailsage-labs/mailsage-core/internal/core/domain"
)

type fakeAssistant struct {
	fetchCalls int64
	buildCalls int64
	fetchErr   error
	buildErr   error
}

func (f *fakeAssistant) AnswerQuestion(ctx context.Context, question string) *domain.AnswerResult {
	return &domain.AnswerResult{}
}

func (f *fakeAssistant) FetchToday(ctx context.Context) (int, error) {
	atomic.AddInt64(&f.fetchCalls, 1)
	if f.fetchErr != nil {
		return 0, f.fetchErr
	}
	return 3, nil
}

func (f *fakeAssistant) BuildIndex(ctx context.Context) (int, error) {
	atomic.AddInt64(&f.buildCalls, 1)
	if f.buildErr != nil {
		return 0, f.buildErr
	}
	return 7, nil
}

func (f *fakeAssistant) Summarize(ctx context.Context, bullets int) (string, error) {
	return "", nil
}

func (f *fakeAssistant) CheckSender(ctx context.Context, query string) (bool, []*domain.EmailRecord, error) {
	return false, nil, nil
}

func (f *fakeAssistant) ClearMemory(ctx context.Context) error {
	return nil
}

func (f *fakeAssistant) fetches() int64 { return atomic.LoadInt64(&f.fetchCalls) }
func (f *fakeAssistant) builds() int64  { return atomic.LoadInt64(&f.buildCalls) }

type fakeLock struct {
	acquired     bool
	acquireErr   error
	acquireCalls int64
	releaseCalls int64
}

func (f *fakeLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	atomic.AddInt64(&f.acquireCalls, 1)
	return f.acquired, f.acquireErr
}

func (f *fakeLock) Release(ctx context.Context, name string) error {
	atomic.AddInt64(&f.releaseCalls, 1)
	return nil
}

func (f *fakeLock) Extend(ctx context.Context, name string, ttl time.Duration) error {
	return nil
}

func (f *fakeLock) Ping(ctx context.Context) error {
	return nil
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRefresher_RunsImmediatelyOnStart(t *testing.T) {
	assistant := &fakeAssistant{}
	r := NewRefresher(RefresherConfig{
		Assistant: assistant,
		Interval:  time.Hour,
	})

	r.Start(context.Background())
	defer r.Stop()

	waitFor(t, func() bool { return assistant.fetches() >= 1 && assistant.builds() >= 1 })
}

func TestRefresher_RefreshesOnInterval(t *testing.T) {
	assistant := &fakeAssistant{}
	r := NewRefresher(RefresherConfig{
		Assistant: assistant,
		Interval:  10 * time.Millisecond,
	})

	r.Start(context.Background())
	defer r.Stop()

	waitFor(t, func() bool { return assistant.fetches() >= 3 })
}

func TestRefresher_StopHaltsLoop(t *testing.T) {
	assistant := &fakeAssistant{}
	r := NewRefresher(RefresherConfig{
		Assistant: assistant,
		Interval:  10 * time.Millisecond,
	})

	r.Start(context.Background())
	waitFor(t, func() bool { return assistant.fetches() >= 1 })
	r.Stop()

	if r.Running() {
		t.Error("expected Running to be false after Stop")
	}

	before := assistant.fetches()
	time.Sleep(50 * time.Millisecond)
	if got := assistant.fetches(); got != before {
		t.Errorf("expected no refreshes after Stop, got %d more", got-before)
	}
}

func TestRefresher_StartIsIdempotent(t *testing.T) {
	assistant := &fakeAssistant{}
	r := NewRefresher(RefresherConfig{
		Assistant: assistant,
		Interval:  time.Hour,
	})

	r.Start(context.Background())
	r.Start(context.Background())
	defer r.Stop()

	waitFor(t, func() bool { return assistant.fetches() >= 1 })

	// A second Start must not spawn a second loop.
	time.Sleep(20 * time.Millisecond)
	if got := assistant.fetches(); got != 1 {
		t.Errorf("expected exactly 1 refresh, got %d", got)
	}
}

func TestRefresher_SkipsCycleWhenLockHeldElsewhere(t *testing.T) {
	assistant := &fakeAssistant{}
	lock := &fakeLock{acquired: false}
	r := NewRefresher(RefresherConfig{
		Assistant: assistant,
		Lock:      lock,
		Interval:  time.Hour,
	})

	r.Start(context.Background())
	defer r.Stop()

	waitFor(t, func() bool { return atomic.LoadInt64(&lock.acquireCalls) >= 1 })

	if got := assistant.fetches(); got != 0 {
		t.Errorf("expected no fetches while lock is held elsewhere, got %d", got)
	}
}

func TestRefresher_ReleasesLockAfterCycle(t *testing.T) {
	assistant := &fakeAssistant{}
	lock := &fakeLock{acquired: true}
	r := NewRefresher(RefresherConfig{
		Assistant: assistant,
		Lock:      lock,
		Interval:  time.Hour,
	})

	r.Start(context.Background())
	defer r.Stop()

	waitFor(t, func() bool { return atomic.LoadInt64(&lock.releaseCalls) >= 1 })

	if got := assistant.fetches(); got != 1 {
		t.Errorf("expected 1 fetch, got %d", got)
	}
}

func TestRefresher_FetchFailureSkipsReindex(t *testing.T) {
	assistant := &fakeAssistant{fetchErr: errors.New("mailbox down")}
	r := NewRefresher(RefresherConfig{
		Assistant: assistant,
		Interval:  10 * time.Millisecond,
	})

	r.Start(context.Background())
	defer r.Stop()

	// The loop keeps retrying despite failures.
	waitFor(t, func() bool { return assistant.fetches() >= 2 })

	if got := assistant.builds(); got != 0 {
		t.Errorf("expected no index builds after fetch failures, got %d", got)
	}
}

func TestRefresher_ContextCancellationStopsLoop(t *testing.T) {
	assistant := &fakeAssistant{}
	r := NewRefresher(RefresherConfig{
		Assistant: assistant,
		Interval:  10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	waitFor(t, func() bool { return assistant.fetches() >= 1 })

	cancel()
	time.Sleep(30 * time.Millisecond)

	before := assistant.fetches()
	time.Sleep(50 * time.Millisecond)
	if got := assistant.fetches(); got != before {
		t.Errorf("expected no refreshes after cancellation, got %d more", got-before)
	}
}
