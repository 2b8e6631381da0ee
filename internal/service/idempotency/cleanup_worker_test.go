package idempotency

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

// expiringKeys хранит только TTL записей: уборке больше ничего не нужно.
type expiringKeys struct {
	mu     sync.Mutex
	ttls   []time.Time
	err    error
	sweeps int
}

var _ domain.IdempotencyRepository = (*expiringKeys)(nil)

func (r *expiringKeys) CreateProcessing(string, string, time.Time) (domain.IdempotencyRecord, error) {
	return domain.IdempotencyRecord{}, errors.New("not used in cleanup tests")
}

func (r *expiringKeys) Get(string) (domain.IdempotencyRecord, error) {
	return domain.IdempotencyRecord{}, errors.New("not used in cleanup tests")
}

func (r *expiringKeys) MarkDone(string, []byte, int) error   { return nil }
func (r *expiringKeys) MarkFailed(string, []byte, int) error { return nil }

func (r *expiringKeys) DeleteExpired(before time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps++
	if r.err != nil {
		return 0, r.err
	}

	deleted := 0
	kept := r.ttls[:0]
	for _, ttl := range r.ttls {
		if !ttl.After(before) && (limit <= 0 || deleted < limit) {
			deleted++
			continue
		}
		kept = append(kept, ttl)
	}
	r.ttls = kept
	return deleted, nil
}

func (r *expiringKeys) sweepCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweeps
}

func (r *expiringKeys) remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ttls)
}

func expiredAt(offset time.Duration) time.Time {
	return time.Now().UTC().Add(offset)
}

func TestCleanupWorker_DeleteExpired_DrainsInBatches(t *testing.T) {
	t.Parallel()

	repo := &expiringKeys{ttls: []time.Time{
		expiredAt(-3 * time.Hour),
		expiredAt(-2 * time.Hour),
		expiredAt(-time.Hour),
		expiredAt(-time.Minute),
		expiredAt(-time.Second),
		expiredAt(time.Hour), // ещё живой ключ
	}}
	worker := NewCleanupWorker(repo, WithBatchSize(2))

	deleted, err := worker.DeleteExpired(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}

	if deleted != 5 {
		t.Fatalf("unexpected deleted total: got=%d want=5", deleted)
	}
	// Порции 2+2+1: последняя неполная порция останавливает цикл.
	if calls := repo.sweepCalls(); calls != 3 {
		t.Fatalf("unexpected sweep calls: got=%d want=3", calls)
	}
	if left := repo.remaining(); left != 1 {
		t.Fatalf("live key must survive the sweep, %d records left", left)
	}
}

func TestCleanupWorker_DeleteExpired_RepoError(t *testing.T) {
	t.Parallel()

	repo := &expiringKeys{err: errors.New("idempotency_keys table locked")}
	worker := NewCleanupWorker(repo, WithBatchSize(10))

	deleted, err := worker.DeleteExpired(context.Background(), time.Now().UTC())
	if err == nil {
		t.Fatal("expected repo error to surface")
	}
	if deleted != 0 {
		t.Fatalf("unexpected deleted total: got=%d want=0", deleted)
	}
}

func TestCleanupWorker_DeleteExpired_CancelledContext(t *testing.T) {
	t.Parallel()

	repo := &expiringKeys{ttls: []time.Time{expiredAt(-time.Hour)}}
	worker := NewCleanupWorker(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := worker.DeleteExpired(ctx, time.Now().UTC())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls := repo.sweepCalls(); calls != 0 {
		t.Fatalf("cancelled sweep must not touch the repo, got %d calls", calls)
	}
}

func TestCleanupWorker_Run_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	repo := &expiringKeys{}
	worker := NewCleanupWorker(repo, WithInterval(5*time.Millisecond), WithBatchSize(10))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancel")
	}

	if calls := repo.sweepCalls(); calls == 0 {
		t.Fatal("expected at least one sweep before cancel")
	}
}
