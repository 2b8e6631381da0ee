package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
	"github.com/vladislavdragonenkov/laundryos/internal/storage/memory"
)

func TestIdempotencyRepository_ReplayReturnsStoredResponse(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	record, err := repo.CreateProcessing("pos-create-order-42", "sha256:aaa", time.Time{})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if record.Status != domain.IdempotencyStatusProcessing {
		t.Fatalf("expected processing, got %s", record.Status)
	}

	body := []byte(`{"order":{"id":"order-42","status":"pending payment"}}`)
	if err := repo.MarkDone("pos-create-order-42", body, 201); err != nil {
		t.Fatalf("mark done failed: %v", err)
	}

	// Кассир нажал кнопку второй раз: ключ занят, сохранённый ответ на месте.
	replayed, err := repo.CreateProcessing("pos-create-order-42", "sha256:aaa", time.Time{})
	if !errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists) {
		t.Fatalf("expected ErrIdempotencyKeyAlreadyExists, got %v", err)
	}
	if replayed.Status != domain.IdempotencyStatusDone {
		t.Fatalf("expected done record on replay, got %s", replayed.Status)
	}
	if string(replayed.ResponseBody) != string(body) || replayed.HTTPStatus != 201 {
		t.Fatalf("stored response lost on replay: %+v", replayed)
	}
}

func TestIdempotencyRepository_SameKeyDifferentBodyIsConflict(t *testing.T) {
	repo := memory.NewIdempotencyRepository()
	if _, err := repo.CreateProcessing("pos-create-order-42", "sha256:aaa", time.Time{}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err := repo.CreateProcessing("pos-create-order-42", "sha256:bbb", time.Time{})
	if !errors.Is(err, domain.ErrIdempotencyHashMismatch) {
		t.Fatalf("expected ErrIdempotencyHashMismatch, got %v", err)
	}
}

func TestIdempotencyRepository_RequiresKeyAndHash(t *testing.T) {
	repo := memory.NewIdempotencyRepository()

	if _, err := repo.CreateProcessing("  ", "sha256:aaa", time.Time{}); !errors.Is(err, domain.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected ErrIdempotencyKeyRequired, got %v", err)
	}
	if _, err := repo.CreateProcessing("pos-create-order-42", "", time.Time{}); !errors.Is(err, domain.ErrIdempotencyRequestHashRequired) {
		t.Fatalf("expected ErrIdempotencyRequestHashRequired, got %v", err)
	}
	if err := repo.MarkDone("", nil, 200); !errors.Is(err, domain.ErrIdempotencyKeyRequired) {
		t.Fatalf("expected ErrIdempotencyKeyRequired, got %v", err)
	}
	if err := repo.MarkFailed("missing", nil, 500); !errors.Is(err, domain.ErrIdempotencyKeyNotFound) {
		t.Fatalf("expected ErrIdempotencyKeyNotFound, got %v", err)
	}
}

func TestIdempotencyRepository_DeleteExpired(t *testing.T) {
	repo := memory.NewIdempotencyRepository()
	now := time.Now().UTC()

	if _, err := repo.CreateProcessing("stale-receipt", "sha256:aaa", now.Add(-time.Hour)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := repo.CreateProcessing("fresh-receipt", "sha256:bbb", now.Add(time.Hour)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	removed, err := repo.DeleteExpired(now, 0)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	if _, err := repo.Get("stale-receipt"); !errors.Is(err, domain.ErrIdempotencyKeyNotFound) {
		t.Fatalf("expected stale key to be gone, got %v", err)
	}
	if _, err := repo.Get("fresh-receipt"); err != nil {
		t.Fatalf("fresh key must survive, got %v", err)
	}
}

func TestIdempotencyRepository_DeleteExpiredHonorsBatchLimit(t *testing.T) {
	repo := memory.NewIdempotencyRepository()
	now := time.Now().UTC()

	for _, key := range []string{"a", "b", "c"} {
		if _, err := repo.CreateProcessing(key, "sha256:"+key, now.Add(-time.Minute)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	removed, err := repo.DeleteExpired(now, 2)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected batch of 2, got %d", removed)
	}

	removed, err = repo.DeleteExpired(now, 2)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected final record removed, got %d", removed)
	}
}
