package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/laundryos/internal/domain"
)

const defaultIdempotencyTTL = 24 * time.Hour

// idempotencyCache — in-memory реализация хранилища idempotency-ключей.
// Семантика повторяет postgres-реализацию: тот же ключ с тем же хэшем —
// повтор, с другим хэшем — конфликт.
type idempotencyCache struct {
	mu      sync.RWMutex
	records map[string]domain.IdempotencyRecord
}

// NewIdempotencyRepository создаёт in-memory реализацию IdempotencyRepository.
func NewIdempotencyRepository() domain.IdempotencyRepository {
	return &idempotencyCache{records: make(map[string]domain.IdempotencyRecord)}
}

func (c *idempotencyCache) CreateProcessing(key, requestHash string, ttlAt time.Time) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	requestHash = strings.TrimSpace(requestHash)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}
	if requestHash == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyRequestHashRequired
	}

	now := time.Now().UTC()
	if ttlAt.IsZero() {
		ttlAt = now.Add(defaultIdempotencyTTL)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.records[key]; ok {
		if existing.RequestHash != requestHash {
			return snapshot(existing), domain.ErrIdempotencyHashMismatch
		}
		return snapshot(existing), domain.ErrIdempotencyKeyAlreadyExists
	}

	record := domain.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Status:      domain.IdempotencyStatusProcessing,
		TTLAt:       ttlAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.records[key] = snapshot(record)
	return record, nil
}

func (c *idempotencyCache) Get(key string) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.records[key]
	if !ok {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
	}
	return snapshot(record), nil
}

func (c *idempotencyCache) MarkDone(key string, responseBody []byte, httpStatus int) error {
	return c.finish(key, domain.IdempotencyStatusDone, responseBody, httpStatus)
}

func (c *idempotencyCache) MarkFailed(key string, responseBody []byte, httpStatus int) error {
	return c.finish(key, domain.IdempotencyStatusFailed, responseBody, httpStatus)
}

func (c *idempotencyCache) finish(key string, status domain.IdempotencyStatus, responseBody []byte, httpStatus int) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrIdempotencyKeyRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	record, ok := c.records[key]
	if !ok {
		return domain.ErrIdempotencyKeyNotFound
	}
	record.Status = status
	record.ResponseBody = append([]byte(nil), responseBody...)
	record.HTTPStatus = httpStatus
	record.UpdatedAt = time.Now().UTC()
	c.records[key] = record
	return nil
}

func (c *idempotencyCache) DeleteExpired(before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, record := range c.records {
		if !record.Expired(before) {
			continue
		}
		delete(c.records, key)
		removed++
		if limit > 0 && removed >= limit {
			break
		}
	}
	return removed, nil
}

// snapshot копирует запись, чтобы вызывающий не трогал внутреннее состояние.
func snapshot(src domain.IdempotencyRecord) domain.IdempotencyRecord {
	dst := src
	dst.ResponseBody = append([]byte(nil), src.ResponseBody...)
	return dst
}

var _ domain.IdempotencyRepository = (*idempotencyCache)(nil)
