package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"textsummarizer/internal/domain"
)

const StorageKey = "ai_summaries"

// Cache is the bounded, newest-first history of past summaries. The whole
// list is written back to the Store on every mutation.
type Cache struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
	log   *slog.Logger
}

type Option func(*Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func NewCache(store Store, log *slog.Logger, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		now:   time.Now,
		log:   log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Add records a finished summarization at the head of the history and
// evicts whatever falls beyond capacity.
func (c *Cache) Add(
	ctx context.Context,
	originalText string,
	summaryText string,
) (domain.SummaryRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.loadLocked(ctx)
	if err != nil {
		return domain.SummaryRecord{}, err
	}

	now := c.now().UTC()
	record := domain.SummaryRecord{
		ID:                 nextID(records, now),
		OriginalExcerpt:    domain.Excerpt(originalText),
		SummaryText:        summaryText,
		CreatedAt:          now,
		OriginalTextLength: domain.TextLength(originalText),
		SummaryLength:      domain.TextLength(summaryText),
	}

	records = append([]domain.SummaryRecord{record}, records...)
	evicted := c.enforceSizeLimit(&records)

	if err = c.saveLocked(ctx, records); err != nil {
		return domain.SummaryRecord{}, err
	}

	c.log.InfoContext(ctx, "Summary is saved to history",
		"id", record.ID,
		"textLength", record.OriginalTextLength,
		"summaryLength", record.SummaryLength,
		"historySize", len(records),
		"evicted", evicted)

	return record, nil
}

// List returns the history newest-first. It never returns nil; a read
// failure yields an empty list together with a storage error.
func (c *Cache) List(ctx context.Context) ([]domain.SummaryRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.store.Load(ctx, StorageKey)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to read history",
			"error", err,
			"key", StorageKey)

		return []domain.SummaryRecord{}, domain.NewStorageError("read history", err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to decode history",
			"error", err,
			"key", StorageKey,
			"bytes", len(data))

		return []domain.SummaryRecord{}, domain.NewStorageError("decode history", err)
	}

	return records, nil
}

// Get returns the record with id.
func (c *Cache) Get(ctx context.Context, id int64) (domain.SummaryRecord, bool, error) {
	records, err := c.List(ctx)
	if err != nil {
		return domain.SummaryRecord{}, false, err
	}

	for _, r := range records {
		if r.ID == id {
			return r, true, nil
		}
	}

	return domain.SummaryRecord{}, false, nil
}

// Delete removes the record with id. An unknown id is a no-op and reports
// false.
func (c *Cache) Delete(ctx context.Context, id int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.store.Load(ctx, StorageKey)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to read history",
			"error", err,
			"key", StorageKey,
			"id", id)

		return false, domain.NewStorageError("read history", err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to decode history",
			"error", err,
			"key", StorageKey,
			"id", id)

		return false, domain.NewStorageError("decode history", err)
	}

	kept := make([]domain.SummaryRecord, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}

	if len(kept) == len(records) {
		return false, nil
	}

	if err = c.saveLocked(ctx, kept); err != nil {
		return false, err
	}

	c.log.InfoContext(ctx, "Summary is deleted from history",
		"id", id,
		"historySize", len(kept))

	return true, nil
}

// loadLocked reads the list for a mutation. An undecodable list is replaced
// on the next save; an I/O failure aborts the mutation.
func (c *Cache) loadLocked(ctx context.Context) ([]domain.SummaryRecord, error) {
	data, err := c.store.Load(ctx, StorageKey)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to read history",
			"error", err,
			"key", StorageKey)

		return nil, domain.NewStorageError("read history", err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		c.log.WarnContext(ctx, "History is unreadable so it will be replaced",
			"error", err,
			"key", StorageKey,
			"bytes", len(data))

		return []domain.SummaryRecord{}, nil
	}

	return records, nil
}

func (c *Cache) saveLocked(ctx context.Context, records []domain.SummaryRecord) error {
	data, err := encodeRecords(records)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to encode history",
			"error", err,
			"key", StorageKey)

		return domain.NewStorageError("encode history", err)
	}

	if err = c.store.Save(ctx, StorageKey, data); err != nil {
		c.log.ErrorContext(ctx, "Failed to write history",
			"error", err,
			"key", StorageKey,
			"historySize", len(records))

		return domain.NewStorageError("write history", fmt.Errorf("save %q: %w", StorageKey, err))
	}

	return nil
}

func (c *Cache) enforceSizeLimit(records *[]domain.SummaryRecord) int {
	if len(*records) <= domain.HistoryCapacity {
		return 0
	}

	evicted := len(*records) - domain.HistoryCapacity
	*records = (*records)[:domain.HistoryCapacity]

	return evicted
}

// nextID uses the creation time in milliseconds, bumped past every id
// already present so ids stay unique when the clock repeats.
func nextID(records []domain.SummaryRecord, now time.Time) int64 {
	id := now.UnixMilli()
	for _, r := range records {
		if r.ID >= id {
			id = r.ID + 1
		}
	}

	return id
}
