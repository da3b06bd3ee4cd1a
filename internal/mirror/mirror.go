package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"textsummarizer/internal/domain"
)

const (
	defaultTimeout = 10 * time.Second
	syncLimit      = 10
)

// Document is the remote copy of one summary.
type Document struct {
	ID               string
	Text             string
	Summary          string
	Timestamp        time.Time
	TextLength       int
	SummaryLength    int
	CompressionRatio int
}

// DocumentStore is the remote durable store. Add lets the store assign the
// timestamp.
type DocumentStore interface {
	Add(ctx context.Context, doc Document) (string, error)
	Latest(ctx context.Context, limit int) ([]Document, error)
}

// Mirror copies summaries to a DocumentStore on a best-effort basis. It
// never returns errors; failures are logged and swallowed. A Mirror with a
// nil store is disabled.
type Mirror struct {
	store   DocumentStore
	timeout time.Duration
	log     *slog.Logger
	wg      sync.WaitGroup
}

func New(store DocumentStore, timeout time.Duration, log *slog.Logger) *Mirror {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Mirror{
		store:   store,
		timeout: timeout,
		log:     log,
	}
}

func (m *Mirror) Enabled() bool {
	return m != nil && m.store != nil
}

// Mirror writes one document and returns its remote id.
func (m *Mirror) Mirror(ctx context.Context, originalText, summaryText string) (string, bool) {
	if !m.Enabled() {
		if m != nil {
			m.log.WarnContext(ctx, "Mirror is not available so save is skipped")
		}
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	doc := NewDocument(originalText, summaryText)

	id, err := m.store.Add(ctx, doc)
	if err != nil {
		m.log.ErrorContext(ctx, "Failed to save summary to mirror",
			"error", err,
			"textLength", doc.TextLength,
			"summaryLength", doc.SummaryLength)

		return "", false
	}

	m.log.InfoContext(ctx, "Summary is saved to mirror",
		"mirrorID", id,
		"compressionRatio", doc.CompressionRatio)

	return id, true
}

// MirrorAsync runs Mirror in a detached goroutine. Cancelling ctx does not
// stop the write; only the mirror timeout bounds it.
func (m *Mirror) MirrorAsync(ctx context.Context, originalText, summaryText string) {
	if !m.Enabled() {
		return
	}

	detached := context.WithoutCancel(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				m.log.ErrorContext(detached, "Mirror save panicked",
					"error", fmt.Sprint(r))
			}
		}()

		m.Mirror(detached, originalText, summaryText)
	}()
}

// Wait blocks until detached writes finish or ctx is done.
func (m *Mirror) Wait(ctx context.Context) {
	if m == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.log.WarnContext(ctx, "Stopped waiting for mirror saves",
			"error", ctx.Err())
	}
}

// Sync reads the latest remote documents for diagnostics only. The result
// never feeds the local history.
func (m *Mirror) Sync(ctx context.Context) int {
	if !m.Enabled() {
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	docs, err := m.store.Latest(ctx, syncLimit)
	if err != nil {
		m.log.InfoContext(ctx, "Mirror sync is skipped",
			"error", err)

		return 0
	}

	if len(docs) > 0 {
		m.log.InfoContext(ctx, "Mirror is synced",
			"documentCount", len(docs),
			"latestID", docs[0].ID)
	}

	return len(docs)
}

// SyncAsync runs Sync in a goroutine that Wait drains, so the store can be
// closed safely afterwards.
func (m *Mirror) SyncAsync(ctx context.Context) {
	if !m.Enabled() {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				m.log.ErrorContext(ctx, "Mirror sync panicked",
					"error", fmt.Sprint(r))
			}
		}()

		m.Sync(ctx)
	}()
}

func NewDocument(originalText, summaryText string) Document {
	textLength := domain.TextLength(originalText)
	summaryLength := domain.TextLength(summaryText)

	return Document{
		Text:             domain.Excerpt(originalText),
		Summary:          summaryText,
		TextLength:       textLength,
		SummaryLength:    summaryLength,
		CompressionRatio: domain.CompressionRatio(textLength, summaryLength),
	}
}
