package controller

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"textsummarizer/internal/domain"
)

// State tells whether a summarization round-trip is outstanding.
type State int32

const (
	Idle State = iota
	InFlight
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in-flight"
	default:
		return "unknown"
	}
}

var ErrBusy = errors.New("summarization is already in progress")

type Relay interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type History interface {
	Add(ctx context.Context, originalText, summaryText string) (domain.SummaryRecord, error)
	List(ctx context.Context) ([]domain.SummaryRecord, error)
	Get(ctx context.Context, id int64) (domain.SummaryRecord, bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type Mirror interface {
	MirrorAsync(ctx context.Context, originalText, summaryText string)
}

// Result is a finished summarization. Record is nil and StorageErr is set
// when the summary could not be written to history.
type Result struct {
	Summary    string
	Record     *domain.SummaryRecord
	StorageErr error
}

// Controller drives one user's flow: relay call, history write, mirror copy.
// At most one summarization runs at a time.
type Controller struct {
	relay         Relay
	history       History
	mirror        Mirror
	warmupRetries int
	sleep         func(ctx context.Context, d time.Duration) error
	state         atomic.Int32
	log           *slog.Logger
}

type Option func(*Controller)

// WithWarmupRetries makes Summarize wait out a model warm-up and retry up to
// n times.
func WithWarmupRetries(n int) Option {
	return func(c *Controller) {
		c.warmupRetries = max(n, 0)
	}
}

func New(relay Relay, history History, mirror Mirror, log *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		relay:   relay,
		history: history,
		mirror:  mirror,
		sleep:   sleepContext,
		log:     log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

// Summarize runs one round-trip. Nothing is written to history unless the
// relay returns a summary.
func (c *Controller) Summarize(ctx context.Context, text string) (Result, error) {
	if !c.state.CompareAndSwap(int32(Idle), int32(InFlight)) {
		c.log.InfoContext(ctx, "Summarize is ignored while busy")
		return Result{}, ErrBusy
	}
	defer c.state.Store(int32(Idle))

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, &domain.Error{Kind: domain.KindValidation, Message: "Please enter some text"}
	}

	if err := domain.ValidateInput(text); err != nil {
		return Result{}, err
	}

	summary, err := c.callRelay(ctx, text)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to summarize text",
			"error", err,
			"kind", domain.KindOf(err),
			"textLength", domain.TextLength(text))

		return Result{}, err
	}

	result := Result{Summary: summary}

	record, err := c.history.Add(ctx, text, summary)
	if err != nil {
		c.log.WarnContext(ctx, "Summary is not saved to history",
			"error", err)
		result.StorageErr = err
	} else {
		result.Record = &record
	}

	if c.mirror != nil {
		c.mirror.MirrorAsync(ctx, text, summary)
	}

	return result, nil
}

func (c *Controller) callRelay(ctx context.Context, text string) (string, error) {
	for attempt := 0; ; attempt++ {
		summary, err := c.relay.Summarize(ctx, text)
		if err == nil {
			return summary, nil
		}

		var e *domain.Error
		if !errors.As(err, &e) || e.Kind != domain.KindRetryable || attempt >= c.warmupRetries {
			return "", err
		}

		wait := time.Duration(e.EstimatedTime * float64(time.Second))
		c.log.InfoContext(ctx, "Model is warming up so request will be retried",
			"attempt", attempt+1,
			"maxRetries", c.warmupRetries,
			"wait", wait)

		if sleepErr := c.sleep(ctx, wait); sleepErr != nil {
			return "", err
		}
	}
}

func (c *Controller) History(ctx context.Context) ([]domain.SummaryRecord, error) {
	return c.history.List(ctx)
}

func (c *Controller) Show(ctx context.Context, id int64) (domain.SummaryRecord, bool, error) {
	return c.history.Get(ctx, id)
}

func (c *Controller) Delete(ctx context.Context, id int64) (bool, error) {
	return c.history.Delete(ctx, id)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
