package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultMirrorSyncSpec = "@every 15m"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	mirrorSyncTimeout     = time.Minute
)

// Syncer reads the remote mirror for diagnostics.
type Syncer interface {
	Sync(ctx context.Context) int
}

// Scheduler runs the periodic mirror sync while a session is open.
type Scheduler struct {
	ctx    context.Context
	cron   *cron.Cron
	syncer Syncer
	spec   string
	log    *slog.Logger
}

func New(ctx context.Context, syncer Syncer, spec string, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	if spec == "" {
		spec = DefaultMirrorSyncSpec
	}

	return &Scheduler{
		ctx:    ctx,
		cron:   c,
		syncer: syncer,
		spec:   spec,
		log:    log,
	}
}

func (s *Scheduler) Spec() string {
	return s.spec
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.syncMirror); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) syncMirror() {
	ctx, cancel := context.WithTimeout(s.ctx, mirrorSyncTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	count := s.syncer.Sync(ctx)
	s.log.DebugContext(ctx, "Scheduled mirror sync is finished",
		"spec", s.spec,
		"documentCount", count)
}
