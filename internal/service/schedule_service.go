package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"landing/internal/config"
)

// ─────────────────────────────────────────────────────────────
// Schedule Service: periodic competitor re-synthesis
// ─────────────────────────────────────────────────────────────

const EventWatchCompleted = "watch:completed"

// Resynthesizer is the part of SynthesisService the scheduler needs.
type Resynthesizer interface {
	ResynthesizeWatch(ctx context.Context, w config.WatchConfig) error
}

// ResynthesizeWatch adapts Resynthesize to a watch entry.
func (s *SynthesisService) ResynthesizeWatch(ctx context.Context, w config.WatchConfig) error {
	_, err := s.Resynthesize(ctx, w.PageID, w.URL, w.Hint)
	return err
}

// ScheduleService re-synthesizes watched pages on cron schedules. A failed
// run is logged and leaves the page as it was.
type ScheduleService struct {
	synth   Resynthesizer
	emitter EventEmitter
	logger  *zap.Logger
	running runningJobsGuard
	timeout time.Duration

	mu        sync.Mutex
	cronSched *cron.Cron
}

func NewScheduleService(synth Resynthesizer, emitter EventEmitter, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = &MockEmitter{}
	}
	return &ScheduleService{synth: synth, emitter: emitter, logger: logger, timeout: 5 * time.Minute}
}

// Start schedules every watch entry, replacing any previous schedule. Entries
// with an invalid expression are skipped and reported in the returned error.
func (s *ScheduleService) Start(ctx context.Context, watches []config.WatchConfig) error {
	s.Stop()

	c := cron.New()
	var errs []error
	scheduled := 0
	for _, w := range watches {
		w := w
		if _, err := c.AddFunc(w.Schedule, func() { s.RunWatch(ctx, w) }); err != nil {
			errs = append(errs, fmt.Errorf("watch %s: invalid schedule %q: %w", w.PageID, w.Schedule, err))
			continue
		}
		scheduled++
	}
	c.Start()

	s.mu.Lock()
	s.cronSched = c
	s.mu.Unlock()

	s.logger.Info("watch schedule started", zap.Int("entries", scheduled))
	return errors.Join(errs...)
}

// RunWatch runs one watch entry now. Overlapping runs for the same page are
// skipped. Reports whether the run succeeded.
func (s *ScheduleService) RunWatch(ctx context.Context, w config.WatchConfig) bool {
	if !s.running.TryLock(w.PageID) {
		s.logger.Warn("watch already running, skipped", zap.String("page", w.PageID))
		return false
	}
	defer s.running.Unlock(w.PageID)

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log := s.logger.With(zap.String("page", w.PageID), zap.String("url", w.URL))
	log.Info("watch run")
	if err := s.synth.ResynthesizeWatch(runCtx, w); err != nil {
		log.Error("watch run failed", zap.Error(err))
		return false
	}
	s.emitter.Emit(ctx, EventWatchCompleted, w.PageID)
	return true
}

// Stop halts the scheduler; runs in flight continue. Use WaitRunning to
// wait for them.
func (s *ScheduleService) Stop() {
	s.mu.Lock()
	c := s.cronSched
	s.cronSched = nil
	s.mu.Unlock()
	if c != nil {
		c.Stop()
	}
}

// WaitRunning blocks until running jobs finish or ctx is cancelled.
func (s *ScheduleService) WaitRunning(ctx context.Context) {
	s.running.WaitAll(ctx)
}
