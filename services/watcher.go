package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const probeTimeout = 10 * time.Second

// Watcher probes the scoring service on a schedule and drains every queue when connectivity returns.
// It does nothing while the service stays online or stays offline.
type Watcher struct {
	queue  *QueueService
	prober Prober
	log    *zap.Logger

	mu     sync.Mutex
	online bool
	cron   *cron.Cron
}

// NewWatcher starts in the offline state, so the first successful probe flushes leftovers.
func NewWatcher(queue *QueueService, prober Prober, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{queue: queue, prober: prober, log: log}
}

// Start schedules the probe. An empty or "off" spec disables the watcher.
func (w *Watcher) Start(spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, "off") {
		w.log.Info("connectivity watcher disabled")
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout+drainLockTTL)
		defer cancel()
		w.Check(ctx)
	}); err != nil {
		return err
	}
	w.mu.Lock()
	w.cron = c
	w.mu.Unlock()
	c.Start()
	w.log.Info("connectivity watcher started", zap.String("spec", spec))
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	c := w.cron
	w.cron = nil
	w.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// Check probes once. It reports whether this probe saw the offline to online transition and drained.
func (w *Watcher) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	online := w.prober.Online(probeCtx)
	cancel()

	w.mu.Lock()
	cameBack := online && !w.online
	w.online = online
	w.mu.Unlock()

	if !cameBack {
		return false
	}
	w.log.Info("scoring service reachable again, draining queues")
	results, err := w.queue.DrainAll(ctx)
	if err != nil {
		w.log.Warn("drain sweep interrupted", zap.Error(err))
	}
	for userID, r := range results {
		w.log.Debug("drained", zap.String("user_id", userID), zap.Int("succeeded", r.Succeeded),
			zap.Int("failed", r.Failed), zap.Int("remaining", r.Remaining), zap.Bool("rate_limited", r.RateLimited))
	}
	return true
}

// Online reports the state seen by the last probe.
func (w *Watcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}
