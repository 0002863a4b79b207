package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/arakoo/atm/internal/domain/engine"
	"github.com/arakoo/atm/internal/domain/entities"
	"github.com/arakoo/atm/internal/infrastructure/logger"
	"github.com/arakoo/atm/internal/infrastructure/metrics"
	"github.com/arakoo/atm/internal/ports"
)

// ReconcilerService runs one reconciliation loop per subscribed identifier.
// Each loop owns its task snapshot and live-notification set; every tick it
// fetches the identifier's tasks, re-derives statuses, reconciles the
// notification set, and atomically replaces the snapshot. The engine calls
// are pure; the loop is the only mutable-state holder.
type ReconcilerService struct {
	store    ports.TaskStore
	sink     ports.AlertSink
	interval time.Duration
	logger   *logger.Logger
	metrics  *metrics.Engine

	cron *cron.Cron

	mu    sync.Mutex
	loops map[string]*loop
}

// loop is the per-identifier reconciliation state. tickMu serializes ticks:
// if a tick is still running when the next one fires, the new tick is
// skipped and the fixed interval acts as the retry schedule.
type loop struct {
	identifier string
	entryID    cron.EntryID
	ctx        context.Context
	cancel     context.CancelFunc

	tickMu sync.Mutex

	mu           sync.Mutex
	live         []entities.Notification
	snapshot     ports.Snapshot
	alertPending bool
}

// NewReconcilerService creates the reconciler. Start must be called before
// loops tick; Stop tears every loop down.
func NewReconcilerService(store ports.TaskStore, sink ports.AlertSink, interval time.Duration, appLogger *logger.Logger, engineMetrics *metrics.Engine) *ReconcilerService {
	return &ReconcilerService{
		store:    store,
		sink:     sink,
		interval: interval,
		logger:   appLogger.WithComponent("reconciler"),
		metrics:  engineMetrics,
		cron:     cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		loops:    make(map[string]*loop),
	}
}

// Start begins scheduling ticks.
func (s *ReconcilerService) Start() {
	s.cron.Start()
}

// Stop cancels every loop, waits for running ticks to finish, and stops the
// scheduler. In-flight fetches are abandoned via context cancellation.
func (s *ReconcilerService) Stop() {
	s.mu.Lock()
	for identifier, l := range s.loops {
		l.cancel()
		s.cron.Remove(l.entryID)
		delete(s.loops, identifier)
		s.metrics.ActiveLoops.Dec()
	}
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Subscribe starts a reconciliation loop for the identifier if none is
// running. The first tick runs immediately; subsequent ticks follow the
// fixed interval.
func (s *ReconcilerService) Subscribe(identifier string) error {
	s.mu.Lock()

	if _, ok := s.loops[identifier]; ok {
		s.mu.Unlock()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &loop{
		identifier: identifier,
		ctx:        ctx,
		cancel:     cancel,
	}

	entryID, err := s.cron.AddFunc(intervalSpec(s.interval), func() {
		s.runTick(l)
	})
	if err != nil {
		cancel()
		s.mu.Unlock()
		return err
	}
	l.entryID = entryID

	s.loops[identifier] = l
	s.metrics.ActiveLoops.Inc()
	s.logger.Infow("Reconciliation loop started", "identifier", identifier, "interval", s.interval)
	s.mu.Unlock()

	// First pass runs immediately so the subscriber sees fresh data.
	s.runTick(l)
	return nil
}

// Unsubscribe tears down the identifier's loop. Any in-flight fetch is
// abandoned without applying its result.
func (s *ReconcilerService) Unsubscribe(identifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loops[identifier]
	if !ok {
		return
	}

	l.cancel()
	s.cron.Remove(l.entryID)
	delete(s.loops, identifier)
	s.metrics.ActiveLoops.Dec()
	s.logger.Infow("Reconciliation loop stopped", "identifier", identifier)
}

// Poke triggers an immediate out-of-band reconcile for the identifier, used
// after a successful task save. A no-op when no loop is subscribed or a tick
// is already running.
func (s *ReconcilerService) Poke(identifier string) {
	s.mu.Lock()
	l, ok := s.loops[identifier]
	s.mu.Unlock()
	if !ok {
		return
	}
	go s.runTick(l)
}

// Snapshot returns the identifier's latest derived tasks and live
// notifications. The second return is false when no loop is subscribed.
func (s *ReconcilerService) Snapshot(identifier string) (ports.Snapshot, bool) {
	s.mu.Lock()
	l, ok := s.loops[identifier]
	s.mu.Unlock()
	if !ok {
		return ports.Snapshot{}, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot, true
}

// ConsumeAlert reports whether new notifications appeared since the last
// call, clearing the flag. This is the once-per-batch alert signal surfaced
// to polling clients.
func (s *ReconcilerService) ConsumeAlert(identifier string) bool {
	s.mu.Lock()
	l, ok := s.loops[identifier]
	s.mu.Unlock()
	if !ok {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	pending := l.alertPending
	l.alertPending = false
	return pending
}

// runTick executes one reconciliation pass: fetch, derive, reconcile,
// publish. Overlapping invocations are skipped rather than queued.
func (s *ReconcilerService) runTick(l *loop) {
	if !l.tickMu.TryLock() {
		return
	}
	defer l.tickMu.Unlock()

	if l.ctx.Err() != nil {
		return
	}

	s.metrics.TicksTotal.Inc()
	now := time.Now()

	tasks, err := s.store.FetchTasks(l.ctx, l.identifier)
	if err != nil {
		if l.ctx.Err() != nil {
			return
		}
		s.metrics.FetchFailuresTotal.Inc()
		s.logger.Warnw("Task fetch failed, keeping previous state", "identifier", l.identifier, "error", err)

		l.mu.Lock()
		l.snapshot.LastError = "failed to load tasks, will retry"
		l.mu.Unlock()
		return
	}

	derived := engine.DeriveAll(tasks, now)

	l.mu.Lock()
	if l.ctx.Err() != nil {
		l.mu.Unlock()
		return
	}

	result := engine.Reconcile(derived, now, l.live)
	s.countExpired(l.live, result.Surviving)

	l.live = result.Live
	l.snapshot = buildSnapshot(derived, result.Live, now)
	if len(result.New) > 0 {
		l.alertPending = true
	}
	l.mu.Unlock()

	for _, n := range result.New {
		s.metrics.NotificationsEmitted.WithLabelValues(string(n.Key.Window)).Inc()
	}

	// One alert signal for the whole batch, never one per notification.
	if len(result.New) > 0 {
		s.metrics.AlertsTotal.Inc()
		s.sink.Alert(l.identifier, result.New)
	}
}

func (s *ReconcilerService) countExpired(prev, surviving []entities.Notification) {
	kept := make(map[entities.NotificationKey]struct{}, len(surviving))
	for _, n := range surviving {
		kept[n.Key] = struct{}{}
	}
	for _, n := range prev {
		if _, ok := kept[n.Key]; !ok {
			s.metrics.NotificationsExpired.WithLabelValues(string(n.Key.Window)).Inc()
		}
	}
}

func buildSnapshot(tasks []entities.Task, live []entities.Notification, now time.Time) ports.Snapshot {
	snapshot := ports.Snapshot{
		PersonalTasks: []entities.Task{},
		CompanyTasks:  []entities.Task{},
		Notifications: live,
		UpdatedAt:     now,
	}
	for _, task := range tasks {
		if task.Category == entities.CategoryCompany {
			snapshot.CompanyTasks = append(snapshot.CompanyTasks, task)
		} else {
			snapshot.PersonalTasks = append(snapshot.PersonalTasks, task)
		}
	}
	return snapshot
}

// intervalSpec renders the tick interval as a cron spec.
func intervalSpec(interval time.Duration) string {
	seconds := int(interval.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("@every %ds", seconds)
}
