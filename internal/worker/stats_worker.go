package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Pesokrava/product_reviews/internal/delivery/events"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

const (
	// DefaultDebounceWindow collapses bursts of events for one product into a single refresh
	DefaultDebounceWindow = time.Second

	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
	attemptTimeout = 5 * time.Second
)

// Updater recomputes the stats of one product
type Updater interface {
	CalculateAndUpdate(ctx context.Context, productID string) error
}

// StatsWorker turns review events into debounced per-product stats refreshes
type StatsWorker struct {
	updater        Updater
	logger         *logger.Logger
	debounceWindow time.Duration

	mu             sync.Mutex
	pendingUpdates map[string]*pendingUpdate
	shutdownCh     chan struct{}
	wg             sync.WaitGroup
	ctx            context.Context
	cancel         context.CancelFunc
}

type pendingUpdate struct {
	timestamp time.Time
	timer     *time.Timer
}

// NewStatsWorker creates a new stats worker. A non-positive window uses DefaultDebounceWindow.
func NewStatsWorker(updater Updater, debounceWindow time.Duration, logger *logger.Logger) *StatsWorker {
	if debounceWindow <= 0 {
		debounceWindow = DefaultDebounceWindow
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &StatsWorker{
		updater:        updater,
		logger:         logger,
		debounceWindow: debounceWindow,
		pendingUpdates: make(map[string]*pendingUpdate),
		shutdownCh:     make(chan struct{}),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// HandleEvent decodes a review event and schedules a refresh when it can move the stats
func (w *StatsWorker) HandleEvent(data []byte) error {
	event, err := events.Decode(data)
	if err != nil {
		w.logger.Error("Failed to decode review event", err)
		return fmt.Errorf("failed to decode event: %w", err)
	}

	if !event.EventType.AffectsStats() {
		w.logger.Debugf("Ignoring %s event for product %s", event.EventType, event.ProductID)
		return nil
	}

	w.logger.WithFields(map[string]any{
		"type":       event.EventType,
		"product_id": event.ProductID,
		"timestamp":  event.Timestamp,
	}).Info("Received review event")

	w.scheduleUpdate(event.ProductID, event.Timestamp)

	return nil
}

// scheduleUpdate (re)arms the debounce timer of a product
func (w *StatsWorker) scheduleUpdate(productID string, timestamp time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.shutdownCh:
		w.logger.Info("Worker shutting down, ignoring new event")
		return
	default:
	}

	existing, found := w.pendingUpdates[productID]
	if found && timestamp.Before(existing.timestamp) {
		w.logger.WithFields(map[string]any{
			"product_id":  productID,
			"existing_ts": existing.timestamp,
			"event_ts":    timestamp,
		}).Debug("Ignoring stale event")
		return
	}

	// A stopped timer hands its WaitGroup slot to the new one
	if !found || !existing.timer.Stop() {
		w.wg.Add(1)
	}

	update := &pendingUpdate{timestamp: timestamp}
	update.timer = time.AfterFunc(w.debounceWindow, func() {
		w.processUpdate(productID, update)
	})
	w.pendingUpdates[productID] = update
}

// processUpdate runs the refresh with exponential backoff between attempts
func (w *StatsWorker) processUpdate(productID string, update *pendingUpdate) {
	defer w.wg.Done()

	w.mu.Lock()
	if w.pendingUpdates[productID] == update {
		delete(w.pendingUpdates, productID)
	}
	w.mu.Unlock()

	log := w.logger.With("product_id", productID)
	log.Info("Processing stats refresh")

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			log.WithFields(map[string]any{
				"attempt":    attempt + 1,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying stats refresh")

			select {
			case <-time.After(backoff):
			case <-w.ctx.Done():
				log.Info("Worker context cancelled, aborting retry")
				return
			}

			backoff *= 2
		}

		ctx, cancel := context.WithTimeout(w.ctx, attemptTimeout)
		err := w.updater.CalculateAndUpdate(ctx, productID)
		cancel()

		if err == nil {
			return
		}

		lastErr = err
		log.With("attempt", attempt+1).Error("Failed to refresh stats", err)
	}

	log.With("max_retries", maxRetries).Error("Stats refresh failed after all retries", lastErr)
}

// Shutdown stops accepting events, drops pending refreshes and waits for in-flight ones
func (w *StatsWorker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down stats worker...")

	close(w.shutdownCh)
	w.cancel()

	w.mu.Lock()
	cancelled := 0
	for _, update := range w.pendingUpdates {
		if update.timer.Stop() {
			w.wg.Done()
			cancelled++
		}
	}
	w.pendingUpdates = make(map[string]*pendingUpdate)
	w.mu.Unlock()

	w.logger.With("cancelled_updates", cancelled).Info("Cancelled pending updates")

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("All in-flight updates completed")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}

// PendingCount returns the number of products waiting for their debounce window
func (w *StatsWorker) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pendingUpdates)
}
