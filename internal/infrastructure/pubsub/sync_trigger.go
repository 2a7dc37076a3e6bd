package pubsub

import (
	"sync"

	"shopbridge-core/internal/ports"

	"github.com/rs/zerolog"
)

// SyncWorker performs one shop's initial data sync. The actual sync pipeline
// lives outside this core; runners are injected.
type SyncWorker func(shopDomain string)

// SyncDispatcher queues initial-sync requests for newly linked shops and
// runs them on a single background goroutine. Enqueueing never blocks the
// OAuth flow: when the buffer is full the request is dropped and logged,
// since a sync can always be re-triggered by the operator.
type SyncDispatcher struct {
	mu      sync.Mutex
	queue   chan string
	worker  SyncWorker
	logger  zerolog.Logger
	started bool
	done    chan struct{}
}

// NewSyncDispatcher creates a dispatcher with the given queue depth.
func NewSyncDispatcher(worker SyncWorker, depth int, logger zerolog.Logger) *SyncDispatcher {
	if depth <= 0 {
		depth = 16
	}
	return &SyncDispatcher{
		queue:  make(chan string, depth),
		worker: worker,
		logger: logger,
		done:   make(chan struct{}),
	}
}

var _ ports.SyncTrigger = (*SyncDispatcher)(nil)

// Start launches the background worker. Safe to call once.
func (d *SyncDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	go func() {
		defer close(d.done)
		for shop := range d.queue {
			d.logger.Info().Str("shop", shop).Msg("Starting initial data sync")
			d.worker(shop)
		}
	}()
}

// TriggerInitialSync enqueues a sync for the shop without blocking.
func (d *SyncDispatcher) TriggerInitialSync(shopDomain string) {
	select {
	case d.queue <- shopDomain:
	default:
		d.logger.Warn().Str("shop", shopDomain).Msg("Sync queue full, dropping initial sync request")
	}
}

// Stop closes the queue and waits for in-flight syncs to finish.
func (d *SyncDispatcher) Stop() {
	d.mu.Lock()
	started := d.started
	d.mu.Unlock()

	close(d.queue)
	if started {
		<-d.done
	}
}
