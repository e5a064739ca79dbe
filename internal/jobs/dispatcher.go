package jobs

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Event names mirror the enqueue calls made by the item API.
const (
	EventClassifyRequested = "item.classify.requested"
	EventIndexRequested    = "item.index.requested"
)

// Event is one unit of background work for a stored item.
type Event struct {
	Name        string
	WorkspaceID int64
	ItemID      int64
	Content     string
}

// Handler processes one event. Errors are logged by the dispatcher; they do
// not stop the workers.
type Handler func(ctx context.Context, event Event) error

// Dispatcher fans events out to a fixed pool of workers over a buffered
// channel. Enqueue never blocks the caller: when the queue is full the event
// is dropped and logged.
type Dispatcher struct {
	queue    chan Event
	handlers map[string]Handler
	logger   zerolog.Logger
	workers  int

	mu      sync.Mutex
	started bool
	stopped bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

func NewDispatcher(queueSize, workers int, logger zerolog.Logger) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		queue:    make(chan Event, queueSize),
		handlers: make(map[string]Handler),
		logger:   logger,
		workers:  workers,
	}
}

// Register binds a handler to an event name. Must be called before Start.
func (d *Dispatcher) Register(name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		d.logger.Error().Str("event", name).Msg("handler registered after dispatcher start; ignored")
		return
	}
	d.handlers[name] = handler
}

// Start launches the worker goroutines. Workers run until Stop is called or
// the parent context is canceled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	workerCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(workerCtx, i)
	}

	d.logger.Info().
		Int("workers", d.workers).
		Int("queue_size", cap(d.queue)).
		Msg("job dispatcher started")
}

// Enqueue offers an event to the queue without blocking. Returns false when
// the event was dropped because the queue is full or the dispatcher stopped.
func (d *Dispatcher) Enqueue(event Event) bool {
	d.mu.Lock()
	stopped := d.stopped
	d.mu.Unlock()
	if stopped {
		d.logger.Warn().
			Str("event", event.Name).
			Int64("item_id", event.ItemID).
			Msg("event dropped: dispatcher stopped")
		return false
	}

	select {
	case d.queue <- event:
		return true
	default:
		d.logger.Warn().
			Str("event", event.Name).
			Int64("item_id", event.ItemID).
			Msg("event dropped: queue full")
		return false
	}
}

// Stop cancels the workers, drains nothing, and waits for in-flight handlers
// to return. Safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped || !d.started {
		d.stopped = true
		d.mu.Unlock()
		return
	}
	d.stopped = true
	cancel := d.cancel
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
	d.logger.Info().Msg("job dispatcher stopped")
}

func (d *Dispatcher) runWorker(ctx context.Context, workerID int) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.queue:
			d.dispatch(ctx, workerID, event)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, workerID int, event Event) {
	handler, ok := d.handlers[event.Name]
	if !ok {
		d.logger.Error().
			Str("event", event.Name).
			Int("worker", workerID).
			Msg("no handler registered for event")
		return
	}

	if err := handler(ctx, event); err != nil {
		d.logger.Error().
			Err(err).
			Str("event", event.Name).
			Int64("workspace_id", event.WorkspaceID).
			Int64("item_id", event.ItemID).
			Int("worker", workerID).
			Msg("event handler failed")
		return
	}

	d.logger.Debug().
		Str("event", event.Name).
		Int64("item_id", event.ItemID).
		Int("worker", workerID).
		Msg("event handled")
}
