package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDispatcherDeliversEvents(t *testing.T) {
	t.Parallel()

	dispatcher := NewDispatcher(8, 2, zerolog.Nop())

	var mu sync.Mutex
	received := make(map[int64]bool)
	done := make(chan struct{})

	dispatcher.Register(EventClassifyRequested, func(ctx context.Context, event Event) error {
		mu.Lock()
		received[event.ItemID] = true
		count := len(received)
		mu.Unlock()
		if count == 3 {
			close(done)
		}
		return nil
	})

	dispatcher.Start(t.Context())
	defer dispatcher.Stop()

	for i := int64(1); i <= 3; i++ {
		if !dispatcher.Enqueue(Event{Name: EventClassifyRequested, WorkspaceID: 1, ItemID: i}) {
			t.Fatalf("enqueue of item %d was dropped", i)
		}
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for events")
	}

	mu.Lock()
	defer mu.Unlock()
	for i := int64(1); i <= 3; i++ {
		if !received[i] {
			t.Fatalf("item %d was never handled", i)
		}
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	// Never started, so nothing drains the queue.
	dispatcher := NewDispatcher(2, 1, zerolog.Nop())
	dispatcher.Register(EventIndexRequested, func(ctx context.Context, event Event) error {
		return nil
	})

	if !dispatcher.Enqueue(Event{Name: EventIndexRequested, ItemID: 1}) {
		t.Fatal("first enqueue should fit")
	}
	if !dispatcher.Enqueue(Event{Name: EventIndexRequested, ItemID: 2}) {
		t.Fatal("second enqueue should fit")
	}
	if dispatcher.Enqueue(Event{Name: EventIndexRequested, ItemID: 3}) {
		t.Fatal("third enqueue should be dropped")
	}
}

func TestDispatcherRejectsAfterStop(t *testing.T) {
	t.Parallel()

	dispatcher := NewDispatcher(4, 1, zerolog.Nop())
	dispatcher.Register(EventIndexRequested, func(ctx context.Context, event Event) error {
		return nil
	})

	dispatcher.Start(t.Context())
	dispatcher.Stop()

	if dispatcher.Enqueue(Event{Name: EventIndexRequested, ItemID: 1}) {
		t.Fatal("enqueue after stop should report a drop")
	}
}
