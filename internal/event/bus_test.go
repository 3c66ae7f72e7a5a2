package event

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/lbsim/internal/logging"
	"github.com/Iron-Ham/lbsim/internal/request"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	id := bus.Subscribe(TypeWorkerAdded, func(Event) { called = true })

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", bus.SubscriptionCount())
	}
	if called {
		t.Error("handler should not be called until an event is published")
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus(nil)
	seen := make(map[string]bool)
	for range 10000 {
		id := bus.Subscribe("x", func(Event) {})
		if seen[id] {
			t.Fatalf("duplicate subscription ID %q", id)
		}
		seen[id] = true
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var got Event
	bus.Subscribe(TypeRequestBlocked, func(e Event) { got = e })

	r := request.New("10.0.0.1", "10.0.0.2", 5, request.JobProcessing)
	bus.Publish(NewRequestBlockedEvent(12, r))

	blocked, ok := got.(RequestBlockedEvent)
	if !ok {
		t.Fatalf("handler received %T", got)
	}
	if blocked.Cycle() != 12 || blocked.Request != r {
		t.Errorf("event = %+v", blocked)
	}
	if bus.Published() != 1 {
		t.Errorf("Published() = %d, want 1", bus.Published())
	}
}

func TestBus_DispatchOrder(t *testing.T) {
	bus := NewBus(nil)

	var order []string
	bus.SubscribeAll(func(Event) { order = append(order, "all-1") })
	bus.Subscribe(TypeStatus, func(Event) { order = append(order, "status-1") })
	bus.Subscribe(TypeStatus, func(Event) { order = append(order, "status-2") })
	bus.Subscribe(TypeMessage, func(Event) { order = append(order, "message") })

	bus.Publish(NewStatusEvent(0, 10, 2))

	want := "status-1,status-2,all-1"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	id := bus.Subscribe(TypeStatus, func(Event) { calls++ })
	other := bus.Subscribe(TypeStatus, func(Event) { calls += 10 })

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe should find the subscription")
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe should report false")
	}

	bus.Publish(NewStatusEvent(0, 0, 1))
	if calls != 10 {
		t.Errorf("calls = %d, want only the remaining handler", calls)
	}

	bus.Unsubscribe(other)
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d", bus.SubscriptionCount())
	}
}

func TestBus_PanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(logging.NewWriterLogger(&buf, logging.LevelError))

	reached := false
	bus.Subscribe(TypeMessage, func(Event) { panic("boom") })
	bus.Subscribe(TypeMessage, func(Event) { reached = true })

	bus.Publish(NewMessageEvent(3, "hello"))

	if !reached {
		t.Error("handler after a panicking handler should still run")
	}
	if !strings.Contains(buf.String(), "event handler panicked") {
		t.Errorf("panic was not logged: %s", buf.String())
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus(nil)
	bus.Subscribe(TypeStatus, func(Event) {})
	bus.SubscribeAll(func(Event) {})

	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after Clear", bus.SubscriptionCount())
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				bus.Publish(NewStatusEvent(i*100+j, 0, 1))
			}
		}()
	}
	wg.Wait()

	if count != 800 {
		t.Errorf("count = %d, want 800", count)
	}
}
