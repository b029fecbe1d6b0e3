package progress_test

import (
	"sync"
	"testing"

	"imgutil/internal/progress"
)

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := progress.NewBus(nil)
	var order []string
	bus.Subscribe(func(progress.Event) { order = append(order, "first") })
	bus.Subscribe(func(progress.Event) { order = append(order, "second") })

	bus.Publish(progress.Event{Kind: progress.KindStarted})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected delivery order: %v", order)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := progress.NewBus(nil)
	calls := 0
	unsubscribe := bus.Subscribe(func(progress.Event) { calls++ })

	bus.Publish(progress.Event{Kind: progress.KindProgress})
	unsubscribe()
	unsubscribe()
	bus.Publish(progress.Event{Kind: progress.KindProgress})

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if bus.Subscribers() != 0 {
		t.Fatalf("expected no subscribers, got %d", bus.Subscribers())
	}
}

func TestBusRecoversFromPanickingSubscriber(t *testing.T) {
	bus := progress.NewBus(nil)
	var got []progress.Event
	bus.Subscribe(func(progress.Event) { panic("boom") })
	bus.Subscribe(func(evt progress.Event) { got = append(got, evt) })

	bus.Publish(progress.Event{Kind: progress.KindCompleted, Percent: 100})

	if len(got) != 1 || got[0].Percent != 100 {
		t.Fatalf("expected healthy subscriber to receive event, got %v", got)
	}
}

func TestBusStampsSequence(t *testing.T) {
	bus := progress.NewBus(nil)
	var seqs []uint64
	bus.Subscribe(func(evt progress.Event) {
		seqs = append(seqs, evt.Sequence)
		if evt.Timestamp.IsZero() {
			t.Error("expected timestamp to be set")
		}
	})
	for i := 0; i < 3; i++ {
		bus.Publish(progress.Event{Kind: progress.KindProgress})
	}
	if len(seqs) != 3 || seqs[0] != 1 || seqs[2] != 3 {
		t.Fatalf("unexpected sequences: %v", seqs)
	}
}

func TestNilBusIsSafe(t *testing.T) {
	var bus *progress.Bus
	bus.Publish(progress.Event{})
	bus.Subscribe(func(progress.Event) {})()
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := progress.NewBus(nil)
	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(progress.Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(progress.Event{Kind: progress.KindProgress})
		}()
	}
	wg.Wait()

	if count != 20 {
		t.Fatalf("expected 20 deliveries, got %d", count)
	}
}
