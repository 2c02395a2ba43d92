package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scaena/internal/interfaces"
)

func TestPublishReachesSubscribers(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var wg sync.WaitGroup
	wg.Add(2)

	received := make(chan interfaces.Event, 2)
	handler := func(ctx context.Context, event interfaces.Event) error {
		received <- event
		wg.Done()
		return nil
	}

	if err := svc.Subscribe(interfaces.EventRunStarted, handler); err != nil {
		t.Fatal(err)
	}
	if err := svc.Subscribe(interfaces.EventRunStarted, handler); err != nil {
		t.Fatal(err)
	}

	event := interfaces.Event{
		Type:      interfaces.EventRunStarted,
		RunID:     "run_test",
		Timestamp: time.Now(),
	}
	if err := svc.Publish(context.Background(), event); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers not invoked within timeout")
	}

	for i := 0; i < 2; i++ {
		got := <-received
		if got.RunID != "run_test" {
			t.Errorf("handler received run_id %q, want run_test", got.RunID)
		}
	}
}

func TestPublishTypeIsolation(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	called := make(chan struct{}, 1)
	err := svc.Subscribe(interfaces.EventRunCompleted, func(ctx context.Context, event interfaces.Event) error {
		called <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventRunStarted}); err != nil {
		t.Fatal(err)
	}

	select {
	case <-called:
		t.Fatal("handler invoked for an event type it never subscribed to")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	if err := svc.Subscribe(interfaces.EventRunStarted, nil); err == nil {
		t.Fatal("Subscribe() accepted a nil handler")
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	if err := svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventStageCompleted}); err != nil {
		t.Errorf("Publish() without subscribers: %v", err)
	}
}
