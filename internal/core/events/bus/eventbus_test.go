package bus

import (
	"errors"
	"testing"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got any
	_, err := b.Subscribe("test.event", func(e Event) error {
		got = e.Data()
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("test.event", "tester", 123)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got != 123 {
		t.Fatalf("handler not called, got %v", got)
	}
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		_, _ = b.Subscribe("ev", func(Event) error {
			order = append(order, i)
			return nil
		})
	}
	_ = b.Publish(NewEvent("ev", "src", nil))
	for i, v := range order {
		if v != i {
			t.Fatalf("unexpected delivery order %v", order)
		}
	}
	if len(order) != 5 {
		t.Fatalf("expected 5 deliveries, got %d", len(order))
	}
}

func TestPublishJoinsHandlerErrors(t *testing.T) {
	b := New()
	errA := errors.New("a")
	errB := errors.New("b")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return nil })
	_, _ = b.Subscribe("x", func(Event) error { return errB })

	err := b.Publish(NewEvent("x", "src", nil))
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected joined error, got %v", err)
	}
}

func TestUnsubscribeByID(t *testing.T) {
	b := New()
	calls := 0
	sub, _ := b.Subscribe("ev", func(Event) error { calls++; return nil })

	if !b.UnsubscribeID("ev", sub.ID()) {
		t.Fatal("expected subscription to be removed")
	}
	if b.UnsubscribeID("ev", sub.ID()) {
		t.Fatal("second removal must report false")
	}
	_ = b.Publish(NewEvent("ev", "src", nil))
	if calls != 0 {
		t.Fatalf("cancelled handler called %d times", calls)
	}
	if b.HasSubscribers("ev") || b.Len() != 0 {
		t.Fatal("bus should be empty")
	}
}

func TestHandlerMayCancelLaterHandler(t *testing.T) {
	b := New()
	var second Subscription
	secondCalls := 0
	_, _ = b.Subscribe("ev", func(Event) error { return second.Cancel() })
	second, _ = b.Subscribe("ev", func(Event) error { secondCalls++; return nil })

	_ = b.Publish(NewEvent("ev", "src", nil))
	if secondCalls != 0 {
		t.Fatal("handler cancelled mid-delivery must not run")
	}
	if second.IsActive() {
		t.Fatal("subscription should be inactive")
	}
}

func TestReentrantPublish(t *testing.T) {
	b := New()
	depth := 0
	_, _ = b.Subscribe("ping", func(e Event) error {
		depth++
		if n := e.Data().(int); n > 0 {
			return b.Publish(NewEvent("ping", "src", n-1))
		}
		return nil
	})
	if err := b.Publish(NewEvent("ping", "src", 3)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if depth != 4 {
		t.Fatalf("expected 4 nested deliveries, got %d", depth)
	}
}

func TestPublishBatch(t *testing.T) {
	b := New()
	count := 0
	_, _ = b.Subscribe("a", func(Event) error { count++; return nil })
	_, _ = b.Subscribe("b", func(Event) error { return errors.New("b failed") })

	err := b.PublishBatch(NewEvent("a", "s", nil), NewEvent("b", "s", nil), NewEvent("a", "s", nil))
	if err == nil {
		t.Fatal("expected error from batch")
	}
	if count != 2 {
		t.Fatalf("expected 2 deliveries, got %d", count)
	}
}
