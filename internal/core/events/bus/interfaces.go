package bus

import "time"

// EventBus is a synchronous, in-process pub/sub bus keyed by event type.
//
// Handlers of one event type run in subscription order on the publisher's
// goroutine. A handler may publish again; the bus performs no cycle detection,
// so re-entrant publishers must terminate on their own.
type EventBus interface {
	// Publish delivers the event to every active subscriber of event.Type().
	// Handler errors are joined and returned.
	Publish(event Event) error
	// PublishBatch publishes events in order and aggregates errors across them.
	PublishBatch(events ...Event) error

	// Subscribe registers a handler and returns its Subscription.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is ignored.
	Unsubscribe(sub Subscription) error
	// UnsubscribeID cancels a subscription by event type and id. It reports
	// whether a subscription was removed.
	UnsubscribeID(eventType, id string) bool

	// HasSubscribers reports whether at least one handler listens to eventType.
	HasSubscribers(eventType string) bool
	// Len returns the number of active subscriptions across all event types.
	Len() int
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked once per delivered event.
	EventHandler func(event Event) error
)

// Subscription is a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}
