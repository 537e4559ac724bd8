package ecs

import (
	"reflect"

	"github.com/zeusync/deltasync/internal/core/events/bus"
)

// SubscriptionID identifies a handler registered with Subscribe.
type SubscriptionID string

// EntityCreated is broadcast after an entity is registered.
type EntityCreated struct {
	Entity *Entity
}

// EntityDestroyed is broadcast after a deferred deletion is committed.
type EntityDestroyed struct {
	ID EntityID
}

func eventKey[T any]() string {
	t := reflect.TypeFor[T]()
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// Subscribe registers handler for events of type T on w.
func Subscribe[T any](w *World, handler func(T)) SubscriptionID {
	sub, err := w.bus.Subscribe(eventKey[T](), func(e bus.Event) error {
		data, _ := e.Data().(T)
		handler(data)
		return nil
	})
	if err != nil {
		return ""
	}
	return SubscriptionID(sub.ID())
}

// Unsubscribe removes a handler registered with Subscribe[T].
func Unsubscribe[T any](w *World, id SubscriptionID) bool {
	return w.bus.UnsubscribeID(eventKey[T](), string(id))
}

// Broadcast delivers data synchronously to every subscriber of T.
func Broadcast[T any](w *World, data T) {
	key := eventKey[T]()
	if !w.bus.HasSubscribers(key) {
		return
	}
	_ = w.bus.Publish(bus.NewEvent(key, w.name, data))
}
