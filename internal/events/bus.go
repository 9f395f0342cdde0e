// Package events provides the in-process event bus used to decouple the
// pipeline from observers such as the metrics collector.
package events

import (
	"github.com/kelindar/event"
)

// Bus wraps a kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(FramePublishedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the concrete type, so each event type
	// needs its own call to the generic Publish.
	switch e := ev.(type) {
	case CameraStartedEvent:
		event.Publish(b.dispatcher, e)
	case CameraStoppedEvent:
		event.Publish(b.dispatcher, e)
	case CameraFailedEvent:
		event.Publish(b.dispatcher, e)
	case DecoderErrorEvent:
		event.Publish(b.dispatcher, e)
	case FramePublishedEvent:
		event.Publish(b.dispatcher, e)
	case FramePublishErrorEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function. The handler's
// parameter type determines which events it receives.
// Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e FramePublishedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(CameraStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(CameraStoppedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(CameraFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DecoderErrorEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FramePublishedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(FramePublishErrorEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
