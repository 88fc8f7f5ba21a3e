package events

import (
	"time"

	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Now formats the current time the way events carry it.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Publish publishes an event to all subscribers.
// Usage: bus.Publish(NoticeEvent{...})
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	switch e := ev.(type) {
	case CamerasUpdatedEvent:
		event.Publish(b.dispatcher, e)
	case HealthUpdatedEvent:
		event.Publish(b.dispatcher, e)
	case SelectionChangedEvent:
		event.Publish(b.dispatcher, e)
	case SlotChangedEvent:
		event.Publish(b.dispatcher, e)
	case PlayerStatusEvent:
		event.Publish(b.dispatcher, e)
	case PresetsUpdatedEvent:
		event.Publish(b.dispatcher, e)
	case NoticeEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	case BackendLogsEvent:
		event.Publish(b.dispatcher, e)
	case PTZSentEvent:
		event.Publish(b.dispatcher, e)
	case SpeedChangedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler type determines which events it receives.
// Returns an unsubscribe function; unknown handler types get a no-op.
// Usage: unsub := bus.Subscribe(func(e CamerasUpdatedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(CamerasUpdatedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(HealthUpdatedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SelectionChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SlotChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PlayerStatusEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PresetsUpdatedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(NoticeEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BackendLogsEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(PTZSentEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SpeedChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
