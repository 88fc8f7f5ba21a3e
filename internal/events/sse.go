package events

import "github.com/kelindar/event"

// SubscribeToChannel bridges kelindar/event callback-based subscriptions to channels.
// Used by the SSE endpoint and the terminal UI, which both consume a select loop.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
			// Drop event if channel is full (non-blocking)
		}
	})
}

// SubscribeAll bridges every console event type into ch and returns a single
// function that removes all of the subscriptions.
func SubscribeAll(bus *Bus, ch chan<- any) func() {
	unsubs := []func(){
		SubscribeToChannel[CamerasUpdatedEvent](bus, ch),
		SubscribeToChannel[HealthUpdatedEvent](bus, ch),
		SubscribeToChannel[SelectionChangedEvent](bus, ch),
		SubscribeToChannel[SlotChangedEvent](bus, ch),
		SubscribeToChannel[PlayerStatusEvent](bus, ch),
		SubscribeToChannel[PresetsUpdatedEvent](bus, ch),
		SubscribeToChannel[NoticeEvent](bus, ch),
		SubscribeToChannel[LogEntryEvent](bus, ch),
		SubscribeToChannel[BackendLogsEvent](bus, ch),
		SubscribeToChannel[PTZSentEvent](bus, ch),
		SubscribeToChannel[SpeedChangedEvent](bus, ch),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
