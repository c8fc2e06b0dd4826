package orchestrator

// EventType labels a notification emitted while a job runs.
type EventType string

const (
	EventStage     EventType = "stage"
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventCancelled EventType = "cancelled"
	EventWarning   EventType = "warning"
)

// Event is one notification delivered on the orchestrator's event channel.
// Terminal events carry the final state plus error detail when applicable.
type Event struct {
	JobID      int64
	Type       EventType
	Stage      string
	Message    string
	Percent    float64
	ETASeconds float64
}

// emit delivers an event without ever blocking the worker. When the consumer
// lags, progress events are dropped; terminal events overwrite the oldest
// queued event instead so completion is never lost.
func (o *Orchestrator) emit(event Event) {
	select {
	case o.events <- event:
		return
	default:
	}
	switch event.Type {
	case EventProgress, EventStage:
		return
	default:
	}
	select {
	case <-o.events:
	default:
	}
	select {
	case o.events <- event:
	default:
	}
}

// Events returns the notification channel. The channel is buffered and the
// orchestrator never blocks on it; consumers drain at their own pace.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}
