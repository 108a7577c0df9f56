package launcher

// Event names published by the launcher.
const (
	EventRoundStart = "round_start"
	EventRequestEnd = "request_end"
	EventRoundEnd   = "round_end"
)

// Event represents a round lifecycle event: name, round ID, the instance it
// concerns (empty for round-level events) and optional fields.
type Event struct {
	Name     string
	RoundID  string
	Instance string
	Fields   map[string]any
}

// EventPublisher receives events from the launcher. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
