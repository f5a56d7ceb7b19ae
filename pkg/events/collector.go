package events

// EventCollector accumulates domain events inside a unit of work so they can
// be handed to a publisher once the transaction has committed.
type EventCollector struct {
	events []DomainEvent
}

// Record appends events in the order they happened.
func (c *EventCollector) Record(evts ...DomainEvent) {
	c.events = append(c.events, evts...)
}

// Len reports how many events are pending.
func (c *EventCollector) Len() int {
	return len(c.events)
}

// Events returns the collected domain events without clearing them.
func (c *EventCollector) Events() []DomainEvent {
	return c.events
}

// Drain returns the collected events and resets the collector.
func (c *EventCollector) Drain() []DomainEvent {
	collected := c.events
	c.events = nil
	return collected
}
