package domain

// Ticket is a transferable ticket record bound to an event.
type Ticket struct {
	ID            int64
	EventID       int64
	Owner         string
	PreviousOwner string
}
