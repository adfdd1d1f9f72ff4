package domain

type EventState string

const (
	EventStateListed            EventState = "listed"
	EventStateBiddingOpen       EventState = "bidding_open"
	EventStateBiddingClosed     EventState = "bidding_closed"
	EventStateSellerEnded       EventState = "seller_ended"
	EventStateOwnerEndedSuccess EventState = "owner_ended_success"
	EventStateOwnerEndedFailure EventState = "owner_ended_failure"
)

var transitions = map[EventState][]EventState{
	EventStateListed:        {EventStateBiddingOpen},
	EventStateBiddingOpen:   {EventStateBiddingClosed},
	EventStateBiddingClosed: {EventStateSellerEnded},
	EventStateSellerEnded:   {EventStateOwnerEndedSuccess, EventStateOwnerEndedFailure},
}

// CanTransition reports whether the table allows moving from one state to another.
func CanTransition(from, to EventState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s EventState) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s EventState) Valid() bool {
	switch s {
	case EventStateListed, EventStateBiddingOpen, EventStateBiddingClosed,
		EventStateSellerEnded, EventStateOwnerEndedSuccess, EventStateOwnerEndedFailure:
		return true
	}
	return false
}
