package bookings

// Status represents the booking lifecycle status
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether the booking can move no further.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransitionTo encodes the booking state graph:
// PENDING -> {CONFIRMED, CANCELLED}, CONFIRMED -> {COMPLETED, CANCELLED}.
// CANCELLED and COMPLETED have no outgoing edges.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusCompleted || target == StatusCancelled
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
