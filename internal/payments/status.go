package payments

// Status represents the payment lifecycle status
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusCompleted     Status = "COMPLETED"
	StatusFailed        Status = "FAILED"
	StatusCancelled     Status = "CANCELLED"
	StatusRefunded      Status = "REFUNDED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPendingReview, StatusCompleted,
		StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// IsLive reports whether the payment still occupies the booking's single
// active-payment slot.
func (s Status) IsLive() bool {
	return s == StatusPending || s == StatusPendingReview
}

// IsTerminal reports whether no further transition exists.
func (s Status) IsTerminal() bool {
	return s == StatusFailed || s == StatusCancelled || s == StatusRefunded
}

// CanTransitionTo encodes the reconciliation state graph:
//
//	PENDING        -> {PENDING_REVIEW, COMPLETED, FAILED, CANCELLED}
//	PENDING_REVIEW -> {COMPLETED, FAILED, CANCELLED}
//	COMPLETED      -> {REFUNDED}
//
// FAILED, CANCELLED and REFUNDED have no outgoing edges, and no edge re-enters
// PENDING or PENDING_REVIEW, so a payment's history only moves forward.
// PENDING -> COMPLETED covers operator confirmation without an evidence step
// (cash settled side-channel).
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusPendingReview || target == StatusCompleted ||
			target == StatusFailed || target == StatusCancelled
	case StatusPendingReview:
		return target == StatusCompleted || target == StatusFailed || target == StatusCancelled
	case StatusCompleted:
		return target == StatusRefunded
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
