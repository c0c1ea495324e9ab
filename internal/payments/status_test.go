package payments

import "testing"

func TestStatusCanTransitionTo(t *testing.T) {
	all := []Status{StatusPending, StatusPendingReview, StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded}

	allowed := map[Status][]Status{
		StatusPending:       {StatusPendingReview, StatusCompleted, StatusFailed, StatusCancelled},
		StatusPendingReview: {StatusCompleted, StatusFailed, StatusCancelled},
		StatusCompleted:     {StatusRefunded},
		StatusFailed:        {},
		StatusCancelled:     {},
		StatusRefunded:      {},
	}

	for from, targets := range allowed {
		want := map[Status]bool{}
		for _, to := range targets {
			want[to] = true
		}
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != want[to] {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want[to])
			}
		}
	}
}

// No edge may re-enter PENDING or PENDING_REVIEW from any other state.
func TestNoTransitionReentersEarlyStates(t *testing.T) {
	for _, from := range []Status{StatusPendingReview, StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded} {
		if from.CanTransitionTo(StatusPending) {
			t.Errorf("%s must not transition back to PENDING", from)
		}
	}
	for _, from := range []Status{StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded} {
		if from.CanTransitionTo(StatusPendingReview) {
			t.Errorf("%s must not transition back to PENDING_REVIEW", from)
		}
	}
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	all := []Status{StatusPending, StatusPendingReview, StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded}
	for _, from := range []Status{StatusFailed, StatusCancelled, StatusRefunded} {
		if !from.IsTerminal() {
			t.Errorf("%s should be terminal", from)
		}
		for _, to := range all {
			if from.CanTransitionTo(to) {
				t.Errorf("terminal %s has outgoing edge to %s", from, to)
			}
		}
	}
}
