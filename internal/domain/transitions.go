package domain

// bookingTransitions is the authoritative edge list for the booking lifecycle.
// Every status mutation in the service layer checks this table first; nothing
// else in the codebase is allowed to decide legality.
var bookingTransitions = map[string][]string{
	BookingPendingPayment:      {BookingPendingHostApproval, BookingPaymentFailed},
	BookingPendingHostApproval: {BookingConfirmed, BookingRejected, BookingCancelledByHost, BookingCancelledByUser},
	BookingConfirmed:           {BookingCompleted, BookingCancelledByHost, BookingCancelledByUser},
	BookingCompleted:           {BookingPaidOut, BookingCancelledByHost, BookingCancelledByUser},
}

// CanTransition reports whether from -> to is an edge in the lifecycle graph.
func CanTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a booking in this status can never move again.
func IsTerminal(status string) bool {
	return len(bookingTransitions[status]) == 0
}
