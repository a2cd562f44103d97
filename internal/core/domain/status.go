package domain

// Status represents the lifecycle state of a housing application
type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusUnderReview    Status = "under_review"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
)

// transitions is the complete transition table. A status not present as a key
// is terminal.
var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusPaid},
	StatusPaid:           {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview:    {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether moving from s to next is a legal transition
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ReviewEligible reports whether an admin decision (approve/reject) may be
// taken from this status. Applications that were paid but never explicitly
// surfaced for review are still eligible.
func (s Status) ReviewEligible() bool {
	return s == StatusPaid || s == StatusUnderReview
}

// IsTerminal reports whether no further transitions exist from this status
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsValid reports whether s is a known lifecycle status
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusPaid, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ReviewEligibleStatuses returns the statuses from which approve/reject may run
func ReviewEligibleStatuses() []Status {
	return []Status{StatusPaid, StatusUnderReview}
}
