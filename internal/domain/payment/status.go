package payment

// AttemptStatus is the processor-agnostic status of a payment attempt.
type AttemptStatus string

const (
	AttemptPending               AttemptStatus = "pending"
	AttemptAuthorizing           AttemptStatus = "authorizing"
	AttemptAuthenticationPending AttemptStatus = "authentication_pending"
	AttemptConfirmationAwaited   AttemptStatus = "confirmation_awaited"
	AttemptAuthorized            AttemptStatus = "authorized"
	AttemptAuthorizationFailed   AttemptStatus = "authorization_failed"
	AttemptCharged               AttemptStatus = "charged"
	AttemptVoided                AttemptStatus = "voided"
	AttemptFailure               AttemptStatus = "failure"
)

// AllAttemptStatuses enumerates the closed set.
func AllAttemptStatuses() []AttemptStatus {
	return []AttemptStatus{
		AttemptPending, AttemptAuthorizing, AttemptAuthenticationPending, AttemptConfirmationAwaited,
		AttemptAuthorized, AttemptAuthorizationFailed, AttemptCharged, AttemptVoided, AttemptFailure,
	}
}

// Valid reports whether s belongs to the closed set.
func (s AttemptStatus) Valid() bool {
	for _, v := range AllAttemptStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s AttemptStatus) IsTerminal() bool {
	switch s {
	case AttemptCharged, AttemptVoided, AttemptFailure, AttemptAuthorizationFailed:
		return true
	}
	return false
}

// band orders statuses along the attempt lifecycle:
// Pending -> {Authorizing, AuthenticationPending} -> {Authorized, Failure} -> {Charged, Voided}.
func (s AttemptStatus) band() int {
	switch s {
	case AttemptPending:
		return 0
	case AttemptAuthorizing, AttemptAuthenticationPending, AttemptConfirmationAwaited:
		return 1
	case AttemptAuthorized, AttemptFailure, AttemptAuthorizationFailed:
		return 2
	case AttemptCharged, AttemptVoided:
		return 3
	}
	return -1
}

// CanTransition reports whether an attempt in status s may move to next.
// Moving within the authorizing band is allowed (a confirmation can turn into
// an authentication challenge). Refund progress is not tracked here: a
// refunded payment stays Charged.
func (s AttemptStatus) CanTransition(next AttemptStatus) bool {
	if s == next {
		return true
	}
	from, to := s.band(), next.band()
	if from < 0 || to < 0 {
		return false
	}
	switch s {
	case AttemptFailure, AttemptAuthorizationFailed, AttemptCharged, AttemptVoided:
		return false
	case AttemptAuthorized:
		return next == AttemptCharged || next == AttemptVoided || next == AttemptFailure
	}
	if from == 1 && to == 3 {
		// bank transfers settle straight from confirmation
		return next == AttemptCharged
	}
	return to >= from
}

// RefundStatus is the processor-agnostic status of a refund.
type RefundStatus string

const (
	RefundPending RefundStatus = "pending"
	RefundSuccess RefundStatus = "success"
	RefundFailure RefundStatus = "failure"
)

// AllRefundStatuses enumerates the closed set.
func AllRefundStatuses() []RefundStatus {
	return []RefundStatus{RefundPending, RefundSuccess, RefundFailure}
}

// Valid reports whether s belongs to the closed set.
func (s RefundStatus) Valid() bool {
	switch s {
	case RefundPending, RefundSuccess, RefundFailure:
		return true
	}
	return false
}
