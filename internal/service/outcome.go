package service

import "time"

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeFailure
)

// FailureReason is internal only. Callers on the wire see a single failure
// family regardless of reason.
type FailureReason string

const (
	ReasonInvalidCredentials FailureReason = "invalid_credentials"
	ReasonHWIDMismatch       FailureReason = "hwid_mismatch"
	ReasonInvalidInput       FailureReason = "invalid_input"
	ReasonThrottled          FailureReason = "throttled"
)

type Outcome struct {
	Kind       OutcomeKind
	Reason     FailureReason
	RetryAfter time.Duration
}

func Success() Outcome {
	return Outcome{Kind: OutcomeSuccess}
}

func Failure(reason FailureReason) Outcome {
	return Outcome{Kind: OutcomeFailure, Reason: reason}
}

func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

func (o Outcome) String() string {
	if o.OK() {
		return "success"
	}
	return "failure:" + string(o.Reason)
}
