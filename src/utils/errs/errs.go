// Package errs defines the typed errors returned by every listing operation.
//
// Errors are matched with errors.Is against the exported sentinels, e.g.
//
//	errors.Is(err, errs.ErrBidTooLow)
//
// A sentinel with a guard set also matches on the guard:
//
//	errors.Is(err, errs.PreconditionFailed(errs.GuardOwner, ""))
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindPreconditionFailed  Kind = "PRECONDITION_FAILED"
	KindInvalidArgument     Kind = "INVALID_ARGUMENT"
	KindBidTooLow           Kind = "BID_TOO_LOW"
	KindAuctionClosed       Kind = "AUCTION_CLOSED"
	KindAlreadyDecided      Kind = "ALREADY_DECIDED"
	KindAlreadyAssigned     Kind = "ALREADY_ASSIGNED"
	KindNoEligibleAgent     Kind = "NO_ELIGIBLE_AGENT"
	KindInvalidCode         Kind = "INVALID_CODE"
	KindCodeAlreadyConsumed Kind = "CODE_ALREADY_CONSUMED"
	KindNotFound            Kind = "NOT_FOUND"

	// Not a domain error
	KindInternal Kind = "INTERNAL"
)

// Names of the guards reported with PreconditionFailed
const (
	GuardStatus         = "status"
	GuardOwner          = "owner"
	GuardSelfBid        = "self_bid"
	GuardLeadingBid     = "leading_bid"
	GuardAgent          = "agent"
	GuardMilestoneOrder = "milestone_order"
	GuardCodeNotIssued  = "code_not_issued"
	GuardRejectReason   = "rejection_reason"
	GuardTerminal       = "terminal"
)

type Error struct {
	Kind    Kind
	Guard   string
	Message string
}

func (self *Error) Error() string {
	out := string(self.Kind)
	if self.Guard != "" {
		out += "(" + self.Guard + ")"
	}
	if self.Message != "" {
		out += ": " + self.Message
	}
	return out
}

func (self *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == self.Kind && (t.Guard == "" || t.Guard == self.Guard)
}

var (
	ErrPreconditionFailed  = &Error{Kind: KindPreconditionFailed}
	ErrInvalidArgument     = &Error{Kind: KindInvalidArgument}
	ErrBidTooLow           = &Error{Kind: KindBidTooLow}
	ErrAuctionClosed       = &Error{Kind: KindAuctionClosed}
	ErrAlreadyDecided      = &Error{Kind: KindAlreadyDecided}
	ErrAlreadyAssigned     = &Error{Kind: KindAlreadyAssigned}
	ErrNoEligibleAgent     = &Error{Kind: KindNoEligibleAgent}
	ErrInvalidCode         = &Error{Kind: KindInvalidCode}
	ErrCodeAlreadyConsumed = &Error{Kind: KindCodeAlreadyConsumed}
	ErrNotFound            = &Error{Kind: KindNotFound}
)

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func PreconditionFailed(guard string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindPreconditionFailed, Guard: guard, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgument(format string, args ...interface{}) *Error {
	return New(KindInvalidArgument, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

// Kind of the first domain error in the chain, KindInternal if there's none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Guard of the first domain error in the chain
func GuardOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Guard
	}
	return ""
}

// Is err a business rule violation, as opposed to an infrastructure failure
func IsDomain(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind != KindInternal
}
