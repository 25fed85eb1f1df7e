package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrAddressNotFound   = errors.New("address book entry not found")
	ErrCartEmpty         = errors.New("shopping cart is empty")
	ErrAddressOutOfRange = errors.New("delivery address out of range")
)

// StatusConflictError reports a transition attempted against the wrong
// current status.
type StatusConflictError struct {
	Expected Status
	Actual   Status
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("order status conflict: expected %s, actual %s", e.Expected, e.Actual)
}

// UpstreamError wraps a failure of an external collaborator (payment gateway,
// geocoding). Surfaced as a business failure, never retried here.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
