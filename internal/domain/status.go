package domain

import "fmt"

// Status is the order lifecycle status code.
type Status int

const (
	StatusPendingPayment     Status = 1
	StatusToBeConfirmed      Status = 2
	StatusConfirmed          Status = 3
	StatusDeliveryInProgress Status = 4
	StatusCompleted          Status = 5
	StatusCancelled          Status = 6
)

func (s Status) String() string {
	switch s {
	case StatusPendingPayment:
		return "pending_payment"
	case StatusToBeConfirmed:
		return "to_be_confirmed"
	case StatusConfirmed:
		return "confirmed"
	case StatusDeliveryInProgress:
		return "delivery_in_progress"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks the transition against the lifecycle graph. Cancelled
// is reachable from every non-terminal status; everything else moves forward
// one step at a time.
func (s Status) CanTransitionTo(next Status) bool {
	validTransitions := map[Status][]Status{
		StatusPendingPayment:     {StatusToBeConfirmed, StatusCancelled},
		StatusToBeConfirmed:      {StatusConfirmed, StatusCancelled},
		StatusConfirmed:          {StatusDeliveryInProgress, StatusCancelled},
		StatusDeliveryInProgress: {StatusCompleted, StatusCancelled},
		StatusCompleted:          {},
		StatusCancelled:          {},
	}

	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PayStatus is the payment status code.
type PayStatus int

const (
	PayStatusUnpaid   PayStatus = 0
	PayStatusPaid     PayStatus = 1
	PayStatusRefunded PayStatus = 2
)
