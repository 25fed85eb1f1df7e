package domain

import "time"

// Order represents a placed order. Consignee, phone, address, amount and the
// detail lines are snapshotted at submission time and never re-derived from
// the user's address book or the menu afterwards.
type Order struct {
	ID                    int64
	Number                string
	UserID                int64
	Status                Status
	PayStatus             PayStatus
	Amount                float64
	Consignee             string
	Phone                 string
	Address               string
	Remark                string
	OrderTime             time.Time
	CheckoutTime          *time.Time
	CancelTime            *time.Time
	DeliveryTime          *time.Time
	EstimatedDeliveryTime time.Time
	CancelReason          *string
	RejectionReason       *string
}

// StampCreate fills the submission-time audit fields. Called by the store
// layer right before the insert.
func (o *Order) StampCreate(now time.Time, userID int64) {
	o.UserID = userID
	o.OrderTime = now
}

// OrderDetail is one purchased line of an order, a snapshot of the item as it
// was at submission time.
type OrderDetail struct {
	ID      int64
	OrderID int64
	Name    string
	Image   string
	DishID  *int64
	MealID  *int64
	Number  int
	Amount  float64
}

// OrderUpdate carries the fields a conditional update may set alongside the
// new status. Nil pointers are left untouched.
type OrderUpdate struct {
	Status          Status
	PayStatus       *PayStatus
	CheckoutTime    *time.Time
	CancelTime      *time.Time
	DeliveryTime    *time.Time
	CancelReason    *string
	RejectionReason *string
}

// OrderPageQuery is the admin-side search filter.
type OrderPageQuery struct {
	Number    string
	Phone     string
	Status    *Status
	UserID    *int64
	BeginTime *time.Time
	EndTime   *time.Time
	Page      int
	PageSize  int
}
