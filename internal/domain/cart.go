package domain

import "time"

// CartItem is one row of a user's shopping cart.
type CartItem struct {
	ID         int64
	UserID     int64
	Name       string
	Image      string
	DishID     *int64
	MealID     *int64
	Number     int
	Amount     float64
	CreateTime time.Time
}

func (c *CartItem) StampCreate(now time.Time, userID int64) {
	c.UserID = userID
	c.CreateTime = now
}

// AddressBook is a saved delivery address. Read-only here: orders copy it at
// submission, later edits never touch placed orders.
type AddressBook struct {
	ID           int64
	UserID       int64
	Consignee    string
	Phone        string
	ProvinceName string
	CityName     string
	DistrictName string
	Detail       string
}

// FullAddress joins the administrative parts with the street detail.
func (a *AddressBook) FullAddress() string {
	return a.ProvinceName + a.CityName + a.DistrictName + a.Detail
}
