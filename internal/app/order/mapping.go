package order

import (
	"time"

	"github.com/YelzhanWeb/takeaway/internal/domain"
)

// Explicit field-by-field mapping between entity pairs. No property-name
// matching: a renamed column breaks the build here, not the data.

func cartItemToDetail(c domain.CartItem) domain.OrderDetail {
	return domain.OrderDetail{
		Name:   c.Name,
		Image:  c.Image,
		DishID: c.DishID,
		MealID: c.MealID,
		Number: c.Number,
		Amount: c.Amount,
	}
}

func detailToCartItem(d domain.OrderDetail, userID int64, now time.Time) domain.CartItem {
	item := domain.CartItem{
		Name:   d.Name,
		Image:  d.Image,
		DishID: d.DishID,
		MealID: d.MealID,
		Number: d.Number,
		Amount: d.Amount,
	}
	item.StampCreate(now, userID)
	return item
}
