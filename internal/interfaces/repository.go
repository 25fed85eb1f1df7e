package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/takeaway/internal/domain"
)

// Интерфейсы Репозиториев (Adapter/Postgres)
type OrderRepository interface {
	// Insert persists the order together with its detail lines in one
	// transaction.
	Insert(ctx context.Context, order *domain.Order, details []domain.OrderDetail) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	// ConditionalUpdate applies upd only if the stored status equals expected.
	// Returns false when the guard did not match; this is the sole
	// concurrency-control primitive for status transitions.
	ConditionalUpdate(ctx context.Context, id int64, expected domain.Status, upd domain.OrderUpdate) (bool, error)
	ListDetails(ctx context.Context, orderID int64) ([]domain.OrderDetail, error)
	PageByUser(ctx context.Context, userID int64, status *domain.Status, page, pageSize int) ([]*domain.Order, int64, error)
	Page(ctx context.Context, q domain.OrderPageQuery) ([]*domain.Order, int64, error)
	CountByStatus(ctx context.Context, status domain.Status) (int64, error)
}

type CartRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error)
	InsertBatch(ctx context.Context, items []domain.CartItem) error
	DeleteByUser(ctx context.Context, userID int64) error
}

type AddressRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.AddressBook, error)
}

// SalesCounter accumulates per-item sales per calendar date (Adapter/Redis).
type SalesCounter interface {
	IncrementDailySales(ctx context.Context, date time.Time, itemName string, qty int) error
}
