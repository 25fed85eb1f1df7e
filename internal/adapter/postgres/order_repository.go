package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/YelzhanWeb/takeaway/internal/domain"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"

	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, number, user_id, status, pay_status, amount, consignee, phone, address, remark,
	       order_time, checkout_time, cancel_time, delivery_time, estimated_delivery_time,
	       cancel_reason, rejection_reason`

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Insert(ctx context.Context, order *domain.Order, details []domain.OrderDetail) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (number, user_id, status, pay_status, amount, consignee, phone, address,
		                    remark, order_time, estimated_delivery_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		order.Number, order.UserID, order.Status, order.PayStatus, order.Amount,
		order.Consignee, order.Phone, order.Address, order.Remark,
		order.OrderTime, order.EstimatedDeliveryTime,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range details {
		detailQuery := `
			INSERT INTO order_detail (order_id, name, image, dish_id, setmeal_id, number, amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`
		err = tx.QueryRow(ctx, detailQuery,
			order.ID, details[i].Name, details[i].Image, details[i].DishID,
			details[i].MealID, details[i].Number, details[i].Amount,
		).Scan(&details[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert order detail: %w", err)
		}
		details[i].OrderID = order.ID
	}

	return tx.Commit(ctx)
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	return r.getOne(ctx, query, id)
}

func (r *orderRepository) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE number = $1`, orderColumns)
	return r.getOne(ctx, query, number)
}

func (r *orderRepository) getOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var order domain.Order
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&order.ID, &order.Number, &order.UserID, &order.Status, &order.PayStatus,
		&order.Amount, &order.Consignee, &order.Phone, &order.Address, &order.Remark,
		&order.OrderTime, &order.CheckoutTime, &order.CancelTime, &order.DeliveryTime,
		&order.EstimatedDeliveryTime, &order.CancelReason, &order.RejectionReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}
	return &order, nil
}

// ConditionalUpdate is the only write path for status transitions. The WHERE
// clause names the expected prior status, so of two concurrent writers exactly
// one sees RowsAffected = 1.
func (r *orderRepository) ConditionalUpdate(ctx context.Context, id int64, expected domain.Status, upd domain.OrderUpdate) (bool, error) {
	set := []string{"status = $1"}
	args := []any{upd.Status}
	idx := 2

	appendField := func(column string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if upd.PayStatus != nil {
		appendField("pay_status", *upd.PayStatus)
	}
	if upd.CheckoutTime != nil {
		appendField("checkout_time", *upd.CheckoutTime)
	}
	if upd.CancelTime != nil {
		appendField("cancel_time", *upd.CancelTime)
	}
	if upd.DeliveryTime != nil {
		appendField("delivery_time", *upd.DeliveryTime)
	}
	if upd.CancelReason != nil {
		appendField("cancel_reason", *upd.CancelReason)
	}
	if upd.RejectionReason != nil {
		appendField("rejection_reason", *upd.RejectionReason)
	}

	query := fmt.Sprintf(`UPDATE orders SET %s WHERE id = $%d AND status = $%d`,
		strings.Join(set, ", "), idx, idx+1)
	args = append(args, id, expected)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update order: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) ListDetails(ctx context.Context, orderID int64) ([]domain.OrderDetail, error) {
	query := `
		SELECT id, order_id, name, image, dish_id, setmeal_id, number, amount
		FROM order_detail
		WHERE order_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order details: %w", err)
	}
	defer rows.Close()

	var details []domain.OrderDetail
	for rows.Next() {
		var d domain.OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.Name, &d.Image, &d.DishID, &d.MealID, &d.Number, &d.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan order detail: %w", err)
		}
		details = append(details, d)
	}
	return details, nil
}

func (r *orderRepository) PageByUser(ctx context.Context, userID int64, status *domain.Status, page, pageSize int) ([]*domain.Order, int64, error) {
	q := domain.OrderPageQuery{UserID: &userID, Status: status, Page: page, PageSize: pageSize}
	return r.page(ctx, q)
}

func (r *orderRepository) Page(ctx context.Context, q domain.OrderPageQuery) ([]*domain.Order, int64, error) {
	return r.page(ctx, q)
}

func (r *orderRepository) page(ctx context.Context, q domain.OrderPageQuery) ([]*domain.Order, int64, error) {
	where := []string{"1=1"}
	args := []any{}
	idx := 1

	addFilter := func(clause string, value any) {
		where = append(where, fmt.Sprintf(clause, idx))
		args = append(args, value)
		idx++
	}

	if q.Number != "" {
		addFilter("number LIKE $%d", "%"+q.Number+"%")
	}
	if q.Phone != "" {
		addFilter("phone LIKE $%d", "%"+q.Phone+"%")
	}
	if q.Status != nil {
		addFilter("status = $%d", *q.Status)
	}
	if q.UserID != nil {
		addFilter("user_id = $%d", *q.UserID)
	}
	if q.BeginTime != nil {
		addFilter("order_time >= $%d", *q.BeginTime)
	}
	if q.EndTime != nil {
		addFilter("order_time <= $%d", *q.EndTime)
	}

	cond := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM orders WHERE %s`, cond)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY order_time DESC LIMIT $%d OFFSET $%d`,
		orderColumns, cond, idx, idx+1)
	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.Number, &order.UserID, &order.Status, &order.PayStatus,
			&order.Amount, &order.Consignee, &order.Phone, &order.Address, &order.Remark,
			&order.OrderTime, &order.CheckoutTime, &order.CancelTime, &order.DeliveryTime,
			&order.EstimatedDeliveryTime, &order.CancelReason, &order.RejectionReason,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, &order)
	}
	return orders, total, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context, status domain.Status) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders by status: %w", err)
	}
	return count, nil
}
