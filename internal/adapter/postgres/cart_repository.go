package postgres

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/takeaway/internal/domain"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"
)

type cartRepository struct {
	db DB
}

func NewCartRepository(db DB) interfaces.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	query := `
		SELECT id, user_id, name, image, dish_id, setmeal_id, number, amount, create_time
		FROM shopping_cart
		WHERE user_id = $1
		ORDER BY create_time ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shopping cart: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Image,
			&item.DishID, &item.MealID, &item.Number, &item.Amount, &item.CreateTime); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *cartRepository) InsertBatch(ctx context.Context, items []domain.CartItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range items {
		query := `
			INSERT INTO shopping_cart (user_id, name, image, dish_id, setmeal_id, number, amount, create_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`
		err = tx.QueryRow(ctx, query,
			items[i].UserID, items[i].Name, items[i].Image, items[i].DishID,
			items[i].MealID, items[i].Number, items[i].Amount, items[i].CreateTime,
		).Scan(&items[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert cart item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *cartRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM shopping_cart WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear shopping cart: %w", err)
	}
	return nil
}
