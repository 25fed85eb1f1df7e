package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/YelzhanWeb/takeaway/internal/domain"
	"github.com/YelzhanWeb/takeaway/internal/interfaces"

	"github.com/jackc/pgx/v5"
)

type addressRepository struct {
	db DB
}

func NewAddressRepository(db DB) interfaces.AddressRepository {
	return &addressRepository{db: db}
}

func (r *addressRepository) GetByID(ctx context.Context, id int64) (*domain.AddressBook, error) {
	query := `
		SELECT id, user_id, consignee, phone, province_name, city_name, district_name, detail
		FROM address_book
		WHERE id = $1
	`
	var addr domain.AddressBook
	err := r.db.QueryRow(ctx, query, id).Scan(
		&addr.ID, &addr.UserID, &addr.Consignee, &addr.Phone,
		&addr.ProvinceName, &addr.CityName, &addr.DistrictName, &addr.Detail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to query address book: %w", err)
	}
	return &addr, nil
}
