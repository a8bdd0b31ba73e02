package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/segyhp/rental-engine/internal/domain"
)

type listingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	query := `
		SELECT id, seller_id, title, type, status
		FROM listings
		WHERE id = $1
	`

	var listing domain.Listing
	if err := r.db.GetContext(ctx, &listing, query, id); err != nil {
		return nil, err
	}

	return &listing, nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, listingID int64, status string) error {
	return updateListingStatus(ctx, r.db, listingID, status)
}

func updateListingStatus(ctx context.Context, exec sqlx.ExecerContext, listingID int64, status string) error {
	query := `
		UPDATE listings
		SET status = $2
		WHERE id = $1
	`

	result, err := exec.ExecContext(ctx, query, listingID, status)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
