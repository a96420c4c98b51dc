package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	domainPrice "github.com/tiffinly/tiffinly/internal/domain/price"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
	dbpg "github.com/tiffinly/tiffinly/internal/postgres"
	"github.com/tiffinly/tiffinly/internal/types"
)

type priceRepository struct {
	client *dbpg.Client
	log    *logger.Logger
}

// NewPriceRepository creates a pgx-backed vendor price repository.
func NewPriceRepository(client *dbpg.Client, log *logger.Logger) domainPrice.Repository {
	return &priceRepository{client: client, log: log}
}

const priceColumns = `id, vendor_id, slot, price_per_meal::text, currency, enabled,
	status, created_at, updated_at, created_by, updated_by`

func scanPrice(row pgx.Row) (*domainPrice.VendorPrice, error) {
	var p domainPrice.VendorPrice
	var amount string
	err := row.Scan(
		&p.ID, &p.VendorID, &p.Slot, &amount, &p.Currency, &p.Enabled,
		&p.Status, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if p.PricePerMeal, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *priceRepository) Create(ctx context.Context, p *domainPrice.VendorPrice) error {
	_, err := r.client.Querier(ctx).Exec(ctx, `
		INSERT INTO vendor_prices (
			id, vendor_id, slot, price_per_meal, currency, enabled,
			status, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.VendorID, p.Slot, p.PricePerMeal.String(), p.Currency,
		p.Enabled, p.Status, p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create vendor price").
			WithReportableDetails(map[string]interface{}{"id": p.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *priceRepository) Update(ctx context.Context, p *domainPrice.VendorPrice) error {
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = types.GetUserID(ctx)
	tag, err := r.client.Querier(ctx).Exec(ctx, `
		UPDATE vendor_prices
		SET price_per_meal = $2, currency = $3, enabled = $4, status = $5,
		    updated_at = $6, updated_by = $7
		WHERE id = $1`,
		p.ID, p.PricePerMeal.String(), p.Currency, p.Enabled, p.Status,
		p.UpdatedAt, p.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update vendor price").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("vendor price not found").
			WithHint("Vendor price not found").
			WithReportableDetails(map[string]interface{}{"id": p.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *priceRepository) GetEnabled(ctx context.Context, vendorID string, slot types.MealSlot) (*domainPrice.VendorPrice, error) {
	row := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT `+priceColumns+`
		FROM vendor_prices
		WHERE vendor_id = $1 AND slot = $2 AND enabled AND status = $3`,
		vendorID, slot, types.StatusPublished,
	)
	p, err := scanPrice(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ierr.NewError("no enabled price for slot").
				WithHint("Vendor has no enabled price for this slot").
				WithReportableDetails(map[string]interface{}{
					"vendor_id": vendorID,
					"slot":      slot,
				}).
				Mark(ierr.ErrPriceNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get vendor price").
			Mark(ierr.ErrDatabase)
	}
	return p, nil
}

func (r *priceRepository) ListByVendor(ctx context.Context, vendorID string) ([]*domainPrice.VendorPrice, error) {
	rows, err := r.client.Querier(ctx).Query(ctx, `
		SELECT `+priceColumns+`
		FROM vendor_prices
		WHERE vendor_id = $1 AND status = $2
		ORDER BY slot`,
		vendorID, types.StatusPublished,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list vendor prices").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var prices []*domainPrice.VendorPrice
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan vendor price").
				Mark(ierr.ErrDatabase)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}
