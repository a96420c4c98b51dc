package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	domainCoupon "github.com/tiffinly/tiffinly/internal/domain/coupon"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
	dbpg "github.com/tiffinly/tiffinly/internal/postgres"
	"github.com/tiffinly/tiffinly/internal/types"
)

type couponRepository struct {
	client *dbpg.Client
	log    *logger.Logger
}

// NewCouponRepository creates a pgx-backed coupon repository.
func NewCouponRepository(client *dbpg.Client, log *logger.Logger) domainCoupon.Repository {
	return &couponRepository{client: client, log: log}
}

const couponColumns = `id, code, type, value::text, min_amount::text, max_discount::text, active,
	status, created_at, updated_at, created_by, updated_by`

func scanCoupon(row pgx.Row) (*domainCoupon.Coupon, error) {
	var c domainCoupon.Coupon
	var value, minAmount, maxDiscount string
	err := row.Scan(
		&c.ID, &c.Code, &c.Type, &value, &minAmount, &maxDiscount,
		&c.Active, &c.Status, &c.CreatedAt, &c.UpdatedAt, &c.CreatedBy,
		&c.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if c.Value, err = decimal.NewFromString(value); err != nil {
		return nil, err
	}
	if c.MinAmount, err = decimal.NewFromString(minAmount); err != nil {
		return nil, err
	}
	if c.MaxDiscount, err = decimal.NewFromString(maxDiscount); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *couponRepository) Create(ctx context.Context, c *domainCoupon.Coupon) error {
	_, err := r.client.Querier(ctx).Exec(ctx, `
		INSERT INTO coupons (
			id, code, type, value, min_amount, max_discount, active,
			status, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.Code, c.Type, c.Value.String(), c.MinAmount.String(),
		c.MaxDiscount.String(), c.Active, c.Status, c.CreatedAt,
		c.UpdatedAt, c.CreatedBy, c.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.NewError("coupon code already exists").
				WithHint("A coupon with this code already exists").
				WithReportableDetails(map[string]interface{}{"code": c.Code}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create coupon").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *couponRepository) Get(ctx context.Context, id string) (*domainCoupon.Coupon, error) {
	row := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT `+couponColumns+`
		FROM coupons
		WHERE id = $1 AND status = $2`,
		id, types.StatusPublished,
	)
	c, err := scanCoupon(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ierr.NewError("coupon not found").
				WithHint("Coupon not found").
				WithReportableDetails(map[string]interface{}{"id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get coupon").
			Mark(ierr.ErrDatabase)
	}
	return c, nil
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*domainCoupon.Coupon, error) {
	row := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT `+couponColumns+`
		FROM coupons
		WHERE code = $1 AND status = $2`,
		code, types.StatusPublished,
	)
	c, err := scanCoupon(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ierr.NewError("coupon not found").
				WithHint("Coupon not found").
				WithReportableDetails(map[string]interface{}{"code": code}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get coupon by code").
			Mark(ierr.ErrDatabase)
	}
	return c, nil
}
