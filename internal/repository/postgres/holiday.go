package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	domainHoliday "github.com/tiffinly/tiffinly/internal/domain/holiday"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
	dbpg "github.com/tiffinly/tiffinly/internal/postgres"
	"github.com/tiffinly/tiffinly/internal/types"
)

type holidayRepository struct {
	client *dbpg.Client
	log    *logger.Logger
}

// NewHolidayRepository creates a pgx-backed vendor holiday repository.
func NewHolidayRepository(client *dbpg.Client, log *logger.Logger) domainHoliday.Repository {
	return &holidayRepository{client: client, log: log}
}

const holidayColumns = `id, vendor_id, date, slot, reason,
	status, created_at, updated_at, created_by, updated_by`

func scanHoliday(row pgx.Row) (*domainHoliday.VendorHoliday, error) {
	var h domainHoliday.VendorHoliday
	var reason *string
	err := row.Scan(
		&h.ID, &h.VendorID, &h.Date, &h.Slot, &reason,
		&h.Status, &h.CreatedAt, &h.UpdatedAt, &h.CreatedBy, &h.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if reason != nil {
		h.Reason = *reason
	}
	h.Date = types.DateOnly(h.Date)
	return &h, nil
}

func (r *holidayRepository) Create(ctx context.Context, h *domainHoliday.VendorHoliday) error {
	_, err := r.client.Querier(ctx).Exec(ctx, `
		INSERT INTO vendor_holidays (`+holidayColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		h.ID, h.VendorID, h.Date, h.Slot, h.Reason,
		h.Status, h.CreatedAt, h.UpdatedAt, h.CreatedBy, h.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create vendor holiday").
			WithReportableDetails(map[string]interface{}{"id": h.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *holidayRepository) ListByVendorBetween(ctx context.Context, vendorID string, from, to time.Time) ([]*domainHoliday.VendorHoliday, error) {
	rows, err := r.client.Querier(ctx).Query(ctx, `
		SELECT `+holidayColumns+`
		FROM vendor_holidays
		WHERE vendor_id = $1 AND date BETWEEN $2 AND $3 AND status = $4
		ORDER BY date`,
		vendorID, types.DateOnly(from), types.DateOnly(to), types.StatusPublished,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list vendor holidays").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var holidays []*domainHoliday.VendorHoliday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan vendor holiday").
				Mark(ierr.ErrDatabase)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
