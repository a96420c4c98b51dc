package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	domainOrder "github.com/tiffinly/tiffinly/internal/domain/order"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
	dbpg "github.com/tiffinly/tiffinly/internal/postgres"
	"github.com/tiffinly/tiffinly/internal/types"
)

type orderRepository struct {
	client *dbpg.Client
	log    *logger.Logger
}

// NewOrderRepository creates a pgx-backed order repository.
func NewOrderRepository(client *dbpg.Client, log *logger.Logger) domainOrder.Repository {
	return &orderRepository{client: client, log: log}
}

const orderColumns = `id, subscription_id, group_id, invoice_id, customer_id, vendor_id,
	service_date, slot, order_status,
	status, created_at, updated_at, created_by, updated_by`

func scanOrder(row pgx.Row) (*domainOrder.Order, error) {
	var o domainOrder.Order
	err := row.Scan(
		&o.ID, &o.SubscriptionID, &o.GroupID, &o.InvoiceID, &o.CustomerID,
		&o.VendorID, &o.ServiceDate, &o.Slot, &o.OrderStatus,
		&o.Status, &o.CreatedAt, &o.UpdatedAt, &o.CreatedBy, &o.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	o.ServiceDate = types.DateOnly(o.ServiceDate)
	return &o, nil
}

func (r *orderRepository) CreateIgnoreDuplicate(ctx context.Context, o *domainOrder.Order) (bool, error) {
	tag, err := r.client.Querier(ctx).Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT ON CONSTRAINT uq_orders_sub_date_slot DO NOTHING`,
		o.ID, o.SubscriptionID, o.GroupID, o.InvoiceID, o.CustomerID,
		o.VendorID, o.ServiceDate, o.Slot, o.OrderStatus,
		o.Status, o.CreatedAt, o.UpdatedAt, o.CreatedBy, o.UpdatedBy,
	)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to create order").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": o.SubscriptionID,
				"service_date":    o.ServiceDate,
				"slot":            o.Slot,
			}).
			Mark(ierr.ErrDatabase)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (*domainOrder.Order, error) {
	row := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1 AND status = $2`,
		id, types.StatusPublished,
	)
	o, err := scanOrder(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ierr.NewError("order not found").
				WithHint("Order not found").
				WithReportableDetails(map[string]interface{}{"id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get order").
			Mark(ierr.ErrDatabase)
	}
	return o, nil
}

func (r *orderRepository) Update(ctx context.Context, o *domainOrder.Order) error {
	o.UpdatedAt = time.Now().UTC()
	o.UpdatedBy = types.GetUserID(ctx)
	tag, err := r.client.Querier(ctx).Exec(ctx, `
		UPDATE orders
		SET order_status = $2, status = $3, updated_at = $4, updated_by = $5
		WHERE id = $1`,
		o.ID, o.OrderStatus, o.Status, o.UpdatedAt, o.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update order").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("order not found").
			WithHint("Order not found").
			WithReportableDetails(map[string]interface{}{"id": o.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *orderRepository) GetScheduled(ctx context.Context, subscriptionID string, serviceDate time.Time, slot types.MealSlot) (*domainOrder.Order, error) {
	row := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE subscription_id = $1 AND service_date = $2 AND slot = $3
		  AND order_status = 'scheduled' AND status = $4`,
		subscriptionID, types.DateOnly(serviceDate), slot, types.StatusPublished,
	)
	o, err := scanOrder(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ierr.NewError("scheduled order not found").
				WithHint("No scheduled order exists for this date and slot").
				WithReportableDetails(map[string]interface{}{
					"subscription_id": subscriptionID,
					"service_date":    serviceDate,
					"slot":            slot,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get scheduled order").
			Mark(ierr.ErrDatabase)
	}
	return o, nil
}

func (r *orderRepository) CountByInvoice(ctx context.Context, invoiceID string) (int, error) {
	var count int
	err := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT count(*) FROM orders WHERE invoice_id = $1 AND status = $2`,
		invoiceID, types.StatusPublished,
	).Scan(&count)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count orders by invoice").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *orderRepository) ListScheduledByVendorDate(ctx context.Context, vendorID string, serviceDate time.Time, slot types.MealSlot) ([]*domainOrder.Order, error) {
	rows, err := r.client.Querier(ctx).Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE vendor_id = $1 AND service_date = $2
		  AND ($3 = '' OR slot = $3)
		  AND order_status = 'scheduled' AND status = $4
		ORDER BY id`,
		vendorID, types.DateOnly(serviceDate), slot, types.StatusPublished,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list scheduled orders by vendor date").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var orders []*domainOrder.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan order").
				Mark(ierr.ErrDatabase)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *orderRepository) CountRemainingScheduled(ctx context.Context, subscriptionID string, after time.Time) (int, error) {
	var count int
	err := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT count(*)
		FROM orders
		WHERE subscription_id = $1 AND service_date > $2
		  AND order_status = 'scheduled' AND status = $3`,
		subscriptionID, types.DateOnly(after), types.StatusPublished,
	).Scan(&count)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count remaining scheduled orders").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *orderRepository) CancelScheduledAfter(ctx context.Context, subscriptionID string, after time.Time) (int, error) {
	tag, err := r.client.Querier(ctx).Exec(ctx, `
		UPDATE orders
		SET order_status = 'cancelled', updated_at = $3, updated_by = $4
		WHERE subscription_id = $1 AND service_date > $2
		  AND order_status = 'scheduled' AND status = $5`,
		subscriptionID, types.DateOnly(after), time.Now().UTC(),
		types.GetUserID(ctx), types.StatusPublished,
	)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to cancel remaining scheduled orders").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return int(tag.RowsAffected()), nil
}
