package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	domainInvoice "github.com/tiffinly/tiffinly/internal/domain/invoice"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
	dbpg "github.com/tiffinly/tiffinly/internal/postgres"
	"github.com/tiffinly/tiffinly/internal/types"
)

type invoiceRepository struct {
	client *dbpg.Client
	log    *logger.Logger
}

// NewInvoiceRepository creates a pgx-backed invoice repository.
func NewInvoiceRepository(client *dbpg.Client, log *logger.Logger) domainInvoice.Repository {
	return &invoiceRepository{client: client, log: log}
}

// NUMERIC columns are selected as text and parsed into decimals.
const invoiceColumns = `id, group_id, customer_id, vendor_id, cycle_start, cycle_end,
	subtotal::text, discount_amount::text, amount::text, currency,
	invoice_status, payment_attempts, credits_applied, razorpay_order_id,
	payment_id, paid_at, orders_generated_at, metadata,
	status, created_at, updated_at, created_by, updated_by`

func scanInvoice(row pgx.Row) (*domainInvoice.Invoice, error) {
	var inv domainInvoice.Invoice
	var subtotal, discount, amount string
	err := row.Scan(
		&inv.ID, &inv.GroupID, &inv.CustomerID, &inv.VendorID,
		&inv.CycleStart, &inv.CycleEnd, &subtotal, &discount, &amount,
		&inv.Currency, &inv.InvStatus, &inv.PaymentAttempts,
		&inv.CreditsApplied, &inv.RazorpayOrderID, &inv.PaymentID,
		&inv.PaidAt, &inv.OrdersGeneratedAt, &inv.Metadata,
		&inv.Status, &inv.CreatedAt, &inv.UpdatedAt, &inv.CreatedBy, &inv.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if inv.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, err
	}
	if inv.DiscountAmount, err = decimal.NewFromString(discount); err != nil {
		return nil, err
	}
	if inv.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	inv.CycleStart = types.DateOnly(inv.CycleStart)
	inv.CycleEnd = types.DateOnly(inv.CycleEnd)
	return &inv, nil
}

func (r *invoiceRepository) Create(ctx context.Context, inv *domainInvoice.Invoice) error {
	_, err := r.client.Querier(ctx).Exec(ctx, `
		INSERT INTO invoices (
			id, group_id, customer_id, vendor_id, cycle_start, cycle_end,
			subtotal, discount_amount, amount, currency, invoice_status,
			payment_attempts, credits_applied, razorpay_order_id, payment_id,
			paid_at, orders_generated_at, metadata, status, created_at,
			updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		inv.ID, inv.GroupID, inv.CustomerID, inv.VendorID, inv.CycleStart,
		inv.CycleEnd, inv.Subtotal.String(), inv.DiscountAmount.String(),
		inv.Amount.String(), inv.Currency, inv.InvStatus,
		inv.PaymentAttempts, inv.CreditsApplied, inv.RazorpayOrderID,
		inv.PaymentID, inv.PaidAt, inv.OrdersGeneratedAt, inv.Metadata,
		inv.Status, inv.CreatedAt, inv.UpdatedAt, inv.CreatedBy, inv.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.NewError("invoice already exists for cycle").
				WithHint("An invoice already exists for this group and cycle start").
				WithReportableDetails(map[string]interface{}{
					"group_id":    inv.GroupID,
					"cycle_start": inv.CycleStart,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			WithReportableDetails(map[string]interface{}{"id": inv.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*domainInvoice.Invoice, error) {
	row := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE id = $1 AND status = $2`,
		id, types.StatusPublished,
	)
	inv, err := scanInvoice(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ierr.NewError("invoice not found").
				WithHint("Invoice not found").
				WithReportableDetails(map[string]interface{}{"id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}
	return inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *domainInvoice.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	inv.UpdatedBy = types.GetUserID(ctx)
	tag, err := r.client.Querier(ctx).Exec(ctx, `
		UPDATE invoices
		SET subtotal = $2, discount_amount = $3, amount = $4,
		    invoice_status = $5, payment_attempts = $6, credits_applied = $7,
		    razorpay_order_id = $8, payment_id = $9, paid_at = $10,
		    orders_generated_at = $11, metadata = $12, status = $13,
		    updated_at = $14, updated_by = $15
		WHERE id = $1`,
		inv.ID, inv.Subtotal.String(), inv.DiscountAmount.String(),
		inv.Amount.String(), inv.InvStatus, inv.PaymentAttempts,
		inv.CreditsApplied, inv.RazorpayOrderID, inv.PaymentID, inv.PaidAt,
		inv.OrdersGeneratedAt, inv.Metadata, inv.Status, inv.UpdatedAt,
		inv.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]interface{}{"id": inv.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *invoiceRepository) GetByGroupAndCycleStart(ctx context.Context, groupID string, cycleStart time.Time) (*domainInvoice.Invoice, error) {
	row := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE group_id = $1 AND cycle_start = $2 AND status = $3`,
		groupID, types.DateOnly(cycleStart), types.StatusPublished,
	)
	inv, err := scanInvoice(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ierr.NewError("invoice not found for cycle").
				WithHint("No invoice exists for this group and cycle start").
				WithReportableDetails(map[string]interface{}{
					"group_id":    groupID,
					"cycle_start": cycleStart,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice by cycle").
			Mark(ierr.ErrDatabase)
	}
	return inv, nil
}

func (r *invoiceRepository) ListPayable(ctx context.Context, maxAttempts int, limit int) ([]*domainInvoice.Invoice, error) {
	rows, err := r.client.Querier(ctx).Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE invoice_status IN ('pending', 'failed')
		  AND payment_attempts < $1
		  AND status = $2
		ORDER BY created_at
		LIMIT $3`,
		maxAttempts, types.StatusPublished, limit,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payable invoices").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *invoiceRepository) ListPaidWithoutOrders(ctx context.Context, limit int) ([]*domainInvoice.Invoice, error) {
	rows, err := r.client.Querier(ctx).Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE invoice_status = 'paid'
		  AND orders_generated_at IS NULL
		  AND status = $1
		ORDER BY paid_at
		LIMIT $2`,
		types.StatusPublished, limit,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list paid invoices without orders").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *invoiceRepository) GetLatestPaidByGroup(ctx context.Context, groupID string) (*domainInvoice.Invoice, error) {
	row := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE group_id = $1 AND invoice_status = 'paid' AND status = $2
		ORDER BY cycle_start DESC
		LIMIT 1`,
		groupID, types.StatusPublished,
	)
	inv, err := scanInvoice(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ierr.NewError("no paid invoice for group").
				WithHint("Group has no paid invoice").
				WithReportableDetails(map[string]interface{}{"group_id": groupID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get latest paid invoice").
			Mark(ierr.ErrDatabase)
	}
	return inv, nil
}

func collectInvoices(rows pgx.Rows) ([]*domainInvoice.Invoice, error) {
	var invoices []*domainInvoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan invoice").
				Mark(ierr.ErrDatabase)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
