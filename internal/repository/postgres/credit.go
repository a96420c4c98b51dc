package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	domainCredit "github.com/tiffinly/tiffinly/internal/domain/credit"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
	dbpg "github.com/tiffinly/tiffinly/internal/postgres"
	"github.com/tiffinly/tiffinly/internal/types"
)

type creditRepository struct {
	client *dbpg.Client
	log    *logger.Logger
}

// NewCreditRepository creates a pgx-backed credit repository.
func NewCreditRepository(client *dbpg.Client, log *logger.Logger) domainCredit.Repository {
	return &creditRepository{client: client, log: log}
}

const creditColumns = `id, customer_id, subscription_id, type, source, meal_count,
	amount::text, expires_at, credit_status, consumed_at, invoice_id,
	status, created_at, updated_at, created_by, updated_by`

func scanCredit(row pgx.Row) (*domainCredit.Credit, error) {
	var c domainCredit.Credit
	var amount string
	err := row.Scan(
		&c.ID, &c.CustomerID, &c.SubscriptionID, &c.Type, &c.Source,
		&c.MealCount, &amount, &c.ExpiresAt, &c.CreditStatus, &c.ConsumedAt,
		&c.InvoiceID, &c.Status, &c.CreatedAt, &c.UpdatedAt, &c.CreatedBy,
		&c.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if c.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *creditRepository) Create(ctx context.Context, c *domainCredit.Credit) error {
	_, err := r.client.Querier(ctx).Exec(ctx, `
		INSERT INTO credits (
			id, customer_id, subscription_id, type, source, meal_count,
			amount, expires_at, credit_status, consumed_at, invoice_id,
			status, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		c.ID, c.CustomerID, c.SubscriptionID, c.Type, c.Source, c.MealCount,
		c.Amount.String(), c.ExpiresAt, c.CreditStatus, c.ConsumedAt,
		c.InvoiceID, c.Status, c.CreatedAt, c.UpdatedAt, c.CreatedBy, c.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create credit").
			WithReportableDetails(map[string]interface{}{"id": c.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *creditRepository) Get(ctx context.Context, id string) (*domainCredit.Credit, error) {
	row := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT `+creditColumns+`
		FROM credits
		WHERE id = $1 AND status = $2`,
		id, types.StatusPublished,
	)
	c, err := scanCredit(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ierr.NewError("credit not found").
				WithHint("Credit not found").
				WithReportableDetails(map[string]interface{}{"id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get credit").
			Mark(ierr.ErrDatabase)
	}
	return c, nil
}

func (r *creditRepository) ListAvailableBySubscription(ctx context.Context, subscriptionID string, asOf time.Time) ([]*domainCredit.Credit, error) {
	// Oldest expiry first is the consumption order; credits without an
	// expiry sort last.
	rows, err := r.client.Querier(ctx).Query(ctx, `
		SELECT `+creditColumns+`
		FROM credits
		WHERE subscription_id = $1
		  AND credit_status = 'active'
		  AND (expires_at IS NULL OR expires_at >= $2)
		  AND status = $3
		ORDER BY expires_at ASC NULLS LAST, id`,
		subscriptionID, asOf, types.StatusPublished,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list available credits").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var credits []*domainCredit.Credit
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan credit").
				Mark(ierr.ErrDatabase)
		}
		credits = append(credits, c)
	}
	return credits, rows.Err()
}

func (r *creditRepository) MarkConsumed(ctx context.Context, ids []string, invoiceID string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	// Guarding on credit_status makes concurrent consumption visible:
	// a row already consumed by another run does not match, the count
	// comes up short and the enclosing transaction rolls back.
	tag, err := r.client.Querier(ctx).Exec(ctx, `
		UPDATE credits
		SET credit_status = 'consumed', consumed_at = $2, invoice_id = $3,
		    updated_at = $2, updated_by = $4
		WHERE id = ANY($1) AND credit_status = 'active'`,
		ids, at, invoiceID, types.GetUserID(ctx),
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to consume credits").
			Mark(ierr.ErrDatabase)
	}
	if int(tag.RowsAffected()) != len(ids) {
		return ierr.NewError("credit already consumed").
			WithHint("One or more credits were consumed by a concurrent run").
			WithReportableDetails(map[string]interface{}{
				"requested": len(ids),
				"consumed":  tag.RowsAffected(),
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (r *creditRepository) ExpireDue(ctx context.Context, asOf time.Time) (int, error) {
	tag, err := r.client.Querier(ctx).Exec(ctx, `
		UPDATE credits
		SET credit_status = 'expired', updated_at = $1, updated_by = $2
		WHERE credit_status = 'active'
		  AND expires_at IS NOT NULL
		  AND expires_at < $1`,
		asOf, types.GetUserID(ctx),
	)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to expire credits").
			Mark(ierr.ErrDatabase)
	}
	return int(tag.RowsAffected()), nil
}
