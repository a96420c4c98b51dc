package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	domainSub "github.com/tiffinly/tiffinly/internal/domain/subscription"
	ierr "github.com/tiffinly/tiffinly/internal/errors"
	"github.com/tiffinly/tiffinly/internal/logger"
	dbpg "github.com/tiffinly/tiffinly/internal/postgres"
	"github.com/tiffinly/tiffinly/internal/types"
)

type subscriptionGroupRepository struct {
	client *dbpg.Client
	log    *logger.Logger
}

// NewSubscriptionGroupRepository creates a pgx-backed group repository.
func NewSubscriptionGroupRepository(client *dbpg.Client, log *logger.Logger) domainSub.GroupRepository {
	return &subscriptionGroupRepository{client: client, log: log}
}

const groupColumns = `id, customer_id, vendor_id, billing_period, renewal_date, coupon_id,
	metadata, status, created_at, updated_at, created_by, updated_by`

func scanGroup(row pgx.Row) (*domainSub.SubscriptionGroup, error) {
	var g domainSub.SubscriptionGroup
	err := row.Scan(
		&g.ID, &g.CustomerID, &g.VendorID, &g.BillingPeriod, &g.RenewalDate,
		&g.CouponID, &g.Metadata, &g.Status, &g.CreatedAt, &g.UpdatedAt,
		&g.CreatedBy, &g.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	g.RenewalDate = types.DateOnly(g.RenewalDate)
	return &g, nil
}

func (r *subscriptionGroupRepository) Create(ctx context.Context, group *domainSub.SubscriptionGroup) error {
	_, err := r.client.Querier(ctx).Exec(ctx, `
		INSERT INTO subscription_groups (`+groupColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		group.ID, group.CustomerID, group.VendorID, group.BillingPeriod,
		group.RenewalDate, group.CouponID, group.Metadata, group.Status,
		group.CreatedAt, group.UpdatedAt, group.CreatedBy, group.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription group").
			WithReportableDetails(map[string]interface{}{"id": group.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionGroupRepository) Get(ctx context.Context, id string) (*domainSub.SubscriptionGroup, error) {
	row := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT `+groupColumns+`
		FROM subscription_groups
		WHERE id = $1 AND status = $2`,
		id, types.StatusPublished,
	)
	g, err := scanGroup(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ierr.NewError("subscription group not found").
				WithHint("Subscription group not found").
				WithReportableDetails(map[string]interface{}{"id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription group").
			Mark(ierr.ErrDatabase)
	}
	return g, nil
}

func (r *subscriptionGroupRepository) Update(ctx context.Context, group *domainSub.SubscriptionGroup) error {
	group.UpdatedAt = time.Now().UTC()
	group.UpdatedBy = types.GetUserID(ctx)
	tag, err := r.client.Querier(ctx).Exec(ctx, `
		UPDATE subscription_groups
		SET billing_period = $2, renewal_date = $3, coupon_id = $4,
		    metadata = $5, status = $6, updated_at = $7, updated_by = $8
		WHERE id = $1`,
		group.ID, group.BillingPeriod, group.RenewalDate, group.CouponID,
		group.Metadata, group.Status, group.UpdatedAt, group.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription group").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("subscription group not found").
			WithHint("Subscription group not found").
			WithReportableDetails(map[string]interface{}{"id": group.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionGroupRepository) ListDueForRenewal(ctx context.Context, runDate time.Time, afterID string, limit int) ([]*domainSub.SubscriptionGroup, error) {
	rows, err := r.client.Querier(ctx).Query(ctx, `
		SELECT `+groupColumns+`
		FROM subscription_groups
		WHERE renewal_date = $1 AND status = $2 AND id > $3
		ORDER BY id
		LIMIT $4`,
		types.DateOnly(runDate), types.StatusPublished, afterID, limit,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list groups due for renewal").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var groups []*domainSub.SubscriptionGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan subscription group").
				Mark(ierr.ErrDatabase)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

type subscriptionRepository struct {
	client *dbpg.Client
	log    *logger.Logger
}

// NewSubscriptionRepository creates a pgx-backed subscription repository.
func NewSubscriptionRepository(client *dbpg.Client, log *logger.Logger) domainSub.Repository {
	return &subscriptionRepository{client: client, log: log}
}

const subColumns = `id, group_id, customer_id, vendor_id, slot, weekdays, subscription_status,
	skip_limit, skips_used, paused_at, max_pause_days, cancelled_at,
	status, created_at, updated_at, created_by, updated_by`

func scanSubscription(row pgx.Row) (*domainSub.Subscription, error) {
	var s domainSub.Subscription
	var weekdays []int16
	err := row.Scan(
		&s.ID, &s.GroupID, &s.CustomerID, &s.VendorID, &s.Slot, &weekdays,
		&s.SubStatus, &s.SkipLimit, &s.SkipsUsed, &s.PausedAt,
		&s.MaxPauseDays, &s.CancelledAt, &s.Status, &s.CreatedAt,
		&s.UpdatedAt, &s.CreatedBy, &s.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	s.Weekdays = make(types.Weekdays, 0, len(weekdays))
	for _, d := range weekdays {
		s.Weekdays = append(s.Weekdays, time.Weekday(d))
	}
	return &s, nil
}

func weekdaysToInt16(w types.Weekdays) []int16 {
	out := make([]int16, 0, len(w))
	for _, d := range w {
		out = append(out, int16(d))
	}
	return out
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *domainSub.Subscription) error {
	_, err := r.client.Querier(ctx).Exec(ctx, `
		INSERT INTO subscriptions (`+subColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		sub.ID, sub.GroupID, sub.CustomerID, sub.VendorID, sub.Slot,
		weekdaysToInt16(sub.Weekdays), sub.SubStatus, sub.SkipLimit,
		sub.SkipsUsed, sub.PausedAt, sub.MaxPauseDays, sub.CancelledAt,
		sub.Status, sub.CreatedAt, sub.UpdatedAt, sub.CreatedBy, sub.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			WithReportableDetails(map[string]interface{}{"id": sub.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*domainSub.Subscription, error) {
	row := r.client.Querier(ctx).QueryRow(ctx, `
		SELECT `+subColumns+`
		FROM subscriptions
		WHERE id = $1 AND status = $2`,
		id, types.StatusPublished,
	)
	s, err := scanSubscription(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ierr.NewError("subscription not found").
				WithHint("Subscription not found").
				WithReportableDetails(map[string]interface{}{"id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return s, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *domainSub.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()
	sub.UpdatedBy = types.GetUserID(ctx)
	tag, err := r.client.Querier(ctx).Exec(ctx, `
		UPDATE subscriptions
		SET slot = $2, weekdays = $3, subscription_status = $4,
		    skip_limit = $5, skips_used = $6, paused_at = $7,
		    max_pause_days = $8, cancelled_at = $9, status = $10,
		    updated_at = $11, updated_by = $12
		WHERE id = $1`,
		sub.ID, sub.Slot, weekdaysToInt16(sub.Weekdays), sub.SubStatus,
		sub.SkipLimit, sub.SkipsUsed, sub.PausedAt, sub.MaxPauseDays,
		sub.CancelledAt, sub.Status, sub.UpdatedAt, sub.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]interface{}{"id": sub.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) ListByGroup(ctx context.Context, groupID string) ([]*domainSub.Subscription, error) {
	rows, err := r.client.Querier(ctx).Query(ctx, `
		SELECT `+subColumns+`
		FROM subscriptions
		WHERE group_id = $1 AND status = $2
		ORDER BY id`,
		groupID, types.StatusPublished,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions by group").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

func (r *subscriptionRepository) ListExpiredPaused(ctx context.Context, asOf time.Time, defaultMaxPauseDays int, limit int) ([]*domainSub.Subscription, error) {
	// The per-subscription limit wins when set; otherwise the
	// configured default applies.
	rows, err := r.client.Querier(ctx).Query(ctx, `
		SELECT `+subColumns+`
		FROM subscriptions
		WHERE subscription_status = 'paused'
		  AND status = $1
		  AND paused_at IS NOT NULL
		  AND paused_at + make_interval(days =>
		        CASE WHEN max_pause_days > 0 THEN max_pause_days ELSE $2 END) < $3
		ORDER BY id
		LIMIT $4`,
		types.StatusPublished, defaultMaxPauseDays, asOf, limit,
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list expired paused subscriptions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

func collectSubscriptions(rows pgx.Rows) ([]*domainSub.Subscription, error) {
	var subs []*domainSub.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan subscription").
				Mark(ierr.ErrDatabase)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
