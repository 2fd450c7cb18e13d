package repositories

import (
	"context"
	"database/sql"
	"time"

	"subrelay/internal/platform/models"
)

// ProfileRepository writes the subscription columns of the profiles table.
// Placeholders are numbered in order of appearance so the same statements run
// on both pgx and sqlite3.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// StartTrial links a profile (by internal id) to its Stripe customer and
// subscription and marks it trialing. It returns the number of rows matched.
func (r *ProfileRepository) StartTrial(ctx context.Context, t models.TrialStart) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET stripe_customer_id = $1, stripe_subscription_id = $2, subscription_status = $3, trial_started_at = $4, updated_at = $5
		WHERE id = $6
	`, nullString(t.StripeCustomerID), nullString(t.StripeSubscriptionID), models.StatusTrialing, t.StartedAt, time.Now().Unix(), t.UserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetStatusByCustomer sets subscription_status for the profile owning
// customerID. An empty plan leaves subscription_plan untouched.
func (r *ProfileRepository) SetStatusByCustomer(ctx context.Context, customerID, status, plan string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	now := time.Now().Unix()
	if plan != "" {
		res, err = r.db.ExecContext(ctx, `
			UPDATE profiles SET subscription_status = $1, subscription_plan = $2, updated_at = $3
			WHERE stripe_customer_id = $4
		`, status, plan, now, customerID)
	} else {
		res, err = r.db.ExecContext(ctx, `
			UPDATE profiles SET subscription_status = $1, updated_at = $2
			WHERE stripe_customer_id = $3
		`, status, now, customerID)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RecoverPastDue moves a past_due profile back to active. Profiles in any
// other status are left alone.
func (r *ProfileRepository) RecoverPastDue(ctx context.Context, customerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET subscription_status = $1, updated_at = $2
		WHERE stripe_customer_id = $3 AND subscription_status = $4
	`, models.StatusActive, time.Now().Unix(), customerID, models.StatusPastDue)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FirstNameByCustomer returns "" when no profile matches.
func (r *ProfileRepository) FirstNameByCustomer(ctx context.Context, customerID string) (string, error) {
	var firstName sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT first_name FROM profiles WHERE stripe_customer_id = $1`, customerID).Scan(&firstName)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return firstName.String, nil
}

// GetByID reads back a whole profile for assertions over a real database; the
// relay itself only reads first names. A missing row is nil, nil.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	var firstName, email, customerID, subID, status, plan sql.NullString
	var trialStartedAt sql.NullInt64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, first_name, email, stripe_customer_id, stripe_subscription_id, subscription_status, subscription_plan, trial_started_at, updated_at
		FROM profiles WHERE id = $1
	`, id).Scan(&p.ID, &firstName, &email, &customerID, &subID, &status, &plan, &trialStartedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	p.FirstName = firstName.String
	p.Email = email.String
	p.StripeCustomerID = customerID.String
	p.StripeSubscriptionID = subID.String
	p.SubscriptionStatus = status.String
	if plan.Valid {
		p.SubscriptionPlan = &plan.String
	}
	if trialStartedAt.Valid {
		p.TrialStartedAt = new(int64)
		*p.TrialStartedAt = trialStartedAt.Int64
	}
	return &p, nil
}

// nullString stores absent Stripe ids as NULL rather than "".
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
