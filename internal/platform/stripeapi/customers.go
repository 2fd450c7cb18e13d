package stripeapi

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
)

type customerGetter interface {
	Get(id string, params *stripe.CustomerParams) (*stripe.Customer, error)
}

// Customers looks up customer records through the Stripe API using a
// per-instance key rather than the package-level stripe.Key.
type Customers struct {
	api customerGetter
}

func NewCustomers(secretKey string) *Customers {
	return &Customers{
		api: customer.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

// Email returns the customer's address, or "" for deleted customers and
// customers without one.
func (c *Customers) Email(ctx context.Context, customerID string) (string, error) {
	if customerID == "" {
		return "", nil
	}

	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := c.api.Get(customerID, params)
	if err != nil {
		return "", fmt.Errorf("get customer %s: %w", customerID, err)
	}
	if cust == nil || cust.Deleted {
		return "", nil
	}
	return cust.Email, nil
}
