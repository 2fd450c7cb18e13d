package webhooks

import (
	"errors"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	SignatureHeader = "Stripe-Signature"

	missingSignatureMessage = "Missing stripe-signature header"
)

var (
	ErrMissingSignature = errors.New("missing stripe-signature header")
	ErrInvalidSignature = errors.New("invalid stripe signature")
)

// SignatureError reports why a delivery failed verification. It unwraps to
// ErrInvalidSignature.
type SignatureError struct {
	Err error
}

func (e *SignatureError) Error() string {
	return e.Err.Error()
}

func (e *SignatureError) Unwrap() []error {
	return []error{ErrInvalidSignature, e.Err}
}

// Verifier authenticates raw Stripe deliveries against the endpoint's
// signing secret using the library's default timestamp tolerance.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify must receive the body exactly as it arrived on the wire.
func (v *Verifier) Verify(payload []byte, header string) (stripe.Event, error) {
	if strings.TrimSpace(header) == "" {
		return stripe.Event{}, ErrMissingSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, header, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, &SignatureError{Err: err}
	}
	return event, nil
}

// ResponseMessage is the plain-text body returned for a failed verification.
func ResponseMessage(err error) string {
	if errors.Is(err, ErrMissingSignature) {
		return missingSignatureMessage
	}
	return fmt.Sprintf("Webhook Error: %s", err.Error())
}
