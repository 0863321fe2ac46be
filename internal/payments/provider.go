package payments

import (
	"fmt"

	"github.com/google/uuid"
)

// RemotePayment is what the gateway hands back when a payment is opened.
type RemotePayment struct {
	ExternalID  string
	RedirectURL string
}

// Provider abstracts the payment gateway. Wire formats and signatures live
// in the concrete integration; this service only needs an opaque id to
// reconcile webhooks against.
type Provider interface {
	CreateRemotePayment(amount float64, description string) (RemotePayment, error)
}

// SandboxProvider issues local transaction ids without calling out. Used in
// dev and tests, and as the fallback when no gateway is configured.
type SandboxProvider struct {
	BaseURL string
}

func (p *SandboxProvider) CreateRemotePayment(amount float64, description string) (RemotePayment, error) {
	id := "sbx-" + uuid.NewString()
	return RemotePayment{
		ExternalID:  id,
		RedirectURL: fmt.Sprintf("%s/sandbox/pay/%s", p.BaseURL, id),
	}, nil
}
