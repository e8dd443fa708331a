// Package paylink generates mock payment links for extracted bills. The
// links point at a placeholder domain; no payment provider is involved.
package paylink

import (
	"fmt"

	"github.com/google/uuid"
)

// Link is a mock payment link echoing the bill it was generated for.
type Link struct {
	URL       string  `json:"url"`
	Reference string  `json:"reference"`
	Provider  string  `json:"provider"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// New generates a link with a short unique reference.
func New(provider string, amount float64, currency string) Link {
	if provider == "" {
		provider = "UNKNOWN"
	}
	if currency == "" {
		currency = "USD"
	}
	ref := uuid.NewString()[:8]
	return Link{
		URL:       fmt.Sprintf("https://pay.example/tx/%s", ref),
		Reference: ref,
		Provider:  provider,
		Amount:    amount,
		Currency:  currency,
	}
}
