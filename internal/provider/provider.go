package provider

import (
	"context"

	"stockquotes/internal/quote"
)

// Provider fetches and normalizes a quote for one ticker from a single upstream.
type Provider interface {
	// Name is the URL slug the provider is registered under.
	Name() string
	Fetch(ctx context.Context, ticker string) (*quote.Result, error)
}
