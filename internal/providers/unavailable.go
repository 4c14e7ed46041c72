package providers

import (
	"context"

	"github.com/Ayash-Bera/miniplex/internal/domain"
	"github.com/Ayash-Bera/miniplex/internal/models"
)

// Unavailable stands in for a provider that could not be constructed, so
// its configuration error is reported per request instead of at startup.
type Unavailable struct {
	name string
	err  error
}

func NewUnavailable(name string, err error) *Unavailable {
	return &Unavailable{name: name, err: err}
}

func (u *Unavailable) Name() string { return u.name }

func (u *Unavailable) Search(_ context.Context, query string) ([]models.SearchResult, error) {
	return nil, &domain.ProviderError{Provider: u.name, Query: query, Err: u.err}
}
