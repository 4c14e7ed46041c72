package llm

import (
	"context"

	"github.com/Ayash-Bera/miniplex/internal/models"
)

// Unavailable stands in for a generator whose configuration was rejected.
// Every call reports that configuration error.
type Unavailable struct {
	err error
}

func NewUnavailable(err error) *Unavailable {
	return &Unavailable{err: err}
}

func (u *Unavailable) Generate(context.Context, []models.SearchResult, []models.Message, string, []string) (string, error) {
	return "", u.err
}

func (u *Unavailable) Err() error { return u.err }
