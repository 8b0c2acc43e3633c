package storage

import (
	"context"
	"errors"
	"fmt"

	"sitewatch/internal/model"
)

// ErrUnavailable wraps every failure to reach or read a backing store.
var ErrUnavailable = errors.New("store unavailable")

var ErrNoRow = errors.New("no row at position")

type Registry interface {
	Sites(ctx context.Context) ([]model.SiteRecord, error)
}

// HistoryTable is the status log. Positions are zero-based indexes in
// insertion order.
type HistoryTable interface {
	Rows(ctx context.Context) ([]model.StatusRecord, error)
	Append(ctx context.Context, rec model.StatusRecord) error
	Update(ctx context.Context, pos int, rec model.StatusRecord) error
	// FindByURL returns the position of the last row with the given URL.
	FindByURL(ctx context.Context, url string) (int, bool, error)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
