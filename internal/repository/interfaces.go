package repository

import (
	"context"
	"errors"

	"refab-api/internal/model"
)

// ErrQuoteNotFound indicates the order id (or tracking token) does not
// resolve to a persisted quote.
var ErrQuoteNotFound = errors.New("quote not found")

// QuoteRepository defines quote persistence. A quote row is only ever
// written after server-side price verification succeeds.
type QuoteRepository interface {
	// Insert persists a verified quote.
	Insert(ctx context.Context, q *model.Quote) error

	// GetByOrderID retrieves a quote by its human-readable order id.
	GetByOrderID(ctx context.Context, orderID string) (*model.Quote, error)

	// GetByTracking retrieves a quote by order id, gated on the opaque
	// tracking token handed out at submission time.
	GetByTracking(ctx context.Context, orderID, trackingToken string) (*model.Quote, error)

	// ListRecent returns the most recently created quotes.
	ListRecent(ctx context.Context, limit int) ([]*model.Quote, error)

	// UpdateStatus transitions a quote's status. Transitions past "created"
	// are driven by the order-management side.
	UpdateStatus(ctx context.Context, orderID, status string) error

	// Stats returns statistics about the quote database.
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}
