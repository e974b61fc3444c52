// Package dispatch runs the downstream side effects of a persisted order:
// invoice generation, confirmation email, proactive notification, shipping
// label. All of them are best-effort once the order row exists: each
// dispatcher's failure is caught, logged and swallowed so that one failing
// channel never blocks another or the HTTP response already guaranteed by
// persistence success.
package dispatch

import (
	"context"
	"fmt"
	"log"

	"refab-api/internal/model"
)

// Dispatcher is a single post-persistence collaborator.
type Dispatcher interface {
	// Name identifies the dispatcher in logs.
	Name() string

	// Dispatch performs the side effect for a persisted quote.
	Dispatch(ctx context.Context, q *model.Quote) error
}

// Runner executes dispatchers in a fixed order after persistence.
type Runner struct {
	dispatchers []Dispatcher
}

// NewRunner creates a runner over the given dispatchers. Order matters:
// invoice before email before notification before label.
func NewRunner(dispatchers ...Dispatcher) *Runner {
	return &Runner{dispatchers: dispatchers}
}

// Run invokes every dispatcher sequentially. Failures are logged and
// swallowed; Run never returns an error and never panics out of a
// dispatcher. It returns the number of dispatchers that failed, which
// callers may surface in metrics or logs.
func (r *Runner) Run(ctx context.Context, q *model.Quote) int {
	failed := 0
	for _, d := range r.dispatchers {
		if err := r.runOne(ctx, d, q); err != nil {
			failed++
			log.Printf("[Dispatch] %s failed for order %s: %v", d.Name(), q.OrderID, err)
		}
	}
	return failed
}

func (r *Runner) runOne(ctx context.Context, d Dispatcher, q *model.Quote) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return d.Dispatch(ctx, q)
}
