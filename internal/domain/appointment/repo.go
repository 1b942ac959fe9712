package appointment

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an id does not match any row. Callers use
// errors.Is to tell it apart from infrastructure failures, which are wrapped
// and propagated as-is.
var ErrNotFound = errors.New("appointment not found")

// Repository is the persistence gateway. All mutations are atomic at
// single-row granularity; the backing pool is safe for concurrent use.
type Repository interface {
	// List returns all appointments ordered by appointment_date descending.
	List(ctx context.Context) ([]Appointment, error)
	// Get returns the appointment or ErrNotFound.
	Get(ctx context.Context, id int64) (*Appointment, error)
	// Create inserts a and fills in the store-assigned ID.
	Create(ctx context.Context, a *Appointment) error
	// Update applies only the fields present in upd and returns the updated
	// row, or ErrNotFound.
	Update(ctx context.Context, id int64, upd Update) (*Appointment, error)
	// Delete removes the row, reporting whether one matched.
	Delete(ctx context.Context, id int64) (bool, error)
}
