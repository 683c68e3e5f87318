package hiddenorder

import "context"

// Repository remembers which orders a user removed from their history view.
type Repository interface {
	Hide(ctx context.Context, userID, orderID int) error
	List(ctx context.Context, userID int) ([]int, error)
	Clear(ctx context.Context, userID int) error
}
