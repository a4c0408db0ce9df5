package creations

import "context"

// Repo defines persistence operations for creations.
type Repo interface {
	Create(ctx context.Context, c Creation) error
	ListByUser(ctx context.Context, userID string) ([]Creation, error)
	ListPublished(ctx context.Context) ([]Creation, error)
	// ToggleLike flips userID's membership in the like set and reports
	// whether the user now likes the creation.
	ToggleLike(ctx context.Context, id, userID string) (bool, error)
	// SetPublish writes publish, or negates the current flag when publish is
	// nil, on a creation owned by ownerID. It returns the stored flag.
	SetPublish(ctx context.Context, id, ownerID string, publish *bool) (bool, error)
}
