package creations

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Creation
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Creation),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryRepo) Create(ctx context.Context, c Creation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Likes = append([]string{}, c.Likes...)
	r.data[c.ID] = c
	return nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Creation, error) {
	return r.filter(ctx, func(c Creation) bool { return c.UserID == userID })
}

func (r *MemoryRepo) ListPublished(ctx context.Context) ([]Creation, error) {
	return r.filter(ctx, func(c Creation) bool { return c.Publish })
}

func (r *MemoryRepo) ToggleLike(ctx context.Context, id, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return false, ErrNotFound
	}

	liked := !c.LikedBy(userID)
	if liked {
		c.Likes = append(append([]string{}, c.Likes...), userID)
	} else {
		kept := make([]string, 0, len(c.Likes))
		for _, l := range c.Likes {
			if l != userID {
				kept = append(kept, l)
			}
		}
		c.Likes = kept
	}
	c.UpdatedAt = r.now()
	r.data[id] = c
	return liked, nil
}

func (r *MemoryRepo) SetPublish(ctx context.Context, id, ownerID string, publish *bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return false, ErrNotFound
	}
	if c.UserID != ownerID {
		return false, ErrForbidden
	}
	if publish != nil {
		c.Publish = *publish
	} else {
		c.Publish = !c.Publish
	}
	c.UpdatedAt = r.now()
	r.data[id] = c
	return c.Publish, nil
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Creation) bool) ([]Creation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Creation{}
	for _, c := range r.data {
		if keep(c) {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func clone(c Creation) Creation {
	c.Likes = append([]string{}, c.Likes...)
	return c
}

var _ Repo = (*MemoryRepo)(nil)
