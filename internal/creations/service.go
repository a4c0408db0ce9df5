package creations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"createkit-backend/internal/shared/apperr"
	"createkit-backend/internal/shared/telemetry"
)

const (
	msgNotFound        = "Creation not found"
	msgNotOwner        = "Not authorized to modify this creation"
	msgNoUserCreations = "No creations found for this user."
	msgLiked           = "Creation liked."
	msgUnliked         = "Creation unliked."
)

// Service contains business logic for creations.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: func() time.Time { return time.Now().UTC() }}
}

// NewCreation is the input for Create.
type NewCreation struct {
	UserID  string
	Prompt  string
	Content string
	Type    Type
	Publish bool
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked   bool
	Message string
}

// Create persists one generation result. Empty content is rejected.
func (s *Service) Create(ctx context.Context, in NewCreation) (Creation, error) {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.Content) == "" || !in.Type.Valid() {
		return Creation{}, apperr.New(apperr.KindInternal, "", ErrInvalidInput)
	}
	now := s.now()
	c := Creation{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Prompt:    in.Prompt,
		Content:   in.Content,
		Type:      in.Type,
		Publish:   in.Publish,
		Likes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return Creation{}, apperr.Storage("", err)
	}
	telemetry.Info("creation.saved", map[string]any{
		"creation_id": c.ID,
		"user_id":     c.UserID,
		"type":        string(c.Type),
		"publish":     c.Publish,
	})
	return c, nil
}

// ListByUser returns the caller's creations, newest first. An empty result
// is reported as NotFound.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Creation, error) {
	items, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Storage("", err)
	}
	if len(items) == 0 {
		return nil, apperr.New(apperr.KindNotFound, msgNoUserCreations, ErrNotFound)
	}
	return items, nil
}

// ListPublished returns the public feed, newest first.
func (s *Service) ListPublished(ctx context.Context) ([]Creation, error) {
	items, err := s.Repo.ListPublished(ctx)
	if err != nil {
		return nil, apperr.Storage("", err)
	}
	return items, nil
}

// ToggleLike adds or removes userID from the like set of creation id.
func (s *Service) ToggleLike(ctx context.Context, id, userID string) (LikeResult, error) {
	if !validID(id) {
		return LikeResult{}, apperr.New(apperr.KindNotFound, msgNotFound, ErrNotFound)
	}
	liked, err := s.Repo.ToggleLike(ctx, id, userID)
	if err != nil {
		return LikeResult{}, mapRepoErr(err)
	}
	if liked {
		return LikeResult{Liked: true, Message: msgLiked}, nil
	}
	return LikeResult{Liked: false, Message: msgUnliked}, nil
}

// TogglePublish sets or flips the publish flag on a creation owned by userID.
func (s *Service) TogglePublish(ctx context.Context, id, userID string, publish *bool) (bool, error) {
	if !validID(id) {
		return false, apperr.New(apperr.KindNotFound, msgNotFound, ErrNotFound)
	}
	stored, err := s.Repo.SetPublish(ctx, id, userID, publish)
	if err != nil {
		return false, mapRepoErr(err)
	}
	return stored, nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.New(apperr.KindNotFound, msgNotFound, err)
	case errors.Is(err, ErrForbidden):
		return apperr.New(apperr.KindForbidden, msgNotOwner, err)
	default:
		return apperr.Storage("", err)
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
