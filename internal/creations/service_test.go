package creations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"createkit-backend/internal/shared/apperr"
)

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	svc.Now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return svc, repo
}

func seed(t *testing.T, svc *Service, userID string, typ Type, publish bool) Creation {
	t.Helper()
	c, err := svc.Create(context.Background(), NewCreation{
		UserID:  userID,
		Prompt:  "prompt",
		Content: "content",
		Type:    typ,
		Publish: publish,
	})
	require.NoError(t, err)
	return c
}

// stored reads a row straight from the memory repo.
func stored(t *testing.T, repo *MemoryRepo, id string) Creation {
	t.Helper()
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	c, ok := repo.data[id]
	require.True(t, ok, "creation %s not stored", id)
	return clone(c)
}

func TestCreateRejectsEmptyContent(t *testing.T) {
	svc, repo := newTestService()
	_, err := svc.Create(context.Background(), NewCreation{UserID: "user_1", Content: "  ", Type: TypeArticle})
	require.ErrorIs(t, err, ErrInvalidInput)

	items, _ := repo.ListByUser(context.Background(), "user_1")
	assert.Empty(t, items)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), NewCreation{UserID: "user_1", Content: "x", Type: "video"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListByUserNewestFirstAndNotFoundWhenEmpty(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ListByUser(context.Background(), "user_1")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	e, _ := apperr.As(err)
	assert.Equal(t, "No creations found for this user.", e.Message)

	first := seed(t, svc, "user_1", TypeArticle, false)
	second := seed(t, svc, "user_1", TypeImage, false)
	seed(t, svc, "user_2", TypeBlogTitle, true)

	items, err := svc.ListByUser(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
}

func TestListPublished(t *testing.T) {
	svc, _ := newTestService()
	seed(t, svc, "user_1", TypeArticle, false)
	pub := seed(t, svc, "user_2", TypeImage, true)

	items, err := svc.ListPublished(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, pub.ID, items[0].ID)
}

func TestToggleLikeTwiceRestoresMembership(t *testing.T) {
	svc, repo := newTestService()
	c := seed(t, svc, "user_1", TypeImage, true)

	res, err := svc.ToggleLike(context.Background(), c.ID, "user_2")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, "Creation liked.", res.Message)

	got := stored(t, repo, c.ID)
	assert.Equal(t, []string{"user_2"}, []string(got.Likes))

	res, err = svc.ToggleLike(context.Background(), c.ID, "user_2")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, "Creation unliked.", res.Message)

	got = stored(t, repo, c.ID)
	assert.Empty(t, got.Likes)
}

func TestToggleLikeUnknownID(t *testing.T) {
	svc, _ := newTestService()

	for _, id := range []string{"not-a-uuid", "3b2f5a9e-8a53-4d4e-b7a4-0d9c2b4b9f10"} {
		_, err := svc.ToggleLike(context.Background(), id, "user_2")
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err), id)
	}
}

func TestTogglePublishByNonOwnerLeavesRowUnchanged(t *testing.T) {
	svc, repo := newTestService()
	c := seed(t, svc, "user_1", TypeArticle, false)
	before := stored(t, repo, c.ID)

	publish := true
	_, err := svc.TogglePublish(context.Background(), c.ID, "user_2", &publish)
	require.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	after := stored(t, repo, c.ID)
	assert.Equal(t, before, after)
}

func TestTogglePublishExplicitAndNegate(t *testing.T) {
	svc, _ := newTestService()
	c := seed(t, svc, "user_1", TypeArticle, false)

	publish := true
	got, err := svc.TogglePublish(context.Background(), c.ID, "user_1", &publish)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = svc.TogglePublish(context.Background(), c.ID, "user_1", &publish)
	require.NoError(t, err)
	assert.True(t, got, "explicit value is written, not toggled")

	got, err = svc.TogglePublish(context.Background(), c.ID, "user_1", nil)
	require.NoError(t, err)
	assert.False(t, got)
}

type failingRepo struct{ Repo }

func (failingRepo) Create(ctx context.Context, c Creation) error {
	return errors.New("connection refused")
}

func TestCreateStorageFailure(t *testing.T) {
	svc := NewService(failingRepo{Repo: NewMemoryRepo()})
	_, err := svc.Create(context.Background(), NewCreation{UserID: "u", Content: "x", Type: TypeArticle})
	require.Error(t, err)
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
}
