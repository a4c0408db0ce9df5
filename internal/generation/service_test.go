package generation

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"createkit-backend/internal/creations"
	"createkit-backend/internal/imagegen"
	"createkit-backend/internal/llm"
	"createkit-backend/internal/media"
	"createkit-backend/internal/quota"
	"createkit-backend/internal/shared/apperr"
	"createkit-backend/internal/shared/auth"
)

type fakeLLM struct {
	mu       sync.Mutex
	requests []llm.Request
	content  string
	err      error
	// onCall runs before the completion is returned.
	onCall func()
	ctxErr error
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.onCall != nil {
		f.onCall()
	}
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	return llm.Completion{Content: f.content, Model: req.Model}, nil
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeImages struct {
	calls  int
	url    string
	err    error
	onCall func()
	ctxErr error
}

func (f *fakeImages) Generate(ctx context.Context, prompt string) (imagegen.Result, error) {
	f.calls++
	if f.onCall != nil {
		f.onCall()
	}
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return imagegen.Result{}, f.err
	}
	return imagegen.Result{JobID: "job-1", URL: f.url, Attempts: 3}, nil
}

type fakeMedia struct {
	calls     int
	lastObj   string
	uploadErr error
	effectErr error
}

func (f *fakeMedia) UploadURL(_ context.Context, ownerID, sourceURL string) (string, error) {
	f.calls++
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "https://res.cloudinary.com/demo/image/upload/hosted.png", nil
}

func (f *fakeMedia) RemoveBackground(_ context.Context, ownerID, fileName string, r io.Reader) (string, error) {
	f.calls++
	if f.effectErr != nil {
		return "", f.effectErr
	}
	return "https://res.cloudinary.com/demo/image/upload/e_background_removal/" + fileName, nil
}

func (f *fakeMedia) RemoveObject(_ context.Context, ownerID, fileName string, r io.Reader, object string) (string, error) {
	f.calls++
	f.lastObj = object
	if f.effectErr != nil {
		return "", f.effectErr
	}
	return "https://res.cloudinary.com/demo/image/upload/e_gen_remove:" + object + "/" + fileName, nil
}

type fixture struct {
	svc    *Service
	source *quota.MemorySource
	llm    *fakeLLM
	images *fakeImages
	media  *fakeMedia
	repo   *creations.MemoryRepo
}

func newFixture() *fixture {
	source := quota.NewMemorySource()
	repo := creations.NewMemoryRepo()
	f := &fixture{
		source: source,
		llm:    &fakeLLM{content: "Generated text."},
		images: &fakeImages{url: "https://gen.krea.ai/out/fox.png"},
		media:  &fakeMedia{},
		repo:   repo,
	}
	f.svc = &Service{
		Gate:      quota.NewGate(source, 10),
		LLM:       f.llm,
		Models:    Models{Article: "gemini-3-flash-preview", BlogTitle: "gemini-2.5-flash-lite", Review: "gemini-3-flash-preview"},
		Images:    f.images,
		Media:     f.media,
		Creations: creations.NewService(repo),
	}
	return f
}

func (f *fixture) rows(t *testing.T, userID string) []creations.Creation {
	t.Helper()
	items, err := f.repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	return items
}

func (f *fixture) remaining(t *testing.T, userID string) quota.Counter {
	t.Helper()
	c, err := f.source.Get(context.Background(), userID)
	require.NoError(t, err)
	return c
}

var (
	premium = auth.Principal{UserID: "user_premium", Plan: auth.PlanPremium}
	free    = auth.Principal{UserID: "user_free", Plan: auth.PlanFree}
)

func ptr(v float64) *float64 { return &v }

func TestGenerateArticlePremiumStoresArticleRow(t *testing.T) {
	f := newFixture()

	article, err := f.svc.GenerateArticle(context.Background(), premium, ArticleInput{Prompt: "cats", Length: ptr(800)})
	require.NoError(t, err)
	assert.Equal(t, "Generated text.", article)

	require.Len(t, f.llm.requests, 1)
	req := f.llm.requests[0]
	assert.Equal(t, "gemini-3-flash-preview", req.Model)
	assert.Equal(t, 2400, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	assert.Contains(t, req.Messages[0].Content, "approximately 800 words")

	rows := f.rows(t, premium.UserID)
	require.Len(t, rows, 1)
	assert.Equal(t, creations.TypeArticle, rows[0].Type)
	assert.Equal(t, "cats", rows[0].Prompt)
	assert.Equal(t, "Generated text.", rows[0].Content)
	assert.False(t, rows[0].Publish)

	assert.False(t, f.remaining(t, premium.UserID).Set, "premium callers are never charged")
}

func TestGenerateArticleDefaultLength(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GenerateArticle(context.Background(), premium, ArticleInput{Prompt: "dogs"})
	require.NoError(t, err)
	assert.Equal(t, 2048, f.llm.requests[0].MaxTokens)
	assert.Contains(t, f.llm.requests[0].Messages[0].Content, "approximately 400 words")
}

func TestFreeCallerIsChargedOncePerSuccess(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GenerateBlogTitle(context.Background(), free, "go concurrency")
	require.NoError(t, err)
	assert.Equal(t, quota.Counter{Remaining: 9, Set: true}, f.remaining(t, free.UserID))

	req := f.llm.requests[0]
	assert.Equal(t, "gemini-2.5-flash-lite", req.Model)
	assert.Equal(t, 100, req.MaxTokens)
	assert.Equal(t, "go concurrency", req.Messages[0].Content)

	rows := f.rows(t, free.UserID)
	require.Len(t, rows, 1)
	assert.Equal(t, creations.TypeBlogTitle, rows[0].Type)
}

func TestClientDisconnectAfterAdmissionStillStoresAndCharges(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.llm.onCall = cancel

	title, err := f.svc.GenerateBlogTitle(ctx, free, "go concurrency")
	require.NoError(t, err)
	assert.Equal(t, "Generated text.", title)
	assert.NoError(t, f.llm.ctxErr)

	require.Len(t, f.rows(t, free.UserID), 1)
	assert.Equal(t, quota.Counter{Remaining: 9, Set: true}, f.remaining(t, free.UserID))
}

func TestClientDisconnectDuringImageJobStillStores(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.images.onCall = cancel

	url, err := f.svc.GenerateImage(ctx, premium, ImageInput{Prompt: "a fox"})
	require.NoError(t, err)
	assert.NoError(t, f.images.ctxErr)

	rows := f.rows(t, premium.UserID)
	require.Len(t, rows, 1)
	assert.Equal(t, url, rows[0].Content)
}

func TestFreeCallerWithZeroRemainingIsRefusedBeforeProvider(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.source.Update(context.Background(), free.UserID, 0))

	_, err := f.svc.GenerateArticle(context.Background(), free, ArticleInput{Prompt: "cats"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.ErrorIs(t, err, quota.ErrLimitReached)
	assert.Zero(t, f.llm.calls())
	assert.Empty(t, f.rows(t, free.UserID))
}

func TestPremiumOnlyOperationsRefuseFreeCallers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	upload := Upload{FileName: "a.png", MimeType: "image/png", Data: []byte("png")}

	cases := []struct {
		name string
		run  func() error
		msg  string
	}{
		{"image", func() error { _, err := f.svc.GenerateImage(ctx, free, ImageInput{Prompt: "fox"}); return err },
			"Image generation is available for premium users only. Please upgrade to premium."},
		{"background", func() error { _, err := f.svc.RemoveBackground(ctx, free, upload); return err },
			"Image background removal is available for premium users only. Please upgrade to premium."},
		{"object", func() error { _, err := f.svc.RemoveObject(ctx, free, upload, "car"); return err },
			"Image object removal is available for premium users only. Please upgrade to premium."},
		{"resume", func() error { _, err := f.svc.ReviewResume(ctx, free, upload); return err },
			"Resume review is available for premium users only. Please upgrade to premium."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			require.Error(t, err)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindForbidden, e.Kind)
			assert.Equal(t, tc.msg, e.Message)
		})
	}
	assert.Zero(t, f.images.calls)
	assert.Zero(t, f.media.calls)
	assert.Zero(t, f.llm.calls())
	assert.Empty(t, f.rows(t, free.UserID))
}

func TestPremiumStaleCounterIsReset(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.source.Update(context.Background(), premium.UserID, 4))

	_, err := f.svc.GenerateBlogTitle(context.Background(), premium, "titles")
	require.NoError(t, err)
	assert.Equal(t, quota.Counter{Remaining: 0, Set: true}, f.remaining(t, premium.UserID))
}

func TestGenerateImageStoresHostedURLWithPublish(t *testing.T) {
	f := newFixture()

	url, err := f.svc.GenerateImage(context.Background(), premium, ImageInput{Prompt: "a fox", Publish: true})
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/hosted.png", url)

	rows := f.rows(t, premium.UserID)
	require.Len(t, rows, 1)
	assert.Equal(t, creations.TypeImage, rows[0].Type)
	assert.Equal(t, url, rows[0].Content)
	assert.True(t, rows[0].Publish)
}

func TestGenerateImageErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind apperr.Kind
		msg  string
	}{
		{"no job id", imagegen.ErrNoJobID, apperr.KindProviderUnavailable, "Failed to initiate image generation job."},
		{"timed out", imagegen.ErrTimedOut, apperr.KindProviderTimeout, "Image generation timed out."},
		{"failed", imagegen.ErrFailed, apperr.KindProviderError, "Image generation failed."},
		{"transport", errors.New("dial tcp: refused"), apperr.KindProviderError, "Image generation failed."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.images.err = tc.err

			_, err := f.svc.GenerateImage(context.Background(), premium, ImageInput{Prompt: "fox"})
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, tc.msg, e.Message)
			assert.Empty(t, f.rows(t, premium.UserID))
			assert.Zero(t, f.media.calls)
		})
	}
}

func TestGenerateImageUploadFailure(t *testing.T) {
	f := newFixture()
	f.media.uploadErr = errors.New("cloudinary 500")

	_, err := f.svc.GenerateImage(context.Background(), premium, ImageInput{Prompt: "fox"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Image upload failed.", e.Message)
	assert.Empty(t, f.rows(t, premium.UserID))
}

func TestRemoveObjectStoresPrompt(t *testing.T) {
	f := newFixture()

	url, err := f.svc.RemoveObject(context.Background(), premium, Upload{FileName: "street.png", Data: []byte("png")}, " car ")
	require.NoError(t, err)
	assert.Contains(t, url, "e_gen_remove:car")
	assert.Equal(t, "car", f.media.lastObj)

	rows := f.rows(t, premium.UserID)
	require.Len(t, rows, 1)
	assert.Equal(t, "Remove car from image", rows[0].Prompt)
}

func TestRemoveObjectRequiresObject(t *testing.T) {
	f := newFixture()
	_, err := f.svc.RemoveObject(context.Background(), premium, Upload{FileName: "a.png", Data: []byte("png")}, " ")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Zero(t, f.media.calls)
}

func TestRemoveBackgroundStoresPrompt(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RemoveBackground(context.Background(), premium, Upload{FileName: "me.jpg", Data: []byte("jpg")})
	require.NoError(t, err)
	rows := f.rows(t, premium.UserID)
	require.Len(t, rows, 1)
	assert.Equal(t, "Remove background from image", rows[0].Prompt)
}

func TestRemoveBackgroundUnsupportedBackend(t *testing.T) {
	f := newFixture()
	f.media.effectErr = media.ErrEffectUnsupported

	_, err := f.svc.RemoveBackground(context.Background(), premium, Upload{FileName: "me.jpg", Data: []byte("jpg")})
	assert.Equal(t, apperr.KindProviderUnavailable, apperr.KindOf(err))
	assert.Empty(t, f.rows(t, premium.UserID))
}

func TestReviewResumeRejectsNonPDF(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ReviewResume(context.Background(), premium, Upload{FileName: "cv.docx", MimeType: "application/msword", Data: []byte("PK\x03\x04")})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindBadRequest, e.Kind)
	assert.Equal(t, "Only PDF resumes are supported.", e.Message)
	assert.Zero(t, f.llm.calls())
}

func TestReviewResumeUnreadablePDF(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ReviewResume(context.Background(), premium, Upload{FileName: "cv.pdf", MimeType: "application/pdf", Data: []byte("%PDF-1.4\nbroken")})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindBadRequest, e.Kind)
	assert.Equal(t, "Uploaded resume is empty or could not extract text.", e.Message)
	assert.Zero(t, f.llm.calls())
}

func TestEmptyCompletionStoresNothing(t *testing.T) {
	f := newFixture()
	f.llm.err = llm.ErrEmptyCompletion

	_, err := f.svc.GenerateArticle(context.Background(), free, ArticleInput{Prompt: "cats"})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindProviderError, e.Kind)
	assert.Equal(t, "Failed to generate article content.", e.Message)
	assert.Empty(t, f.rows(t, free.UserID))
	assert.False(t, f.remaining(t, free.UserID).Set, "failed operations are not charged")
}

func TestPromptRequired(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GenerateArticle(context.Background(), premium, ArticleInput{Prompt: "  "})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Zero(t, f.llm.calls())
}
