package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"createkit-backend/internal/creations"
	"createkit-backend/internal/extract"
	"createkit-backend/internal/imagegen"
	"createkit-backend/internal/llm"
	"createkit-backend/internal/media"
	"createkit-backend/internal/quota"
	"createkit-backend/internal/shared/apperr"
	"createkit-backend/internal/shared/auth"
	"createkit-backend/internal/shared/metrics"
	"createkit-backend/internal/shared/telemetry"
)

const (
	promptRemoveBackground = "Remove background from image"
	promptReviewResume     = "Review the uploaded resume"
)

// ImageGenerator runs an image job to completion.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (imagegen.Result, error)
}

// Persister records generation results.
type Persister interface {
	Create(ctx context.Context, in creations.NewCreation) (creations.Creation, error)
}

// Models names the chat models used per operation.
type Models struct {
	Article   string
	BlogTitle string
	Review    string
}

// Service runs the gated generation operations. Every operation checks the
// quota gate before its first provider call and stores a creation only for
// non-empty output.
type Service struct {
	Gate      *quota.Gate
	LLM       llm.Client
	Models    Models
	Images    ImageGenerator
	Media     media.Store
	Creations Persister
}

// Upload is an in-memory multipart file.
type Upload struct {
	FileName string
	MimeType string
	Data     []byte
}

// ArticleInput is the generate-article payload.
type ArticleInput struct {
	Prompt string
	Length *float64
}

// ImageInput is the generate-image payload.
type ImageInput struct {
	Prompt  string
	Publish bool
}

// GenerateArticle writes an article of roughly the requested length.
func (s *Service) GenerateArticle(ctx context.Context, p auth.Principal, in ArticleInput) (string, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return "", apperr.BadRequest(msgPromptRequired)
	}
	words := llm.ArticleWords(in.Length)
	req := llm.UserPrompt(s.Models.Article, llm.ArticlePrompt(prompt, words), llm.DefaultTemperature, llm.ArticleMaxTokens(words))
	return s.completeText(ctx, p, creations.TypeArticle, prompt, req, msgArticleFailed, msgArticleEmpty)
}

// GenerateBlogTitle sends prompt as-is and returns the suggested titles.
func (s *Service) GenerateBlogTitle(ctx context.Context, p auth.Principal, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", apperr.BadRequest(msgPromptRequired)
	}
	req := llm.UserPrompt(s.Models.BlogTitle, llm.BlogTitlePrompt(prompt), llm.DefaultTemperature, llm.BlogTitleMaxTokens)
	return s.completeText(ctx, p, creations.TypeBlogTitle, prompt, req, msgBlogTitleFailed, msgBlogTitleEmpty)
}

func (s *Service) completeText(ctx context.Context, p auth.Principal, kind creations.Type, prompt string, req llm.Request, failedMsg, emptyMsg string) (string, error) {
	start := time.Now()
	ctx, admission, err := s.admit(ctx, p, quota.FreeEligible, "")
	if err != nil {
		observe(kind, "denied", start)
		return "", err
	}

	out, err := s.LLM.Complete(ctx, req)
	if err != nil {
		observe(kind, "provider_error", start)
		return "", llmError(err, failedMsg, emptyMsg)
	}

	if _, err := s.persist(ctx, p, kind, prompt, out.Content, false); err != nil {
		observe(kind, "storage_error", start)
		return "", err
	}
	s.commit(ctx, admission)
	observe(kind, "ok", start)
	return out.Content, nil
}

// GenerateImage runs a synthesis job, re-hosts the result on the media CDN
// and stores it. publish is written onto the new creation.
func (s *Service) GenerateImage(ctx context.Context, p auth.Principal, in ImageInput) (string, error) {
	const kind = creations.TypeImage
	start := time.Now()
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return "", apperr.BadRequest(msgPromptRequired)
	}
	ctx, admission, err := s.admit(ctx, p, quota.PremiumOnly, featureImage)
	if err != nil {
		observe(kind, "denied", start)
		return "", err
	}

	res, err := s.Images.Generate(ctx, prompt)
	if err != nil {
		observe(kind, outcomeForImage(err), start)
		return "", imageJobError(err)
	}

	url, err := s.Media.UploadURL(ctx, p.UserID, res.URL)
	if err != nil {
		observe(kind, "upload_error", start)
		return "", mediaError(err, msgImageUploadFailed)
	}

	if _, err := s.persist(ctx, p, kind, prompt, url, in.Publish); err != nil {
		observe(kind, "storage_error", start)
		return "", err
	}
	s.commit(ctx, admission)
	observe(kind, "ok", start)
	return url, nil
}

// RemoveBackground strips the background from an uploaded image.
func (s *Service) RemoveBackground(ctx context.Context, p auth.Principal, file Upload) (string, error) {
	const kind = creations.TypeImage
	start := time.Now()
	if len(file.Data) == 0 {
		return "", apperr.BadRequest(msgNoImage)
	}
	ctx, admission, err := s.admit(ctx, p, quota.PremiumOnly, featureBackground)
	if err != nil {
		observe(kind, "denied", start)
		return "", err
	}

	url, err := s.Media.RemoveBackground(ctx, p.UserID, file.FileName, file.reader())
	if err != nil {
		observe(kind, "provider_error", start)
		return "", mediaError(err, msgBackgroundFailed)
	}

	if _, err := s.persist(ctx, p, kind, promptRemoveBackground, url, false); err != nil {
		observe(kind, "storage_error", start)
		return "", err
	}
	s.commit(ctx, admission)
	observe(kind, "ok", start)
	return url, nil
}

// RemoveObject erases object from an uploaded image.
func (s *Service) RemoveObject(ctx context.Context, p auth.Principal, file Upload, object string) (string, error) {
	const kind = creations.TypeImage
	start := time.Now()
	if len(file.Data) == 0 {
		return "", apperr.BadRequest(msgNoImage)
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return "", apperr.BadRequest(msgObjectRequired)
	}
	ctx, admission, err := s.admit(ctx, p, quota.PremiumOnly, featureObject)
	if err != nil {
		observe(kind, "denied", start)
		return "", err
	}

	url, err := s.Media.RemoveObject(ctx, p.UserID, file.FileName, file.reader(), object)
	if err != nil {
		observe(kind, "provider_error", start)
		return "", mediaError(err, msgObjectFailed)
	}

	prompt := fmt.Sprintf("Remove %s from image", object)
	if _, err := s.persist(ctx, p, kind, prompt, url, false); err != nil {
		observe(kind, "storage_error", start)
		return "", err
	}
	s.commit(ctx, admission)
	observe(kind, "ok", start)
	return url, nil
}

// ReviewResume extracts text from a PDF resume and asks for a recruiter review.
func (s *Service) ReviewResume(ctx context.Context, p auth.Principal, file Upload) (string, error) {
	const kind = creations.TypeResumeReview
	start := time.Now()
	if len(file.Data) == 0 {
		return "", apperr.BadRequest(msgNoResume)
	}
	ctx, admission, err := s.admit(ctx, p, quota.PremiumOnly, featureResume)
	if err != nil {
		observe(kind, "denied", start)
		return "", err
	}

	text, err := extract.ResumeText(ctx, file.Data, file.MimeType, file.FileName)
	if err != nil {
		observe(kind, "invalid_input", start)
		return "", extractError(err)
	}

	req := llm.UserPrompt(s.Models.Review, llm.ResumeReviewPrompt(text), llm.DefaultTemperature, llm.ResumeReviewMaxTokens)
	out, err := s.LLM.Complete(ctx, req)
	if err != nil {
		observe(kind, "provider_error", start)
		return "", llmError(err, msgResumeFailed, msgResumeEmptyReview)
	}

	if _, err := s.persist(ctx, p, kind, promptReviewResume, out.Content, false); err != nil {
		observe(kind, "storage_error", start)
		return "", err
	}
	s.commit(ctx, admission)
	observe(kind, "ok", start)
	return out.Content, nil
}

// admit gates the caller. The returned context no longer follows the
// request's cancellation, so an admitted job still finishes and is stored
// when the client disconnects.
func (s *Service) admit(ctx context.Context, p auth.Principal, class quota.Class, feature string) (context.Context, *quota.Admission, error) {
	admission, err := s.Gate.Admit(ctx, quota.Subject{OwnerID: p.UserID, Plan: p.Plan}, class)
	if err != nil {
		return ctx, nil, gateError(err, feature)
	}
	return context.WithoutCancel(ctx), admission, nil
}

func (s *Service) persist(ctx context.Context, p auth.Principal, kind creations.Type, prompt, content string, publish bool) (creations.Creation, error) {
	if strings.TrimSpace(content) == "" {
		return creations.Creation{}, apperr.ProviderError("", errors.New("empty provider output"))
	}
	return s.Creations.Create(context.WithoutCancel(ctx), creations.NewCreation{
		UserID:  p.UserID,
		Prompt:  prompt,
		Content: content,
		Type:    kind,
		Publish: publish,
	})
}

// commit charges the caller. The result is already stored, so a failed
// decrement is logged and the request still succeeds.
func (s *Service) commit(ctx context.Context, admission *quota.Admission) {
	if err := admission.Commit(context.WithoutCancel(ctx)); err != nil {
		telemetry.Error("quota.commit_failed", map[string]any{
			"remaining": admission.Remaining(),
			"error":     err,
		})
	}
}

func (u Upload) reader() io.Reader {
	return bytes.NewReader(u.Data)
}

func observe(kind creations.Type, outcome string, start time.Time) {
	metrics.ObserveGeneration(string(kind), outcome, time.Since(start))
}

func outcomeForImage(err error) string {
	switch {
	case errors.Is(err, imagegen.ErrTimedOut):
		return "timed_out"
	case errors.Is(err, imagegen.ErrFailed):
		return "failed"
	case errors.Is(err, imagegen.ErrNoJobID):
		return "no_job"
	}
	return "provider_error"
}
