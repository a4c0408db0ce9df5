package generation

import (
	"errors"

	"createkit-backend/internal/extract"
	"createkit-backend/internal/imagegen"
	"createkit-backend/internal/llm"
	"createkit-backend/internal/media"
	"createkit-backend/internal/quota"
	"createkit-backend/internal/shared/apperr"
	"createkit-backend/internal/shared/breaker"
)

// Caller-facing messages for the generation routes.
const (
	msgArticleFailed     = "Article generation failed."
	msgArticleEmpty      = "Failed to generate article content."
	msgBlogTitleFailed   = "Blog title generation failed."
	msgBlogTitleEmpty    = "Failed to generate blog title."
	msgImageFailed       = "Image generation failed."
	msgImageNoJob        = "Failed to initiate image generation job."
	msgImageTimedOut     = "Image generation timed out."
	msgImageUploadFailed = "Image upload failed."
	msgBackgroundFailed  = "Image background removal failed."
	msgObjectFailed      = "Image object removal failed."
	msgResumeFailed      = "Resume review failed."
	msgResumeEmptyReview = "Failed to review resume."
	msgResumeNoText      = "Uploaded resume is empty or could not extract text."
	msgResumeUnsupported = "Only PDF resumes are supported."
	msgPromptRequired    = "Prompt is required."
	msgObjectRequired    = "Object to remove is required."
	msgNoImage           = "No image uploaded"
	msgNoResume          = "No resume uploaded"
	premiumFeatureSuffix = " is available for premium users only. Please upgrade to premium."
	featureImage         = "Image generation"
	featureBackground    = "Image background removal"
	featureObject        = "Image object removal"
	featureResume        = "Resume review"
)

// gateError rewrites a premium refusal so it names the feature.
func gateError(err error, feature string) error {
	if errors.Is(err, quota.ErrPremiumRequired) && feature != "" {
		return apperr.New(apperr.KindForbidden, feature+premiumFeatureSuffix, err)
	}
	return err
}

// llmError classifies a completion failure. emptyMsg is used when the
// provider answered without text.
func llmError(err error, failedMsg, emptyMsg string) error {
	switch {
	case errors.Is(err, llm.ErrEmptyCompletion):
		return apperr.ProviderError(emptyMsg, err)
	case errors.Is(err, breaker.ErrOpen):
		return apperr.ProviderUnavailable(failedMsg, err)
	default:
		return apperr.ProviderError(failedMsg, err)
	}
}

func imageJobError(err error) error {
	switch {
	case errors.Is(err, imagegen.ErrNoJobID):
		return apperr.ProviderUnavailable(msgImageNoJob, err)
	case errors.Is(err, imagegen.ErrTimedOut):
		return apperr.ProviderTimeout(msgImageTimedOut, err)
	case errors.Is(err, breaker.ErrOpen):
		return apperr.ProviderUnavailable(msgImageFailed, err)
	default:
		return apperr.ProviderError(msgImageFailed, err)
	}
}

func mediaError(err error, failedMsg string) error {
	switch {
	case errors.Is(err, media.ErrEffectUnsupported), errors.Is(err, breaker.ErrOpen):
		return apperr.ProviderUnavailable(failedMsg, err)
	default:
		return apperr.ProviderError(failedMsg, err)
	}
}

func extractError(err error) error {
	switch {
	case errors.Is(err, extract.ErrUnsupportedType):
		return apperr.New(apperr.KindBadRequest, msgResumeUnsupported, err)
	case errors.Is(err, extract.ErrNoText):
		return apperr.New(apperr.KindBadRequest, msgResumeNoText, err)
	default:
		return apperr.ProviderError(msgResumeFailed, err)
	}
}
