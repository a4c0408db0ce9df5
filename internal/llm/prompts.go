package llm

import (
	"fmt"
	"math"
	"strings"
)

const (
	// DefaultTemperature is used by every generation prompt.
	DefaultTemperature float32 = 0.7

	DefaultArticleWords   = 400
	BlogTitleMaxTokens    = 100
	ResumeReviewMaxTokens = 1600

	minArticleTokens = 2048
	maxArticleTokens = 8192
)

// ArticleWords returns the requested length, or DefaultArticleWords when the
// length is missing or not a positive finite number.
func ArticleWords(length *float64) int {
	if length == nil || math.IsNaN(*length) || math.IsInf(*length, 0) || *length <= 0 {
		return DefaultArticleWords
	}
	return int(math.Round(*length))
}

// ArticleMaxTokens budgets roughly three tokens per word, clamped to
// [2048, 8192].
func ArticleMaxTokens(words int) int {
	budget := int(math.Round(float64(words) * 3))
	if budget > maxArticleTokens {
		budget = maxArticleTokens
	}
	if budget < minArticleTokens {
		budget = minArticleTokens
	}
	return budget
}

// ArticlePrompt asks for a complete article of about words words.
func ArticlePrompt(topic string, words int) string {
	return fmt.Sprintf("You are an expert writer. Write a detailed, well-structured article on the following topic: \"%s\".\n\n"+
		"The article should be approximately %d words long (it's okay to be slightly above or below), "+
		"written in natural paragraphs, and it must fully finish its explanation with a clear concluding paragraph. "+
		"Do not stop mid-sentence.", topic, words)
}

// BlogTitlePrompt is sent verbatim.
func BlogTitlePrompt(prompt string) string {
	return prompt
}

// ResumeReviewPrompt frames the extracted resume text for a recruiter-style review.
func ResumeReviewPrompt(resumeText string) string {
	var b strings.Builder
	b.WriteString("You are an expert technical recruiter.\n\n")
	b.WriteString("Review the following resume and return your feedback in this structure:\n\n")
	b.WriteString("1. Overall Impression (2-3 sentences)\n")
	b.WriteString("2. Strengths (bullet points)\n")
	b.WriteString("3. Weaknesses (bullet points)\n")
	b.WriteString("4. Suggestions for Improvement (bullet points)\n")
	b.WriteString("5. Final Verdict (1 paragraph)\n\n")
	b.WriteString("Be concise but specific.\n\n")
	b.WriteString("Resume:\n")
	b.WriteString(strings.TrimSpace(resumeText))
	return b.String()
}
