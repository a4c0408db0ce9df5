package main

// Run a generation prompt against the configured chat model without the API:
//   go run ./cmd/prompttest -kind article -prompt "Go generics" -length 800
//   go run ./cmd/prompttest -kind resume-review -resume ./cv.pdf

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"createkit-backend/internal/extract"
	"createkit-backend/internal/llm"
	openai "createkit-backend/internal/llm/openai"
	"createkit-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	kind := flag.String("kind", "article", "Prompt kind: article, blog-title or resume-review")
	prompt := flag.String("prompt", "", "Topic or keyword for article and blog-title")
	length := flag.Float64("length", 0, "Target article length in words (0 for default)")
	resumePath := flag.String("resume", "", "Path to a PDF resume for resume-review")
	model := flag.String("model", "", "Override the configured model")
	outPath := flag.String("out", "", "Path to write the output (optional)")
	flag.Parse()

	client, err := openai.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout, nil)
	if err != nil {
		exitErr(err.Error())
	}

	req, err := buildRequest(cfg, *kind, *prompt, *length, *resumePath)
	if err != nil {
		exitErr(err.Error())
	}
	if strings.TrimSpace(*model) != "" {
		req.Model = *model
	}

	out, err := client.Complete(context.Background(), req)
	if err != nil {
		exitErr(fmt.Sprintf("llm complete: %v", err))
	}

	text := out.Content
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(text), 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.WriteString(text); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	_, _ = fmt.Fprintf(os.Stderr, "model=%s prompt_tokens=%d completion_tokens=%d\n",
		out.Model, out.PromptTokens, out.CompletionTokens)
}

func buildRequest(cfg config.Config, kind, prompt string, length float64, resumePath string) (llm.Request, error) {
	switch strings.TrimSpace(kind) {
	case "article":
		if strings.TrimSpace(prompt) == "" {
			return llm.Request{}, fmt.Errorf("prompt is required")
		}
		var lp *float64
		if length != 0 {
			lp = &length
		}
		words := llm.ArticleWords(lp)
		return llm.UserPrompt(cfg.LLMArticleModel, llm.ArticlePrompt(prompt, words),
			llm.DefaultTemperature, llm.ArticleMaxTokens(words)), nil
	case "blog-title":
		if strings.TrimSpace(prompt) == "" {
			return llm.Request{}, fmt.Errorf("prompt is required")
		}
		return llm.UserPrompt(cfg.LLMTitleModel, llm.BlogTitlePrompt(prompt),
			llm.DefaultTemperature, llm.BlogTitleMaxTokens), nil
	case "resume-review":
		if strings.TrimSpace(resumePath) == "" {
			return llm.Request{}, fmt.Errorf("resume path is required")
		}
		data, err := os.ReadFile(resumePath)
		if err != nil {
			return llm.Request{}, fmt.Errorf("read resume: %w", err)
		}
		text, err := extract.ResumeText(context.Background(), data, "", filepath.Base(resumePath))
		if err != nil {
			return llm.Request{}, fmt.Errorf("extract resume text: %w", err)
		}
		return llm.UserPrompt(cfg.LLMArticleModel, llm.ResumeReviewPrompt(text),
			llm.DefaultTemperature, llm.ResumeReviewMaxTokens), nil
	default:
		return llm.Request{}, fmt.Errorf("unsupported kind: %s", kind)
	}
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
