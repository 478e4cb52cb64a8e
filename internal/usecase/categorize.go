package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"NewsPrep/internal/domain"
	"NewsPrep/internal/ports"
)

// Only this much content goes into the categorization prompt; the lead
// of an article is enough to classify it and the rest is token spend.
const categorizeContentChars = 800

const categorizeSystemPrompt = "You are an expert at categorizing news articles for UPSC/GPSC preparation. Return only the category name."

var quoteStripper = strings.NewReplacer(`"`, "", `'`, "")

// Categorizer assigns one of the fixed categories using the
// text-generation capability. Classification failure is never fatal:
// any generation error or off-enum reply coerces to the fallback.
type Categorizer struct {
	generator   ports.Generator
	temperature float64
	logger      *slog.Logger
}

// NewCategorizer wires the generator; temperature is the pipeline's
// low-variance setting.
func NewCategorizer(generator ports.Generator, temperature float64, logger *slog.Logger) *Categorizer {
	return &Categorizer{generator: generator, temperature: temperature, logger: logger}
}

// Categorize returns the article's category, or the fallback when the
// classifier misbehaves.
func (c *Categorizer) Categorize(ctx context.Context, title, content string) domain.Category {
	if c.generator == nil {
		return domain.FallbackCategory
	}

	reply, err := c.generator.Generate(ctx, categorizePrompt(title, content), ports.GenerateOptions{
		SystemPrompt: categorizeSystemPrompt,
		Temperature:  c.temperature,
	})
	if err != nil {
		c.warn("categorize failed", "title", title, "error", err)
		return domain.FallbackCategory
	}

	cleaned := strings.TrimSpace(quoteStripper.Replace(reply))
	return domain.ParseCategory(cleaned)
}

func categorizePrompt(title, content string) string {
	var names strings.Builder
	for _, cat := range domain.Categories() {
		names.WriteString("- ")
		names.WriteString(string(cat))
		names.WriteString("\n")
	}

	return fmt.Sprintf(`Categorize this news article into one of these UPSC/GPSC-relevant categories:
%s
Title: %s
Content: %s

Return only the category name:`, names.String(), title, prefix(content, categorizeContentChars))
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func (c *Categorizer) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
