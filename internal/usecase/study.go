package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"NewsPrep/internal/aireply"
	"NewsPrep/internal/ports"
)

// StudyAids serves the on-demand generation endpoints: summarizing and
// structuring arbitrary user-supplied content outside the pipeline.
type StudyAids struct {
	generator ports.Generator
}

// NewStudyAids wires the generation capability.
func NewStudyAids(generator ports.Generator) *StudyAids {
	return &StudyAids{generator: generator}
}

var errNoGenerator = errors.New("text generation is not configured")

// Summarize condenses content to roughly maxLength characters.
func (s *StudyAids) Summarize(ctx context.Context, content string, maxLength int) (string, error) {
	if s.generator == nil {
		return "", errNoGenerator
	}
	if maxLength <= 0 {
		maxLength = 300
	}

	prompt := fmt.Sprintf(`Please provide a concise summary of the following content in %d characters or less:

%s

Summary:`, maxLength, content)

	reply, err := s.generator.Generate(ctx, prompt, ports.GenerateOptions{
		SystemPrompt: "You are an expert at summarizing content concisely and accurately.",
		Temperature:  0.3,
	})
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	return strings.TrimSpace(reply), nil
}

// KeyPoints extracts the main points of the content. A malformed JSON
// reply falls back to one point per non-empty line.
func (s *StudyAids) KeyPoints(ctx context.Context, content string) ([]string, error) {
	if s.generator == nil {
		return nil, errNoGenerator
	}
	prompt := fmt.Sprintf(`Extract the main key points from the following content. Return them as a JSON array of strings:

%s

Key Points:`, content)

	reply, err := s.generator.Generate(ctx, prompt, ports.GenerateOptions{
		SystemPrompt: "You are an expert at extracting key points from content. Return only valid JSON.",
		Temperature:  0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("generate key points: %w", err)
	}

	return aireply.StringList(reply), nil
}

// Headings proposes section headings for the content, with the same
// line-split fallback as KeyPoints.
func (s *StudyAids) Headings(ctx context.Context, content string) ([]string, error) {
	if s.generator == nil {
		return nil, errNoGenerator
	}
	prompt := fmt.Sprintf(`Generate appropriate headings for the following content. Return them as a JSON array of strings:

%s

Headings:`, content)

	reply, err := s.generator.Generate(ctx, prompt, ports.GenerateOptions{
		SystemPrompt: "You are an expert at creating clear, descriptive headings for content. Return only valid JSON.",
		Temperature:  0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("generate headings: %w", err)
	}

	return aireply.StringList(reply), nil
}
