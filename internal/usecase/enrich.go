package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"NewsPrep/internal/aireply"
	"NewsPrep/internal/domain"
	"NewsPrep/internal/ports"
)

// Enrichment is the expensive stage: four independent generation
// requests per important article. Each field degrades on its own — a
// malformed MCQ reply must not cost the article its flashcards.
type Enricher struct {
	generator        ports.Generator
	maxMCQs          int
	maxFlashcards    int
	maxSummaryLength int
	temperature      float64
	logger           *slog.Logger
}

// EnricherOptions carry the per-run output caps.
type EnricherOptions struct {
	MaxMCQs          int
	MaxFlashcards    int
	MaxSummaryLength int
	Temperature      float64
}

// Enrichment is the study-aid bundle attached to an important article.
type Enrichment struct {
	Summary    string
	MCQs       []domain.MCQ
	Flashcards []domain.Flashcard
	MindMap    domain.MindMap
}

// NewEnricher builds the enrichment stage.
func NewEnricher(generator ports.Generator, opts EnricherOptions, logger *slog.Logger) *Enricher {
	if opts.MaxMCQs <= 0 {
		opts.MaxMCQs = 3
	}
	if opts.MaxFlashcards <= 0 {
		opts.MaxFlashcards = 3
	}
	if opts.MaxSummaryLength <= 0 {
		opts.MaxSummaryLength = 200
	}
	return &Enricher{
		generator:        generator,
		maxMCQs:          opts.MaxMCQs,
		maxFlashcards:    opts.MaxFlashcards,
		maxSummaryLength: opts.MaxSummaryLength,
		temperature:      opts.Temperature,
		logger:           logger,
	}
}

// Enrich runs all four requests. It never returns an error: every field
// has a documented degraded value and the zero-cost summary fallback
// keeps the summary non-empty even when generation is completely down.
func (e *Enricher) Enrich(ctx context.Context, content string) Enrichment {
	out := Enrichment{
		MCQs:       []domain.MCQ{},
		Flashcards: []domain.Flashcard{},
		MindMap:    domain.DefaultMindMap(),
	}

	if e.generator == nil {
		out.Summary = NaiveSummary(content, e.maxSummaryLength)
		return out
	}

	summary, err := e.summary(ctx, content)
	if err != nil {
		e.warn("summary generation failed", "error", err)
		summary = NaiveSummary(content, e.maxSummaryLength)
	}
	out.Summary = summary

	mcqs, err := e.mcqs(ctx, content)
	if err != nil {
		e.warn("mcq generation failed", "error", err)
	} else {
		out.MCQs = mcqs
	}

	flashcards, err := e.flashcards(ctx, content)
	if err != nil {
		e.warn("flashcard generation failed", "error", err)
	} else {
		out.Flashcards = flashcards
	}

	mindmap, err := e.mindMap(ctx, content)
	if err != nil {
		e.warn("mind map generation failed", "error", err)
	} else {
		out.MindMap = mindmap
	}

	return out
}

// NaiveSummary truncates content to maxLength characters with a
// trailing ellipsis. Used for unimportant articles and as the summary
// fallback; costs nothing.
func NaiveSummary(content string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = 200
	}
	runes := []rune(content)
	if len(runes) > maxLength {
		runes = runes[:maxLength]
	}
	return string(runes) + "..."
}

func (e *Enricher) summary(ctx context.Context, content string) (string, error) {
	prompt := fmt.Sprintf(`Please provide a concise summary of the following content in %d characters or less:

%s

Summary:`, e.maxSummaryLength, content)

	return e.generator.Generate(ctx, prompt, ports.GenerateOptions{
		SystemPrompt: "You are an expert at summarizing content concisely and accurately.",
		Temperature:  e.temperature,
	})
}

func (e *Enricher) mcqs(ctx context.Context, content string) ([]domain.MCQ, error) {
	prompt := fmt.Sprintf(`Generate %d UPSC/GPSC-style multiple choice questions from this content.
Each question should have 4 options (A, B, C, D) and include an explanation for the correct answer.

Content: %s

Return as JSON array with this structure:
[
  {
    "question": "Question text",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correct_answer": 0,
    "explanation": "Brief explanation"
  }
]`, e.maxMCQs, content)

	reply, err := e.generator.Generate(ctx, prompt, ports.GenerateOptions{
		SystemPrompt: "You are an expert at creating UPSC/GPSC-style multiple choice questions. Return only valid JSON.",
		Temperature:  e.temperature,
	})
	if err != nil {
		return nil, err
	}

	var parsed []domain.MCQ
	if err := aireply.Decode(reply, &parsed); err != nil {
		return nil, err
	}

	valid := make([]domain.MCQ, 0, len(parsed))
	for _, mcq := range parsed {
		if !mcq.Valid() {
			e.warn("dropping malformed mcq", "question", mcq.Question)
			continue
		}
		valid = append(valid, mcq)
		if len(valid) == e.maxMCQs {
			break
		}
	}

	return valid, nil
}

func (e *Enricher) flashcards(ctx context.Context, content string) ([]domain.Flashcard, error) {
	prompt := fmt.Sprintf(`Create %d educational flashcards from this content for UPSC/GPSC preparation.
Each flashcard should have a question/concept on the front and detailed answer/explanation on the back.

Content: %s

Return as JSON array with this structure:
[
  {
    "front": "Question or concept",
    "back": "Detailed answer or explanation"
  }
]`, e.maxFlashcards, content)

	reply, err := e.generator.Generate(ctx, prompt, ports.GenerateOptions{
		SystemPrompt: "You are an expert at creating educational flashcards for UPSC/GPSC preparation. Return only valid JSON.",
		Temperature:  e.temperature,
	})
	if err != nil {
		return nil, err
	}

	var parsed []domain.Flashcard
	if err := aireply.Decode(reply, &parsed); err != nil {
		return nil, err
	}

	valid := make([]domain.Flashcard, 0, len(parsed))
	for _, card := range parsed {
		if card.Front == "" || card.Back == "" {
			continue
		}
		valid = append(valid, card)
		if len(valid) == e.maxFlashcards {
			break
		}
	}

	return valid, nil
}

func (e *Enricher) mindMap(ctx context.Context, content string) (domain.MindMap, error) {
	prompt := fmt.Sprintf(`Create a mind map structure from this content for UPSC/GPSC preparation.
Focus on key concepts, facts, and their interconnections.

Content: %s

Return as JSON object with this structure:
{
  "topic": "Main Topic",
  "subtopics": [
    {
      "name": "Subtopic 1",
      "children": [
        {"name": "Key point 1"},
        {"name": "Key point 2"}
      ]
    }
  ]
}`, content)

	reply, err := e.generator.Generate(ctx, prompt, ports.GenerateOptions{
		SystemPrompt: "You are an expert at creating mind maps for UPSC/GPSC preparation. Return only valid JSON. Each subtopic must be an object with a \"name\" field.",
		Temperature:  e.temperature,
	})
	if err != nil {
		return domain.MindMap{}, err
	}

	var parsed domain.MindMap
	if err := aireply.Decode(reply, &parsed); err != nil {
		return domain.MindMap{}, err
	}

	return parsed.Normalized(), nil
}

func (e *Enricher) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
