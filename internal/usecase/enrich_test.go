package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestEnrichAllGenerationFails(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: fmt.Errorf("model down")}
	e := NewEnricher(gen, EnricherOptions{MaxSummaryLength: 50}, nil)

	out := e.Enrich(context.Background(), "Some article content worth keeping around.")

	if out.Summary == "" {
		t.Fatalf("summary must fall back to truncation, got empty")
	}
	if !strings.HasSuffix(out.Summary, "...") {
		t.Fatalf("fallback summary missing ellipsis: %q", out.Summary)
	}
	if len(out.MCQs) != 0 || out.MCQs == nil {
		t.Fatalf("expected empty non-nil mcqs, got %#v", out.MCQs)
	}
	if len(out.Flashcards) != 0 || out.Flashcards == nil {
		t.Fatalf("expected empty non-nil flashcards, got %#v", out.Flashcards)
	}
	if out.MindMap.Topic != "Main Topic" {
		t.Fatalf("expected default mind map, got %+v", out.MindMap)
	}
}

func TestEnrichIndependentDegradation(t *testing.T) {
	t.Parallel()

	// MCQ reply is garbage; the other three fields must still land.
	gen := &fakeGenerator{
		replies: map[string]string{
			"multiple choice questions": "not json",
			"flashcards":                `[{"front":"F","back":"B"}]`,
			"mind map":                  `{"topic":"T","subtopics":[{"name":"S"}]}`,
			"concise summary":           "A tidy summary.",
		},
	}
	e := NewEnricher(gen, EnricherOptions{}, nil)

	out := e.Enrich(context.Background(), "content")

	if len(out.MCQs) != 0 {
		t.Fatalf("expected mcqs to degrade to empty, got %d", len(out.MCQs))
	}
	if len(out.Flashcards) != 1 || out.Flashcards[0].Front != "F" {
		t.Fatalf("unexpected flashcards: %+v", out.Flashcards)
	}
	if out.MindMap.Topic != "T" || len(out.MindMap.Subtopics) != 1 {
		t.Fatalf("unexpected mind map: %+v", out.MindMap)
	}
	if out.Summary != "A tidy summary." {
		t.Fatalf("unexpected summary: %q", out.Summary)
	}
}

func TestEnrichFiltersAndCapsMCQs(t *testing.T) {
	t.Parallel()

	// Five questions: one with a bad option count, one with an
	// out-of-range answer, three valid. The cap keeps two.
	reply := `[
		{"question":"bad","options":["a","b"],"correct_answer":0},
		{"question":"oob","options":["a","b","c","d"],"correct_answer":4},
		{"question":"q1","options":["a","b","c","d"],"correct_answer":0},
		{"question":"q2","options":["a","b","c","d"],"correctAnswer":1},
		{"question":"q3","options":["a","b","c","d"],"correct_answer":2}
	]`
	gen := &fakeGenerator{
		replies: map[string]string{"multiple choice questions": "```json\n" + reply + "\n```"},
	}
	e := NewEnricher(gen, EnricherOptions{MaxMCQs: 2}, nil)

	out := e.Enrich(context.Background(), "content")

	if len(out.MCQs) != 2 {
		t.Fatalf("expected 2 mcqs, got %d", len(out.MCQs))
	}
	if out.MCQs[0].Question != "q1" || out.MCQs[1].Question != "q2" {
		t.Fatalf("unexpected mcqs kept: %+v", out.MCQs)
	}
	if out.MCQs[1].CorrectAnswer != 1 {
		t.Fatalf("camelCase answer not honored: %+v", out.MCQs[1])
	}
}

func TestEnrichDropsEmptyFlashcards(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		replies: map[string]string{
			"flashcards": `[{"front":"","back":"B"},{"front":"F","back":""},{"front":"ok","back":"ok"}]`,
		},
	}
	e := NewEnricher(gen, EnricherOptions{}, nil)

	out := e.Enrich(context.Background(), "content")

	if len(out.Flashcards) != 1 || out.Flashcards[0].Front != "ok" {
		t.Fatalf("unexpected flashcards: %+v", out.Flashcards)
	}
}

func TestEnrichNormalizesMindMap(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		replies: map[string]string{
			"mind map": `{"topic":"","subtopics":["Bare string",{"name":""}]}`,
		},
	}
	e := NewEnricher(gen, EnricherOptions{}, nil)

	out := e.Enrich(context.Background(), "content")

	if out.MindMap.Topic != "Main Topic" {
		t.Fatalf("empty topic not defaulted: %q", out.MindMap.Topic)
	}
	if len(out.MindMap.Subtopics) != 1 || out.MindMap.Subtopics[0].Name != "Bare string" {
		t.Fatalf("unexpected subtopics: %+v", out.MindMap.Subtopics)
	}
}

func TestNaiveSummary(t *testing.T) {
	t.Parallel()

	if got := NaiveSummary("short", 200); got != "short..." {
		t.Fatalf("got %q", got)
	}

	long := strings.Repeat("ab", 200)
	got := NaiveSummary(long, 10)
	if got != long[:10]+"..." {
		t.Fatalf("got %q", got)
	}
}
