package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"NewsPrep/internal/domain"
	"NewsPrep/internal/ports"
)

// fakeGenerator scripts replies per prompt substring, in declaration
// order. An unmatched prompt returns the default reply.
type fakeGenerator struct {
	replies      map[string]string
	defaultReply string
	err          error
	calls        []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ ports.GenerateOptions) (string, error) {
	f.calls = append(f.calls, prompt)
	if f.err != nil {
		return "", f.err
	}
	for marker, reply := range f.replies {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return f.defaultReply, nil
}

func TestCategorizeValidReply(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{defaultReply: "Economy"}
	c := NewCategorizer(gen, 0.3, nil)

	if got := c.Categorize(context.Background(), "RBI rate cut", "content"); got != domain.CategoryEconomy {
		t.Fatalf("got %q", got)
	}
}

func TestCategorizeStripsQuotesAndWhitespace(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{defaultReply: "  \"Science & Technology\" \n"}
	c := NewCategorizer(gen, 0.3, nil)

	if got := c.Categorize(context.Background(), "ISRO launch", "content"); got != domain.CategoryScienceTech {
		t.Fatalf("got %q", got)
	}
}

func TestCategorizeOffEnumReplyFallsBack(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{defaultReply: "Sports"}
	c := NewCategorizer(gen, 0.3, nil)

	if got := c.Categorize(context.Background(), "Match result", "content"); got != domain.FallbackCategory {
		t.Fatalf("got %q, want fallback", got)
	}
}

func TestCategorizeGeneratorErrorFallsBack(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: fmt.Errorf("rate limited")}
	c := NewCategorizer(gen, 0.3, nil)

	if got := c.Categorize(context.Background(), "Anything", "content"); got != domain.FallbackCategory {
		t.Fatalf("got %q, want fallback", got)
	}
}

func TestCategorizeNilGeneratorFallsBack(t *testing.T) {
	t.Parallel()

	c := NewCategorizer(nil, 0.3, nil)

	if got := c.Categorize(context.Background(), "Anything", "content"); got != domain.FallbackCategory {
		t.Fatalf("got %q, want fallback", got)
	}
}

func TestCategorizePromptTruncatesContent(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{defaultReply: "Economy"}
	c := NewCategorizer(gen, 0.3, nil)

	long := strings.Repeat("x", 5000)
	c.Categorize(context.Background(), "Title", long)

	if len(gen.calls) != 1 {
		t.Fatalf("expected one generation call, got %d", len(gen.calls))
	}
	if strings.Contains(gen.calls[0], strings.Repeat("x", 801)) {
		t.Fatalf("prompt carries more than the content prefix")
	}
	if !strings.Contains(gen.calls[0], strings.Repeat("x", 800)) {
		t.Fatalf("prompt is missing the content prefix")
	}
}
