package usecase

import (
	"strings"

	"NewsPrep/internal/domain"
)

// Content longer than this adds one point; long articles tend to be
// analysis rather than wire snippets.
const longContentChars = 1000

// Scorer decides which articles are worth the expensive enrichment
// calls. The cutoff is recall-biased: it bounds AI spend per run, it
// does not try to be precise. Vocabulary and threshold are injected
// because their values are a tuning choice.
type Scorer struct {
	keywords      []string
	titleKeywords []string
	threshold     int
}

// NewScorer lowers the vocabularies once up front.
func NewScorer(keywords, titleKeywords []string, threshold int) *Scorer {
	if threshold <= 0 {
		threshold = 2
	}
	return &Scorer{
		keywords:      lowerAll(keywords),
		titleKeywords: lowerAll(titleKeywords),
		threshold:     threshold,
	}
}

// Score sums keyword hits over title+content, +2 for a non-fallback
// category, +1 for long content, +1 for an important-looking title.
func (s *Scorer) Score(category domain.Category, title, content string) int {
	text := strings.ToLower(title + " " + content)

	score := 0
	for _, keyword := range s.keywords {
		if strings.Contains(text, keyword) {
			score++
		}
	}

	if category != domain.FallbackCategory {
		score += 2
	}
	if len(content) > longContentChars {
		score++
	}
	if s.hasImportantTitle(title) {
		score++
	}

	return score
}

// IsImportant gates the enrichment stage.
func (s *Scorer) IsImportant(category domain.Category, title, content string) bool {
	return s.Score(category, title, content) >= s.threshold
}

func (s *Scorer) hasImportantTitle(title string) bool {
	lowered := strings.ToLower(title)
	for _, keyword := range s.titleKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}
