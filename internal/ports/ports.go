package ports

import (
	"context"

	"NewsPrep/internal/domain"
)

// FeedSource pulls candidate items from every configured RSS feed.
type FeedSource interface {
	FetchItems(ctx context.Context) ([]domain.FeedItem, error)
}

// ContentFetcher retrieves full article text from a page URL. It returns
// an error when the page cannot be fetched or yields too little text;
// callers fall back to the RSS snippet.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// GenerateOptions tune a single text-generation request.
type GenerateOptions struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// Generator is the text-generation capability behind categorization and
// enrichment. Replies are raw text; structured parsing is the caller's job.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// ArticleRepository persists processed articles and serves the read side.
type ArticleRepository interface {
	InsertArticle(ctx context.Context, article domain.Article) (domain.Article, error)
	ExistsByTitleAndSource(ctx context.Context, title, source string) (bool, error)
	ArticlesByDate(ctx context.Context, date string) ([]domain.Article, error)
	ArticlesByCategory(ctx context.Context, category domain.Category) ([]domain.Article, error)
	LatestArticles(ctx context.Context, limit int) ([]domain.Article, error)
	DeleteOlderThan(ctx context.Context, days int) ([]domain.Article, error)
	Stats(ctx context.Context) (domain.Stats, error)
}

// Notifier announces scheduled run results to an external channel.
type Notifier interface {
	NotifyRun(ctx context.Context, saved int) error
}
