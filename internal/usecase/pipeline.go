package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsPrep/internal/domain"
	"NewsPrep/internal/ports"
)

// PipelineDeps wires all collaborators into the ingestion pipeline.
type PipelineDeps struct {
	Source      ports.FeedSource
	Fetcher     ports.ContentFetcher
	Repository  ports.ArticleRepository
	Categorizer *Categorizer
	Scorer      *Scorer
	Enricher    *Enricher
	Logger      *slog.Logger

	BatchSize        int
	BatchDelay       time.Duration
	MaxSummaryLength int

	// Sleep is the inter-batch delay hook; tests inject a recorder.
	Sleep func(time.Duration)
}

// Pipeline implements one full ingestion run: read feeds, dedup, fetch
// content, categorize, score, conditionally enrich, persist in batches.
// Items are processed strictly sequentially; concurrent enrichment would
// defeat the batch-delay rate-limit mitigation.
type Pipeline struct {
	source      ports.FeedSource
	fetcher     ports.ContentFetcher
	repository  ports.ArticleRepository
	categorizer *Categorizer
	scorer      *Scorer
	enricher    *Enricher
	logger      *slog.Logger

	batchSize        int
	batchDelay       time.Duration
	maxSummaryLength int
	sleep            func(time.Duration)
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.BatchSize <= 0 {
		deps.BatchSize = 5
	}
	if deps.MaxSummaryLength <= 0 {
		deps.MaxSummaryLength = 200
	}
	if deps.Sleep == nil {
		deps.Sleep = time.Sleep
	}
	return &Pipeline{
		source:           deps.Source,
		fetcher:          deps.Fetcher,
		repository:       deps.Repository,
		categorizer:      deps.Categorizer,
		scorer:           deps.Scorer,
		enricher:         deps.Enricher,
		logger:           deps.Logger,
		batchSize:        deps.BatchSize,
		batchDelay:       deps.BatchDelay,
		maxSummaryLength: deps.MaxSummaryLength,
		sleep:            deps.Sleep,
	}
}

// Run executes one full ingestion and returns the number of articles
// persisted. Only a failure to list the feeds at all is an error;
// every narrower failure is recovered close to its origin.
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	items, err := p.source.FetchItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch feeds: %w", err)
	}
	p.info("feeds drained", "items", len(items))

	processed := make([]domain.Article, 0, len(items))
	for _, item := range items {
		article, ok := p.processItem(ctx, item)
		if !ok {
			continue
		}
		processed = append(processed, article)
	}

	saved := p.persistBatches(ctx, processed)
	p.info("run finished", "processed", len(processed), "saved", saved)
	return saved, nil
}

// processItem turns one feed item into a persistable article. The bool
// result is false for duplicates and items that failed the dedup check.
func (p *Pipeline) processItem(ctx context.Context, item domain.FeedItem) (domain.Article, bool) {
	if item.Title == "" || item.Description == "" {
		return domain.Article{}, false
	}

	// Dedup before any expensive work.
	exists, err := p.repository.ExistsByTitleAndSource(ctx, item.Title, item.Source)
	if err != nil {
		p.warn("dedup check failed", "title", item.Title, "error", err)
		return domain.Article{}, false
	}
	if exists {
		p.debug("skipping duplicate", "title", item.Title, "source", item.Source)
		return domain.Article{}, false
	}

	content := item.Description
	if item.Link != "" {
		full, err := p.fetcher.FetchContent(ctx, item.Link)
		if err != nil {
			p.debug("full content unavailable, using snippet", "link", item.Link, "error", err)
		} else {
			content = full
		}
	}

	category := p.categorizer.Categorize(ctx, item.Title, content)
	important := p.scorer.IsImportant(category, item.Title, content)

	article := domain.Article{
		Title:       item.Title,
		Content:     content,
		SourceURL:   item.Link,
		Source:      item.Source,
		FeedType:    item.FeedLabel,
		Category:    category,
		Important:   important,
		MCQs:        []domain.MCQ{},
		Flashcards:  []domain.Flashcard{},
		MindMap:     domain.DefaultMindMap(),
		PublishedAt: item.PublishedAt,
		Date:        item.PublishedAt.UTC().Format("2006-01-02"),
	}

	if important {
		p.info("enriching article", "title", item.Title, "category", category)
		enriched := p.enricher.Enrich(ctx, content)
		article.Summary = enriched.Summary
		article.MCQs = enriched.MCQs
		article.Flashcards = enriched.Flashcards
		article.MindMap = enriched.MindMap
	} else {
		p.debug("skipping enrichment", "title", item.Title)
		article.Summary = NaiveSummary(content, p.maxSummaryLength)
	}

	return article, true
}

// persistBatches writes articles in fixed-size batches with a delay
// between batches (never after the last one) to stay under downstream
// rate limits. A single failed write is logged and skipped.
func (p *Pipeline) persistBatches(ctx context.Context, articles []domain.Article) int {
	saved := 0

	for start := 0; start < len(articles); start += p.batchSize {
		end := start + p.batchSize
		if end > len(articles) {
			end = len(articles)
		}
		batch := articles[start:end]
		p.debug("persisting batch", "size", len(batch))

		for _, article := range batch {
			if _, err := p.repository.InsertArticle(ctx, article); err != nil {
				p.warn("insert failed", "title", article.Title, "error", err)
				continue
			}
			saved++
		}

		if end < len(articles) && p.batchDelay > 0 {
			p.sleep(p.batchDelay)
		}
	}

	return saved
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
