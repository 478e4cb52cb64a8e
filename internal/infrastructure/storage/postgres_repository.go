package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"NewsPrep/internal/domain"
	"NewsPrep/internal/ports"
)

const tableName = "news_articles"

var articleColumns = []string{
	"id", "title", "content", "source_url", "source", "feed_type",
	"category", "summary", "important", "mcqs", "flashcards", "mindmap",
	"published_date", "date", "created_at",
}

// PostgresRepository persists processed articles into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

var _ ports.ArticleRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  logger,
	}
}

// Migrate applies pending schema migrations from the given directory.
func (r *PostgresRepository) Migrate(migrationsPath string) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "migrations",
	})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	sourceURL := fmt.Sprintf("file://%s", migrationsPath)
	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			r.debug("nothing to migrate")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	r.debug("migrated to latest schema version")
	return nil
}

// InsertArticle stores the article, assigning its identifier and
// creation timestamp. Each insert is an independent unit of work.
func (r *PostgresRepository) InsertArticle(ctx context.Context, article domain.Article) (domain.Article, error) {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now().UTC()
	}

	mcqs, err := json.Marshal(article.MCQs)
	if err != nil {
		return domain.Article{}, fmt.Errorf("marshal mcqs: %w", err)
	}
	flashcards, err := json.Marshal(article.Flashcards)
	if err != nil {
		return domain.Article{}, fmt.Errorf("marshal flashcards: %w", err)
	}
	mindmap, err := json.Marshal(article.MindMap)
	if err != nil {
		return domain.Article{}, fmt.Errorf("marshal mindmap: %w", err)
	}

	query := r.builder.
		Insert(tableName).
		Columns(articleColumns...).
		Values(
			article.ID,
			article.Title,
			article.Content,
			article.SourceURL,
			article.Source,
			article.FeedType,
			string(article.Category),
			article.Summary,
			article.Important,
			mcqs,
			flashcards,
			mindmap,
			article.PublishedAt,
			article.Date,
			article.CreatedAt,
		)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}

	return article, nil
}

// ExistsByTitleAndSource is the dedup predicate: title plus source is
// the sole identity key for stored articles.
func (r *PostgresRepository) ExistsByTitleAndSource(ctx context.Context, title, source string) (bool, error) {
	sqlStr, args, err := r.builder.
		Select("1").
		From(tableName).
		Where(sq.Eq{"title": title, "source": source}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// ArticlesByDate returns the stored articles for one partition date.
func (r *PostgresRepository) ArticlesByDate(ctx context.Context, date string) ([]domain.Article, error) {
	query := r.selectArticles().
		Where(sq.Eq{"date": date}).
		OrderBy("created_at DESC")
	return r.queryArticles(ctx, query)
}

// ArticlesByCategory returns all stored articles with the given category.
func (r *PostgresRepository) ArticlesByCategory(ctx context.Context, category domain.Category) ([]domain.Article, error) {
	query := r.selectArticles().
		Where(sq.Eq{"category": string(category)}).
		OrderBy("created_at DESC")
	return r.queryArticles(ctx, query)
}

// LatestArticles returns the most recently ingested articles.
func (r *PostgresRepository) LatestArticles(ctx context.Context, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.selectArticles().
		OrderBy("created_at DESC").
		Limit(uint64(limit))
	return r.queryArticles(ctx, query)
}

// retentionCutoff ages by ingestion time, not publish time: articles
// picked up late still get the full retention window.
func retentionCutoff(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

// DeleteOlderThan removes articles ingested strictly earlier than the
// cutoff (created_at < now - days). A row exactly `days` old is kept.
func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, days int) ([]domain.Article, error) {
	cutoff := retentionCutoff(time.Now().UTC(), days)

	sqlStr, args, err := r.builder.
		Delete(tableName).
		Where(sq.Lt{"created_at": cutoff}).
		Suffix("RETURNING " + strings.Join(articleColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("delete old articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

// Stats aggregates the stored corpus by category and ingest date.
func (r *PostgresRepository) Stats(ctx context.Context) (domain.Stats, error) {
	sqlStr, args, err := r.builder.
		Select("category", "created_at").
		From(tableName).
		ToSql()
	if err != nil {
		return domain.Stats{}, fmt.Errorf("build stats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := domain.Stats{
		ByCategory: map[string]int{},
		ByDate:     map[string]int{},
	}

	for rows.Next() {
		var (
			category  string
			createdAt time.Time
		)
		if err := rows.Scan(&category, &createdAt); err != nil {
			return domain.Stats{}, fmt.Errorf("scan stats row: %w", err)
		}
		stats.Total++
		stats.ByCategory[category]++
		stats.ByDate[createdAt.UTC().Format("2006-01-02")]++
	}
	if err := rows.Err(); err != nil {
		return domain.Stats{}, fmt.Errorf("stats rows: %w", err)
	}

	return stats, nil
}

func (r *PostgresRepository) selectArticles() sq.SelectBuilder {
	return r.builder.Select(articleColumns...).From(tableName)
}

func (r *PostgresRepository) queryArticles(ctx context.Context, query sq.SelectBuilder) ([]domain.Article, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func scanArticles(rows *sql.Rows) ([]domain.Article, error) {
	articles := make([]domain.Article, 0)

	for rows.Next() {
		var (
			article    domain.Article
			category   string
			mcqs       []byte
			flashcards []byte
			mindmap    []byte
		)
		err := rows.Scan(
			&article.ID,
			&article.Title,
			&article.Content,
			&article.SourceURL,
			&article.Source,
			&article.FeedType,
			&category,
			&article.Summary,
			&article.Important,
			&mcqs,
			&flashcards,
			&mindmap,
			&article.PublishedAt,
			&article.Date,
			&article.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}

		article.Category = domain.Category(category)
		if err := json.Unmarshal(mcqs, &article.MCQs); err != nil {
			return nil, fmt.Errorf("unmarshal mcqs: %w", err)
		}
		if err := json.Unmarshal(flashcards, &article.Flashcards); err != nil {
			return nil, fmt.Errorf("unmarshal flashcards: %w", err)
		}
		if err := json.Unmarshal(mindmap, &article.MindMap); err != nil {
			return nil, fmt.Errorf("unmarshal mindmap: %w", err)
		}

		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nil
}

func (r *PostgresRepository) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
