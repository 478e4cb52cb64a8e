package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cixtor/readability"

	"NewsPrep/internal/config"
	"NewsPrep/internal/ports"
)

const (
	defaultMinLength = 100
	maxBodyBytes     = 4 << 20
)

// Fetcher retrieves article pages and extracts body text. Selector rules
// are evaluated in order against the URL; the first matching rule wins.
// Pages with no matching rule (or rules that yield nothing) fall back to
// readability extraction and finally to whole-document text.
type Fetcher struct {
	client    *http.Client
	rules     []config.ExtractionRule
	minLength int
	logger    *slog.Logger
}

var _ ports.ContentFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; minLength guards against pages that
// yield boilerplate-only text.
func NewFetcher(client *http.Client, rules []config.ExtractionRule, minLength int, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if minLength <= 0 {
		minLength = defaultMinLength
	}
	return &Fetcher{
		client:    client,
		rules:     rules,
		minLength: minLength,
		logger:    logger,
	}
}

// FetchContent downloads the page and extracts readable text. The error
// return covers network failures, bad statuses, and too-short output;
// callers treat any error as "use the RSS snippet instead".
func (f *Fetcher) FetchContent(ctx context.Context, pageURL string) (string, error) {
	body, err := f.download(ctx, pageURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	doc.Find("script").Remove()
	doc.Find("style").Remove()

	content := f.applyRules(doc, pageURL)
	if content == "" {
		content = readableText(body, pageURL)
	}
	if content == "" {
		content = doc.Find("body").Text()
	}

	content = collapseWhitespace(content)
	if len(content) < f.minLength {
		return "", fmt.Errorf("extracted content too short (%d chars)", len(content))
	}

	return content, nil
}

func (f *Fetcher) download(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsPrep/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

func (f *Fetcher) applyRules(doc *goquery.Document, pageURL string) string {
	for _, rule := range f.rules {
		if rule.Match == "" || !strings.Contains(pageURL, rule.Match) {
			continue
		}
		text := doc.Find(strings.Join(rule.Selectors, ", ")).Text()
		if strings.TrimSpace(text) != "" {
			return text
		}
		f.debug("rule matched but yielded nothing", "rule", rule.Match, "url", pageURL)
		return ""
	}
	return ""
}

func readableText(body []byte, pageURL string) string {
	r := readability.New()
	article, err := r.Parse(bytes.NewReader(body), pageURL)
	if err != nil {
		return ""
	}
	return article.TextContent
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
