package domain

import "time"

// FeedItem is a single candidate pulled from an RSS feed before processing.
type FeedItem struct {
	Title       string
	Description string
	Link        string
	PublishedAt time.Time
	Source      string
	FeedLabel   string
}

// Article is a processed news item. Until it is persisted the ID and
// CreatedAt fields are empty; the repository fills them on insert.
type Article struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	SourceURL   string      `json:"source_url"`
	Source      string      `json:"source"`
	FeedType    string      `json:"feed_type"`
	Category    Category    `json:"category"`
	Summary     string      `json:"summary"`
	Important   bool        `json:"important"`
	MCQs        []MCQ       `json:"mcqs"`
	Flashcards  []Flashcard `json:"flashcards"`
	MindMap     MindMap     `json:"mindmap"`
	PublishedAt time.Time   `json:"published_date"`
	Date        string      `json:"date"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Flashcard is a front/back study card attached to an article.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Stats summarizes the stored corpus.
type Stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
	ByDate     map[string]int `json:"byDate"`
}
