package model

import (
	"time"

	"github.com/google/uuid"
)

type ItemStatus string

const (
	StatusNew        ItemStatus = "new"
	StatusSummarized ItemStatus = "summarized"
	StatusArchived   ItemStatus = "archived"
	StatusFailed     ItemStatus = "failed"
)

// Item is one validated, deduplicated unit of extracted newsletter content.
type Item struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	URL          string     `json:"url,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	ReadingTime  string     `json:"reading_time,omitempty"`
	RawExcerpt   string     `json:"raw_excerpt"`
	Categories   []string   `json:"categories,omitempty"`
	Source       string     `json:"source"`
	Feed         string     `json:"feed"`
	Content      string     `json:"content,omitempty"`
	Status       ItemStatus `json:"status"`
	ExtractedAt  time.Time  `json:"extracted_at"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// NewItem creates an Item with a fresh identity and default status.
func NewItem(title, feed string) Item {
	return Item{
		ID:          uuid.New(),
		Title:       title,
		Source:      "newsletter-" + feed,
		Feed:        feed,
		Status:      StatusNew,
		ExtractedAt: time.Now(),
	}
}
