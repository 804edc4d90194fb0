package summarize

import (
	"context"

	"briefcast/internal/model"
)

// Summarizer is the summarization collaborator: it tags each item with
// category labels and synthesizes one free-text digest for the whole batch.
type Summarizer interface {
	Categorize(ctx context.Context, items []model.Item) ([]model.Item, error)
	Synthesize(ctx context.Context, items []model.Item) (string, error)
}

// validCategories is the closed tag vocabulary; anything else the model
// invents is discarded.
var validCategories = map[string]bool{
	"AI":         true,
	"Tech":       true,
	"Data":       true,
	"Security":   true,
	"DevOps":     true,
	"Mobile":     true,
	"Web3":       true,
	"Blockchain": true,
	"Product":    true,
	"Dev":        true,
	"Design":     true,
	"Business":   true,
}

const defaultCategory = "Tech"
