package model

import "time"

// Digest is the synthesized free-text brief for one feed on one day.
type Digest struct {
	Date      string    `json:"date"` // YYYY-MM-DD
	Feed      string    `json:"feed"`
	Text      string    `json:"text"`
	ItemCount int       `json:"item_count"`
	Elapsed   float64   `json:"elapsed_seconds"`
	CreatedAt time.Time `json:"created_at"`
}

// Report summarizes one pipeline run for auditing.
type Report struct {
	Date       string    `json:"date"`
	Feed       string    `json:"feed"`
	SourceURL  string    `json:"source_url"`
	Extracted  int       `json:"extracted"`
	Stored     int       `json:"stored"`
	Success    bool      `json:"success"`
	Errors     []string  `json:"errors,omitempty"`
	Elapsed    float64   `json:"elapsed_seconds"`
	AudioFile  string    `json:"audio_file,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}
