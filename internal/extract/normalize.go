package extract

import (
	"strings"

	"briefcast/internal/model"
)

const minTitleLength = 15

// titleRejects discards navigation and promotional pseudo-stories by title
// keyword. The feed's own brand name is appended at construction time.
var titleRejects = []string{
	"subscribe", "unsubscribe", "privacy policy",
	"terms of service", "contact us", "sponsor",
	"advertise", "newsletter", "sign up",
}

// Normalizer turns raw candidates into validated items: minimum title
// quality, boilerplate rejection, first-seen-wins deduplication by
// lowercased title and by non-empty URL, and a hard item cap.
type Normalizer struct {
	maxItems int
	rejects  []string
}

func NewNormalizer(maxItems int, brand string) *Normalizer {
	rejects := append([]string{}, titleRejects...)
	if brand != "" {
		rejects = append(rejects, strings.ToLower(brand))
	}
	if maxItems <= 0 {
		maxItems = 20
	}
	return &Normalizer{maxItems: maxItems, rejects: rejects}
}

// Normalize filters and deduplicates candidates in order, producing at most
// maxItems items for the given feed.
func (n *Normalizer) Normalize(candidates []Candidate, feed string) []model.Item {
	seenTitles := map[string]bool{}
	seenURLs := map[string]bool{}
	var out []model.Item

	for _, c := range candidates {
		title := strings.TrimSpace(c.Title)
		itemURL := strings.TrimSpace(c.URL)
		titleKey := strings.ToLower(title)

		if len(title) < minTitleLength ||
			seenTitles[titleKey] ||
			(itemURL != "" && seenURLs[itemURL]) ||
			n.rejected(titleKey) {
			continue
		}

		if itemURL != "" {
			seenURLs[itemURL] = true
		}
		seenTitles[titleKey] = true

		item := model.NewItem(title, feed)
		item.URL = itemURL
		item.Summary = c.Summary
		item.ReadingTime = c.ReadingTime
		item.RawExcerpt = c.RawExcerpt
		out = append(out, item)

		if len(out) >= n.maxItems {
			break
		}
	}

	return out
}

func (n *Normalizer) rejected(titleKey string) bool {
	for _, keyword := range n.rejects {
		if strings.Contains(titleKey, keyword) {
			return true
		}
	}
	return false
}
