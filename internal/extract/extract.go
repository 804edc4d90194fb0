package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Candidate is an unvalidated, possibly-duplicate extraction result. The
// normalizer decides which candidates become items.
type Candidate struct {
	Title       string
	URL         string
	Summary     string
	ReadingTime string
	RawExcerpt  string
}

// Strategy scans a parsed document and returns raw candidates. Strategies
// are tried in priority order; the first one to yield anything wins.
type Strategy func(doc *goquery.Document, pageURL string) []Candidate

// Extractor pulls article candidates out of a newsletter page using a
// layered set of heuristics: structural markup first, external links second,
// plain-text patterns as a last resort.
type Extractor struct {
	maxItems   int
	strategies []Strategy
	logger     *zap.Logger
}

func NewExtractor(maxItems int, logger *zap.Logger) *Extractor {
	if maxItems <= 0 {
		maxItems = 20
	}
	e := &Extractor{maxItems: maxItems, logger: logger}
	e.strategies = []Strategy{
		e.scanStructured,
		e.scanExternalLinks,
		e.scanTextPatterns,
	}
	return e
}

// Extract parses the HTML and runs the strategies in order. An empty result
// is not an error: it means no strategy recognized the page.
func (e *Extractor) Extract(html, pageURL string) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	for i, strategy := range e.strategies {
		candidates := strategy(doc, pageURL)
		if len(candidates) > 0 {
			e.logger.Info("Extraction strategy succeeded",
				zap.Int("strategy", i+1),
				zap.Int("candidates", len(candidates)))
			return candidates, nil
		}
	}

	e.logger.Warn("All extraction strategies produced zero candidates",
		zap.String("url", pageURL))
	return nil, nil
}

// structuralSelectors is the priority list of containers that look like
// individual newsletter stories.
var structuralSelectors = []string{
	"article",
	".story",
	".newsletter-item",
	".post-content",
	".content-section",
	"[data-testid*=article]",
	"[id*=story]",
}

var titleSelectors = []string{"h1", "h2", "h3", "h4", ".title", ".headline", "strong", "b"}

// scanStructured walks the structural selector list and extracts one
// candidate per matched container. The first selector that produces
// candidates wins.
func (e *Extractor) scanStructured(doc *goquery.Document, pageURL string) []Candidate {
	var out []Candidate

	for _, selector := range structuralSelectors {
		sections := doc.Find(selector)
		if sections.Length() == 0 {
			continue
		}

		sections.EachWithBreak(func(_ int, section *goquery.Selection) bool {
			if c, ok := e.candidateFromSection(section, pageURL); ok {
				out = append(out, c)
			}
			// Buffer beyond the cap so the normalizer has duplicates
			// to discard.
			return len(out) < e.maxItems*2
		})

		if len(out) > 0 {
			break
		}
	}

	return out
}

func (e *Extractor) candidateFromSection(section *goquery.Selection, pageURL string) (Candidate, bool) {
	title := ""
	var titleElem *goquery.Selection

	for _, sel := range titleSelectors {
		elem := section.Find(sel).First()
		if elem.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(elem.Text())
		if text == "" {
			continue
		}
		if title == "" {
			title = text
			titleElem = elem
		}
		if len(text) > 20 {
			title = text
			titleElem = elem
			break
		}
	}
	if title == "" {
		return Candidate{}, false
	}

	// URL: first anchor in the section, or an ancestor anchor wrapping
	// the title element.
	link := section.Find("a[href]").First()
	if link.Length() == 0 && titleElem != nil {
		link = titleElem.Closest("a")
	}
	href := ""
	if link.Length() > 0 {
		href, _ = link.Attr("href")
	}
	itemURL := resolveHref(pageURL, href)

	sectionText := strings.TrimSpace(section.Text())
	summary := summaryFromSection(sectionText, title)
	duration := readingTime(sectionText)

	if itemURL == "" && summary == "" {
		return Candidate{}, false
	}

	return Candidate{
		Title:       cleanTitle(title),
		URL:         itemURL,
		Summary:     summary,
		ReadingTime: duration,
		RawExcerpt:  truncate(sectionText, 500),
	}, true
}

// scanExternalLinks enumerates anchors pointing off-site and treats the
// descriptive ones as stories, deriving context from ancestor text.
func (e *Extractor) scanExternalLinks(doc *goquery.Document, pageURL string) []Candidate {
	pageHost := hostOf(pageURL)
	var out []Candidate

	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		text := strings.TrimSpace(link.Text())

		if !isExternal(href, pageHost) || !isArticleLink(href, text) {
			return true
		}

		if c, ok := candidateFromLink(link, href, text); ok {
			out = append(out, c)
		}
		return len(out) < e.maxItems*2
	})

	return out
}

func candidateFromLink(link *goquery.Selection, href, text string) (Candidate, bool) {
	if len(text) <= 10 {
		return Candidate{}, false
	}

	// Walk up to three ancestor levels looking for surrounding context
	// meaningfully longer than the link text itself.
	context := ""
	parent := link.Parent()
	for i := 0; i < 3 && parent.Length() > 0; i++ {
		context = strings.TrimSpace(parent.Text())
		if len(context) > len(text)+50 {
			break
		}
		parent = parent.Parent()
	}

	return Candidate{
		Title:       cleanTitle(text),
		URL:         href,
		Summary:     summaryFromContext(context, text),
		ReadingTime: readingTime(context),
		RawExcerpt:  truncate(context, 500),
	}, true
}

var textPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[A-Z][^.!?]*\(\d+\s*minute?s?\s*read\)`),
	regexp.MustCompile(`[A-Z][^.!?]*(?:minute read|min read)`),
	regexp.MustCompile(`(https?://\S+)\s*[–-]\s*([^.!?\n]+)`),
}

// scanTextPatterns is the last-resort scan over the rendered page text for
// "<title> (N minute read)" shapes and bare URLs followed by a description.
func (e *Extractor) scanTextPatterns(doc *goquery.Document, _ string) []Candidate {
	text := doc.Text()
	var out []Candidate

	for _, pattern := range textPatterns {
		matches := pattern.FindAllStringSubmatch(text, e.maxItems)
		for _, m := range matches {
			c, ok := candidateFromMatch(m)
			if !ok {
				continue
			}
			out = append(out, c)
			if len(out) >= e.maxItems {
				return out
			}
		}
	}

	return out
}

func candidateFromMatch(m []string) (Candidate, bool) {
	full := m[0]
	title := full
	itemURL := ""
	if len(m) > 2 && strings.HasPrefix(m[1], "http") {
		// URL-dash-description shape: the description is the title.
		itemURL = m[1]
		title = strings.TrimSpace(m[2])
	} else if idx := strings.Index(full, "("); idx > 0 {
		title = strings.TrimSpace(full[:idx])
	}

	title = cleanTitle(title)
	if title == "" {
		return Candidate{}, false
	}

	return Candidate{
		Title:       title,
		URL:         itemURL,
		ReadingTime: readingTime(full),
		RawExcerpt:  full,
	}, true
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func isExternal(href, pageHost string) bool {
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return false
	}
	h := hostOf(href)
	return h != "" && pageHost != "" && h != pageHost
}

// resolveHref turns a section href into an absolute URL, resolving
// root-relative paths against the page's site root.
func resolveHref(pageURL, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "/") {
		u, err := url.Parse(pageURL)
		if err != nil {
			return ""
		}
		return u.Scheme + "://" + u.Host + href
	}
	return ""
}
