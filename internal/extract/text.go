package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// linkExclusions knocks out navigation, legal, social and unsubscribe links.
// Matched as lowercase substrings against both the href and the link text.
var linkExclusions = []string{
	"unsubscribe", "subscribe", "footer", "header",
	"privacy", "terms", "about", "contact", "sponsor",
	"advertise", "jobs", "careers", "support",
	"twitter.com", "linkedin.com", "facebook.com",
	"instagram.com", "youtube.com", "tiktok.com",
	"mailto:", "tel:", "javascript:",
}

// qualityDomains get a relaxed text-length bar: a short link text is still
// acceptable when the target is a known publication or code host.
var qualityDomains = []string{
	"github.com", "medium.com", "dev.to", "stackoverflow.com",
	"techcrunch.com", "theverge.com", "arstechnica.com", "wired.com",
	"engadget.com", "venturebeat.com", "hackernews", "reddit.com",
	"blog.", "docs.", "research.", "paper", "arxiv.org",
	"news.", "press.", "announce",
}

// boilerplatePhrases disqualify sentences from summaries.
var boilerplatePhrases = []string{"click here", "read more", "subscribe", "minute read"}

// isArticleLink filters anchors down to the ones that plausibly point at a
// story rather than site furniture.
func isArticleLink(href, text string) bool {
	hrefLower := strings.ToLower(href)
	textLower := strings.ToLower(text)

	for _, excl := range linkExclusions {
		if strings.Contains(hrefLower, excl) || strings.Contains(textLower, excl) {
			return false
		}
	}

	if len(text) < 15 {
		return false
	}

	for _, domain := range qualityDomains {
		if strings.Contains(hrefLower, domain) {
			return len(text) > 10
		}
	}

	return len(text) > 25 && strings.HasPrefix(href, "http") && strings.Contains(href, ".")
}

// summaryFromSection strips the title out of a section's text and keeps up
// to three clean sentences, capped at 300 characters.
func summaryFromSection(text, title string) string {
	text = strings.TrimSpace(strings.Replace(text, title, "", 1))

	var parts []string
	sentences := splitSentences(text)
	if len(sentences) > 4 {
		sentences = sentences[:4]
	}
	for _, s := range sentences {
		if len(s) <= 20 || hasBoilerplate(s) {
			continue
		}
		parts = append(parts, s)
		if len(strings.Join(parts, " ")) > 150 {
			break
		}
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}

	summary := strings.Join(parts, ". ")
	if len(summary) > 300 {
		return summary[:300] + "..."
	}
	return summary
}

// summaryFromContext takes the text after the link title inside its
// surrounding context and returns the first significant sentence.
func summaryFromContext(context, title string) string {
	_, after, found := strings.Cut(context, title)
	if !found {
		return ""
	}
	for _, s := range splitSentences(after) {
		if len(s) > 10 {
			return truncate(s, 200)
		}
	}
	return ""
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range strings.Split(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasBoilerplate(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

var readingTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+)\s*(?:minute|min)\s*read`),
	regexp.MustCompile(`(?i)read\s*(?:in\s*)?(\d+)\s*(?:minute|min)`),
	regexp.MustCompile(`(?i)(\d+)\s*(?:minute|min)`),
}

// readingTime pulls a free-text reading estimate like "4 minute read" out
// of surrounding text.
func readingTime(text string) string {
	for _, pattern := range readingTimePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return fmt.Sprintf("%s minute read", m[1])
		}
	}
	return ""
}

var (
	// \p{L}\p{N} rather than \w so accented titles survive cleaning
	unsafeTitleChars  = regexp.MustCompile(`[^\p{L}\p{N}_\s\-\(\):\.,!?]`)
	readingAnnotation = regexp.MustCompile(`(?i)\(\d+\s*(?:minute|min)\s*read\)`)
)

// cleanTitle strips unsafe characters and embedded reading-time annotations,
// then collapses whitespace.
func cleanTitle(title string) string {
	title = unsafeTitleChars.ReplaceAllString(title, "")
	title = readingAnnotation.ReplaceAllString(title, "")
	return strings.Join(strings.Fields(title), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
