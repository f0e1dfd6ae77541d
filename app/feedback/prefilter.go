package feedback

import (
	"fmt"
	"strings"
)

// nonFeedbackPatterns are substrings whose presence in the subject, body or
// sender marks a message as marketing, notification or transactional mail.
// Matching is case-insensitive.
var nonFeedbackPatterns = []string{
	"unsubscribe",
	"newsletter",
	"promotion",
	"sale",
	"discount",
	"offer",
	"marketing",
	"advertisement",
	"spam",
	"noreply",
	"no-reply",
	"password reset",
	"verify",
	"confirmation",
	"welcome to",
	"thank you for signing up",
	"activate your account",
	"privacy policy",
	"terms of service",
	"terms & conditions",
	"pinterest.com",
	"facebook.com",
	"twitter.com",
	"instagram.com",
	"linkedin.com",
	"youtube.com",
	"tiktok.com",
	"to view this content",
	"open the following url",
	"help centre",
	"support@",
	"notifications@",
}

const (
	maxURLCount          = 5
	linkDominantURLCount = 3
	minProseLength       = 200
)

type PreFilter struct{}

func NewPreFilter() *PreFilter {
	return &PreFilter{}
}

// Run reports whether the item is obviously not feedback, with a
// human-readable reason. It is pure and safe to call concurrently; empty
// fields are treated as empty strings.
func (f *PreFilter) Run(item RawItem) (bool, string) {
	body := item.Text()
	haystack := strings.ToLower(item.Subject + " " + body + " " + item.From)

	for _, pattern := range nonFeedbackPatterns {
		if strings.Contains(haystack, pattern) {
			return true, fmt.Sprintf("Matched non-feedback pattern: contains '%s'", pattern)
		}
	}

	urlCount := countURLs(body)
	if urlCount > maxURLCount {
		return true, fmt.Sprintf("Excessive URLs: %d links in body", urlCount)
	}

	if urlCount > linkDominantURLCount {
		prose := strings.TrimSpace(stripURLs(body))
		if len(prose) < minProseLength {
			return true, fmt.Sprintf("Link-dominant message: %d links with only %d characters of text", urlCount, len(prose))
		}
	}

	return false, ""
}

func countURLs(text string) int {
	lower := strings.ToLower(text)
	return strings.Count(lower, "http://") + strings.Count(lower, "https://")
}

// stripURLs removes every http(s) URL from the text. A URL runs from its
// scheme prefix to the next whitespace character.
func stripURLs(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	rest := text
	for {
		lower := strings.ToLower(rest)
		start := strings.Index(lower, "http://")
		if s := strings.Index(lower, "https://"); s != -1 && (start == -1 || s < start) {
			start = s
		}
		if start == -1 {
			sb.WriteString(rest)
			return sb.String()
		}

		sb.WriteString(rest[:start])
		end := strings.IndexFunc(rest[start:], func(r rune) bool {
			return r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
		if end == -1 {
			return sb.String()
		}
		rest = rest[start+end:]
	}
}
