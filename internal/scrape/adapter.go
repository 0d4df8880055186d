package scrape

import (
	"context"
	"strings"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

// PlatformAdapter translates one external platform's scraping API into the
// common RawMention shape. The collector depends only on this interface.
type PlatformAdapter interface {
	Name() string
	// Eligible reports whether the campaign carries the inputs this platform
	// needs. Ineligible platforms are skipped before invocation, not errored.
	Eligible(campaign *models.Campaign) bool
	Fetch(ctx context.Context, campaign *models.Campaign) ([]models.RawMention, error)
}

// firstKeyword returns the first non-empty keyword after trimming, or "".
func firstKeyword(keywords []string) string {
	for _, kw := range keywords {
		if trimmed := strings.TrimSpace(kw); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// cleanKeywords returns the trimmed, non-empty keywords in order.
func cleanKeywords(keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		if trimmed := strings.TrimSpace(kw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// cleanHandle strips a leading @ and surrounding whitespace.
func cleanHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
