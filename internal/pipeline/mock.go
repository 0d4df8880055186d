package pipeline

import (
	"fmt"
	"math/rand"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

// Mock mode replaces the collection and reporting stages with synthetic but
// structurally valid data so the pipeline can be exercised without any
// external calls.

var mockSentiments = []string{
	models.SentimentPositive,
	models.SentimentNeutral,
	models.SentimentNegative,
}

var mockTemplates = []string{
	"Just tried %s and it exceeded my expectations #%s #review",
	"Anyone else having trouble with %s lately? #%s",
	"Honest thoughts on %s after a month of daily use #%s #feedback",
	"%s keeps showing up on my feed, is it worth the hype? #%s",
	"Comparing %s against the alternatives this week #%s #comparison",
}

// MockMentions generates maxPosts synthetic enhanced mentions, alternating
// across the campaign's platforms in request order. Every mention carries a
// non-nil sentiment and non-empty content.
func MockMentions(campaign *models.Campaign, cfg *config.Config) []models.EnhancedMention {
	if len(campaign.Platforms) == 0 {
		return nil
	}

	total := maxPostsFor(campaign, cfg)
	subject := campaign.Name
	if kw := firstNonEmpty(campaign.Keywords); kw != "" {
		subject = kw
	}
	tag := sanitizeTag(subject)

	rng := rand.New(rand.NewSource(42))
	mentions := make([]models.EnhancedMention, 0, total)

	for i := 0; i < total; i++ {
		platform := campaign.Platforms[i%len(campaign.Platforms)]
		sentiment := mockSentiments[i%len(mockSentiments)]
		score := 0.35 + rng.Float64()*0.6
		content := fmt.Sprintf(mockTemplates[i%len(mockTemplates)], subject, tag)
		author := fmt.Sprintf("mock_user_%d", i+1)

		mentions = append(mentions, models.EnhancedMention{
			NormalizedMention: models.NormalizedMention{
				Content:  content,
				Author:   author,
				Platform: platform,
				Fields: map[string]any{
					"id":   fmt.Sprintf("mock_%s_%d", platform, i+1),
					"mock": true,
				},
			},
			Sentiment:         &sentiment,
			SentimentScore:    &score,
			KeyTopics:         []string{subject, "customer feedback"},
			EngagementQuality: []string{"low", "medium", "high"}[i%3],
			Insights:          fmt.Sprintf("Synthetic %s mention generated for testing", platform),
		})
	}

	return mentions
}

// MockReports returns all four report sections filled from the aggregate.
func MockReports(campaign *models.Campaign, agg *models.AggregateResult) map[string]string {
	return map[string]string{
		models.ReportSummary: fmt.Sprintf(
			"Mock summary for %q: %d mentions collected across %d platforms.",
			campaign.Name, agg.TotalMentions, len(agg.PlatformCounts)),
		models.ReportSentiment: fmt.Sprintf(
			"Mock sentiment breakdown: %d positive, %d negative, %d neutral.",
			agg.SentimentCounts.Positive, agg.SentimentCounts.Negative, agg.SentimentCounts.Neutral),
		models.ReportTrends: fmt.Sprintf(
			"Mock trends: %d distinct hashtags observed in the sample.",
			len(agg.TopHashtags)),
		models.ReportRecommendations: fmt.Sprintf(
			"Mock recommendations: continue monitoring %q and review flagged mentions.",
			campaign.Name),
	}
}

func maxPostsFor(campaign *models.Campaign, cfg *config.Config) int {
	if campaign.Settings.MaxPosts > 0 {
		return campaign.Settings.MaxPosts
	}
	return cfg.MaxPosts
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func sanitizeTag(s string) string {
	var b []rune
	for _, r := range s {
		if r == ' ' {
			continue
		}
		b = append(b, r)
	}
	if len(b) == 0 {
		return "brand"
	}
	return string(b)
}
