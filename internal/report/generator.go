package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/llm"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

// Sampling bounds for the mentions quoted inside report prompts. Mentions
// outside the length bounds stay in the aggregate, they just aren't quoted.
const (
	sampleSize       = 8
	samplePerBucket  = 2
	sampleMinContent = 10
	sampleMaxContent = 500
)

// Generator produces the four narrative report sections. Each section is
// generated independently: a model failure for one section substitutes a
// deterministic fallback without touching the others.
type Generator struct {
	model   llm.Completer
	timeout time.Duration
}

func NewGenerator(model llm.Completer, cfg *config.Config) *Generator {
	return &Generator{model: model, timeout: cfg.ReportTimeout}
}

// Generate returns all four sections plus an error entry per section that
// fell back. Zero collected mentions still produce well-formed reports.
func (g *Generator) Generate(ctx context.Context, campaign *models.Campaign, agg *models.AggregateResult, mentions []models.EnhancedMention) (map[string]string, []string) {
	sample := sampleMentions(mentions)
	reports := make(map[string]string, len(models.ReportSections))
	var errs []string

	for _, section := range models.ReportSections {
		prompt := buildSectionPrompt(section, campaign, agg, sample)

		text, err := g.model.Complete(ctx, reportSystemPrompt, prompt, g.timeout)
		if err != nil || strings.TrimSpace(text) == "" {
			if err == nil {
				err = fmt.Errorf("model returned an empty section")
			}
			logrus.Errorf("Report section %s failed, using fallback: %v", section, err)
			reports[section] = fallbackSection(section, campaign, agg)
			errs = append(errs, fmt.Sprintf("reports.%s: %v (fallback used)", section, err))
			continue
		}

		reports[section] = strings.TrimSpace(text)
	}

	return reports, errs
}

// sampleMentions draws up to 8 mentions balanced across the sentiment
// labels: two each of positive, negative, neutral, and unlabeled, backfilled
// from the remaining pool when a bucket runs short.
func sampleMentions(mentions []models.EnhancedMention) []models.EnhancedMention {
	var pool []models.EnhancedMention
	for _, m := range mentions {
		if len(m.Content) < sampleMinContent || len(m.Content) > sampleMaxContent {
			continue
		}
		pool = append(pool, m)
	}

	buckets := map[string][]int{}
	for i, m := range pool {
		key := "unlabeled"
		if m.Sentiment != nil {
			key = *m.Sentiment
		}
		buckets[key] = append(buckets[key], i)
	}

	picked := make(map[int]bool)
	var sample []models.EnhancedMention
	for _, key := range []string{models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral, "unlabeled"} {
		for n, i := range buckets[key] {
			if n >= samplePerBucket {
				break
			}
			picked[i] = true
			sample = append(sample, pool[i])
		}
	}

	// Backfill from the remaining pool when buckets run short.
	for i, m := range pool {
		if len(sample) >= sampleSize {
			break
		}
		if !picked[i] {
			picked[i] = true
			sample = append(sample, m)
		}
	}

	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	return sample
}

const reportSystemPrompt = `You are a social listening analyst writing concise report sections for a brand-monitoring dashboard. Write plain prose, no markdown headers.`

func buildSectionPrompt(section string, campaign *models.Campaign, agg *models.AggregateResult, sample []models.EnhancedMention) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Campaign: %s\n", campaign.Name)
	fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(campaign.Keywords, ", "))
	fmt.Fprintf(&b, "Time range: last %d days\n", timeWindowDays(campaign))
	fmt.Fprintf(&b, "Total mentions: %d\n", agg.TotalMentions)
	fmt.Fprintf(&b, "Platforms: %s\n", formatCounts(agg.PlatformCounts))
	fmt.Fprintf(&b, "Sentiment: %d positive, %d negative, %d neutral\n",
		agg.SentimentCounts.Positive, agg.SentimentCounts.Negative, agg.SentimentCounts.Neutral)
	if len(agg.TopHashtags) > 0 {
		tags := make([]string, 0, len(agg.TopHashtags))
		for _, h := range agg.TopHashtags {
			tags = append(tags, fmt.Sprintf("#%s (%d)", h.Tag, h.Count))
		}
		fmt.Fprintf(&b, "Top hashtags: %s\n", strings.Join(tags, ", "))
	}

	if len(sample) > 0 {
		b.WriteString("\nSample mentions:\n")
		for _, m := range sample {
			label := "unlabeled"
			if m.Sentiment != nil {
				label = *m.Sentiment
			}
			fmt.Fprintf(&b, "- [%s, %s] %s: %s\n", m.Platform, label, m.Author, m.Content)
		}
	}

	b.WriteString("\n")
	switch section {
	case models.ReportSummary:
		b.WriteString("Write an executive summary of this monitoring period in 3-5 sentences.")
	case models.ReportSentiment:
		b.WriteString("Write a sentiment analysis of this period: what drives the positive and negative reactions, in 3-5 sentences.")
	case models.ReportTrends:
		b.WriteString("Write a trends analysis: emerging topics, hashtags, and platform dynamics, in 3-5 sentences.")
	case models.ReportRecommendations:
		b.WriteString("Write 3-5 actionable recommendations for the brand team based on this data.")
	}

	return b.String()
}

// fallbackSection builds a deterministic section from the aggregate's
// numeric fields alone.
func fallbackSection(section string, campaign *models.Campaign, agg *models.AggregateResult) string {
	switch section {
	case models.ReportSummary:
		return fmt.Sprintf(
			"Campaign %q collected %d mentions across %d platforms: %s.",
			campaign.Name, agg.TotalMentions, len(agg.PlatformCounts), formatCounts(agg.PlatformCounts))
	case models.ReportSentiment:
		return fmt.Sprintf(
			"Sentiment distribution: %d positive, %d negative, %d neutral out of %d mentions.",
			agg.SentimentCounts.Positive, agg.SentimentCounts.Negative, agg.SentimentCounts.Neutral, agg.TotalMentions)
	case models.ReportTrends:
		if len(agg.TopHashtags) == 0 {
			return "No hashtags were observed in the collected mentions during this period."
		}
		top := agg.TopHashtags
		if len(top) > 5 {
			top = top[:5]
		}
		tags := make([]string, 0, len(top))
		for _, h := range top {
			tags = append(tags, fmt.Sprintf("#%s (%d)", h.Tag, h.Count))
		}
		return fmt.Sprintf("Leading hashtags this period: %s.", strings.Join(tags, ", "))
	case models.ReportRecommendations:
		return fmt.Sprintf(
			"Review the %d collected mentions, prioritizing the %d negative ones, and verify coverage across all configured platforms.",
			agg.TotalMentions, agg.SentimentCounts.Negative)
	default:
		return fmt.Sprintf("Section %q is not available for this run.", section)
	}
}

func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s (%d)", k, counts[k]))
	}
	return strings.Join(parts, ", ")
}

func timeWindowDays(campaign *models.Campaign) int {
	if campaign.Settings.TimeWindow > 0 {
		return campaign.Settings.TimeWindow
	}
	return 7
}
