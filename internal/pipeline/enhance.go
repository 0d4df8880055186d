package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/llm"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

// Enhancer attaches sentiment, topics, and engagement-quality labels to
// normalized mentions via batched language-model calls. A batch that fails,
// at transport or parse level, is marked per mention and never dropped: the
// output always has the same length and order as the input.
type Enhancer struct {
	model     llm.Completer
	batchSize int
	timeout   time.Duration
}

func NewEnhancer(model llm.Completer, cfg *config.Config) *Enhancer {
	return &Enhancer{
		model:     model,
		batchSize: cfg.EnhanceBatch,
		timeout:   cfg.EnhanceTimeout,
	}
}

// Enhance processes the mentions in fixed-size batches. Campaign context
// (brand, industry, keyword groups) only shapes the prompts.
func (e *Enhancer) Enhance(ctx context.Context, mentions []models.NormalizedMention, campaign *models.Campaign) []models.EnhancedMention {
	out := make([]models.EnhancedMention, 0, len(mentions))

	for start := 0; start < len(mentions); start += e.batchSize {
		end := start + e.batchSize
		if end > len(mentions) {
			end = len(mentions)
		}
		out = append(out, e.enhanceBatch(ctx, mentions[start:end], campaign)...)
	}

	return out
}

func (e *Enhancer) enhanceBatch(ctx context.Context, batch []models.NormalizedMention, campaign *models.Campaign) []models.EnhancedMention {
	raw, err := e.model.Complete(ctx, enhanceSystemPrompt, buildEnhancePrompt(batch, campaign), e.timeout)
	if err != nil {
		logrus.Errorf("Enhancement batch of %d failed at transport: %v", len(batch), err)
		return failBatch(batch, fmt.Sprintf("enhancement unavailable: %v", err))
	}

	items, step, err := ParseModelArray(raw)
	if err != nil {
		logrus.Errorf("Enhancement batch of %d returned unparseable output: %v", len(batch), err)
		return failBatch(batch, "enhancement failed: model returned an unparseable response")
	}
	if step != ParseDirect {
		logrus.Warnf("Enhancement response recovered via %s repair", step)
	}

	// Model output element i maps to input mention i. Identity fields are
	// reasserted from the input so a misbehaving response can at worst
	// attach wrong labels, never corrupt the mention itself.
	out := make([]models.EnhancedMention, len(batch))
	for i, mention := range batch {
		if i >= len(items) {
			out[i] = failedMention(mention, "enhancement failed: model response was missing this entry")
			continue
		}
		out[i] = applyEnhancement(mention, items[i])
	}
	return out
}

func applyEnhancement(mention models.NormalizedMention, item map[string]any) models.EnhancedMention {
	enhanced := models.EnhancedMention{NormalizedMention: mention}

	if label, ok := item["sentiment"].(string); ok {
		label = strings.ToLower(strings.TrimSpace(label))
		switch label {
		case models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral:
		default:
			label = models.SentimentNeutral
		}
		enhanced.Sentiment = &label
	}

	if score, ok := item["sentimentScore"].(float64); ok {
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		enhanced.SentimentScore = &score
	}

	if topics, ok := item["keyTopics"].([]any); ok {
		for _, t := range topics {
			if s, ok := t.(string); ok && strings.TrimSpace(s) != "" {
				enhanced.KeyTopics = append(enhanced.KeyTopics, strings.TrimSpace(s))
			}
		}
	}

	quality, _ := item["engagementQuality"].(string)
	quality = strings.ToLower(strings.TrimSpace(quality))
	switch quality {
	case "low", "medium", "high":
		enhanced.EngagementQuality = quality
	default:
		enhanced.EngagementQuality = "medium"
	}

	if insights, ok := item["insights"].(string); ok {
		enhanced.Insights = insights
	}

	return enhanced
}

func failBatch(batch []models.NormalizedMention, reason string) []models.EnhancedMention {
	out := make([]models.EnhancedMention, len(batch))
	for i, mention := range batch {
		out[i] = failedMention(mention, reason)
	}
	return out
}

func failedMention(mention models.NormalizedMention, reason string) models.EnhancedMention {
	return models.EnhancedMention{
		NormalizedMention: mention,
		Sentiment:         nil,
		SentimentScore:    nil,
		EngagementQuality: "low",
		Insights:          reason,
		Error:             true,
	}
}

const enhanceSystemPrompt = `You are a social media analyst. You label social mentions with sentiment and topics. Always answer with a raw JSON array and nothing else.`

func buildEnhancePrompt(batch []models.NormalizedMention, campaign *models.Campaign) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Brand: %s\n", campaign.Name)
	if campaign.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", campaign.Industry)
	}
	if len(campaign.BrandKeywords) > 0 {
		fmt.Fprintf(&b, "Brand keywords: %s\n", strings.Join(campaign.BrandKeywords, ", "))
	}
	if len(campaign.ProductKeywords) > 0 {
		fmt.Fprintf(&b, "Product keywords: %s\n", strings.Join(campaign.ProductKeywords, ", "))
	}
	if len(campaign.ExcludeKeywords) > 0 {
		fmt.Fprintf(&b, "Ignore mentions about: %s\n", strings.Join(campaign.ExcludeKeywords, ", "))
	}

	fmt.Fprintf(&b, "\nAnalyze the following %d mentions.\n", len(batch))
	for i, mention := range batch {
		fmt.Fprintf(&b, "\n%d. [%s] %s: %s\n", i+1, mention.Platform, mention.Author, clip(mention.Content, 600))
	}

	b.WriteString(`
Return a JSON array with exactly one object per mention, in the same order:
[{"sentiment": "positive|negative|neutral", "sentimentScore": 0.0-1.0, "keyTopics": ["topic"], "engagementQuality": "low|medium|high", "insights": "one sentence"}]`)

	return b.String()
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
