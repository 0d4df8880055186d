package models

import "encoding/json"

// Platform identifiers accepted in campaign submissions.
const (
	PlatformTwitter   = "twitter"
	PlatformInstagram = "instagram"
	PlatformReddit    = "reddit"
	PlatformTikTok    = "tiktok"
	PlatformFacebook  = "facebook"
)

// Sentiment labels attached by the enhancement stage.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Campaign is a user-defined monitoring request. It is immutable for the
// duration of one run and is never persisted server-side.
type Campaign struct {
	Name            string            `json:"name"`
	Keywords        []string          `json:"keywords"`
	Platforms       []string          `json:"platforms"`
	Settings        Settings          `json:"settings"`
	SocialHandles   map[string]string `json:"socialHandles,omitempty"`
	GenerateReport  *bool             `json:"generateReport,omitempty"`
	MockMode        bool              `json:"mockMode,omitempty"`
	Industry        string            `json:"industry,omitempty"`
	BrandKeywords   []string          `json:"brandKeywords,omitempty"`
	ProductKeywords []string          `json:"productKeywords,omitempty"`
	ExcludeKeywords []string          `json:"excludeKeywords,omitempty"`
}

// WantsReport reports whether report generation was requested. It defaults
// to true when the field was omitted from the submission.
func (c *Campaign) WantsReport() bool {
	return c.GenerateReport == nil || *c.GenerateReport
}

// Handle returns the configured social handle for a platform, or "".
func (c *Campaign) Handle(platform string) string {
	if c.SocialHandles == nil {
		return ""
	}
	return c.SocialHandles[platform]
}

// Settings holds the per-campaign numeric tuning knobs. Zero values mean
// "use the configured default".
type Settings struct {
	MaxPosts    int `json:"maxPosts,omitempty"`
	MaxComments int `json:"maxComments,omitempty"`
	TimeWindow  int `json:"timeWindow,omitempty"` // days
}

// RawMention is one provider record as returned by a platform adapter. The
// record shape varies by platform, so the provider fields are carried as an
// untyped map; the adapter that produced it owns it until normalization.
type RawMention struct {
	Platform string
	Fields   map[string]any
}

// NormalizedMention is the canonical mention record. Content and Author are
// always non-empty after normalization. Fields preserves every original
// provider field; on marshalling, the canonical fields win key collisions.
type NormalizedMention struct {
	Content  string
	Author   string
	Platform string
	Fields   map[string]any
}

// MarshalJSON emits the union of the original provider fields and the
// canonical fields, canonical taking precedence.
func (m NormalizedMention) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Fields)+3)
	for k, v := range m.Fields {
		out[k] = v
	}
	out["content"] = m.Content
	out["author"] = m.Author
	out["platform"] = m.Platform
	return json.Marshal(out)
}

// EnhancedMention is a normalized mention plus language-model metadata.
// When Error is true, Sentiment and SentimentScore are nil and Insights
// explains the failure; the underlying mention is never lost.
type EnhancedMention struct {
	NormalizedMention
	Sentiment         *string  `json:"sentiment"`
	SentimentScore    *float64 `json:"sentimentScore"`
	KeyTopics         []string `json:"keyTopics"`
	EngagementQuality string   `json:"engagementQuality"`
	Insights          string   `json:"insights"`
	Error             bool     `json:"error,omitempty"`
}

// MarshalJSON merges the normalized union with the enhancement fields.
func (m EnhancedMention) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Fields)+9)
	for k, v := range m.Fields {
		out[k] = v
	}
	out["content"] = m.Content
	out["author"] = m.Author
	out["platform"] = m.Platform
	out["sentiment"] = m.Sentiment
	out["sentimentScore"] = m.SentimentScore
	out["keyTopics"] = m.KeyTopics
	out["engagementQuality"] = m.EngagementQuality
	out["insights"] = m.Insights
	if m.Error {
		out["error"] = true
	}
	return json.Marshal(out)
}

// HashtagCount is one entry in the hashtag ranking.
type HashtagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// SentimentCounts is the aggregate sentiment tally. Mentions with a nil
// sentiment are counted as neutral here; their own field stays nil.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// AggregateResult holds summary statistics recomputed on every run.
type AggregateResult struct {
	TotalMentions   int             `json:"totalMentions"`
	PlatformCounts  map[string]int  `json:"platformCounts"`
	SentimentCounts SentimentCounts `json:"sentimentCounts"`
	TopHashtags     []HashtagCount  `json:"topHashtags"`
}

// Report section names, in response order.
const (
	ReportSummary         = "summary"
	ReportSentiment       = "sentiment"
	ReportTrends          = "trends"
	ReportRecommendations = "recommendations"
)

// ReportSections lists the four section names every report set carries.
var ReportSections = []string{ReportSummary, ReportSentiment, ReportTrends, ReportRecommendations}

// CampaignData is the data payload of a successful campaign response.
type CampaignData struct {
	TotalMentions int               `json:"totalMentions"`
	Mentions      []EnhancedMention `json:"mentions"`
	ProcessedData *AggregateResult  `json:"processedData"`
	Reports       map[string]string `json:"reports"`
	Errors        []string          `json:"errors,omitempty"`
}

// CampaignResponse is the outbound JSON envelope.
type CampaignResponse struct {
	Success    bool          `json:"success"`
	CampaignID string        `json:"campaignId"`
	Data       *CampaignData `json:"data"`
}
