package scrape

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

const twitterActor = "apidojo~tweet-scraper"

// Twitter replies are fetched in a second stage keyed by the conversation
// ids extracted from the first-stage posts.
const twitterMaxConversations = 20

// TwitterAdapter scrapes tweets by keyword, then fetches replies for the
// conversations found in the first stage.
type TwitterAdapter struct {
	client *Client
	cfg    *config.Config
}

func NewTwitterAdapter(client *Client, cfg *config.Config) *TwitterAdapter {
	return &TwitterAdapter{client: client, cfg: cfg}
}

func (t *TwitterAdapter) Name() string {
	return models.PlatformTwitter
}

func (t *TwitterAdapter) Eligible(campaign *models.Campaign) bool {
	return firstKeyword(campaign.Keywords) != ""
}

func (t *TwitterAdapter) Fetch(ctx context.Context, campaign *models.Campaign) ([]models.RawMention, error) {
	if !t.Eligible(campaign) {
		return nil, nil
	}

	keywords := cleanKeywords(campaign.Keywords)
	limit := maxPosts(t.cfg, campaign)
	since := windowStart(t.cfg, campaign)

	items, err := t.client.RunActorChunked(ctx, twitterActor, limit, func(chunk int) any {
		return map[string]any{
			"searchTerms": keywords,
			"maxItems":    chunk,
			"sort":        "Latest",
			"start":       since.Format("2006-01-02"),
		}
	})
	if err != nil {
		return nil, fmt.Errorf("twitter search failed: %w", err)
	}

	mentions := make([]models.RawMention, 0, len(items))
	for _, item := range items {
		mentions = append(mentions, models.RawMention{Platform: models.PlatformTwitter, Fields: item})
	}

	conversationIDs := extractConversationIDs(items)
	if len(conversationIDs) == 0 {
		logrus.Debugf("No Twitter conversation ids found, returning %d first-stage posts", len(mentions))
		return mentions, nil
	}

	logrus.Infof("Fetching Twitter replies for %d conversations", len(conversationIDs))
	replies, err := t.client.RunActor(ctx, twitterActor, map[string]any{
		"conversationIds": conversationIDs,
		"maxItems":        limit,
	})
	if err != nil {
		// Replies are additive; the first-stage posts are still useful.
		logrus.Warnf("Twitter reply fetch failed, keeping first-stage posts: %v", err)
		return mentions, nil
	}

	for _, item := range replies {
		mentions = append(mentions, models.RawMention{Platform: models.PlatformTwitter, Fields: item})
	}

	return mentions, nil
}

func extractConversationIDs(items []map[string]any) []string {
	seen := make(map[string]bool)
	var ids []string

	for _, item := range items {
		id := stringField(item, "conversationId")
		if id == "" {
			id = stringField(item, "conversation_id")
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		if len(ids) >= twitterMaxConversations {
			break
		}
	}

	return ids
}

func stringField(item map[string]any, key string) string {
	if v, ok := item[key].(string); ok {
		return v
	}
	return ""
}
