package scrape

import (
	"context"
	"fmt"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

const redditActor = "trudax~reddit-scraper-lite"

// RedditAdapter searches Reddit posts by keyword. Reddit results come back
// as flat post records, so there is no comment fan-out here.
type RedditAdapter struct {
	client *Client
	cfg    *config.Config
}

func NewRedditAdapter(client *Client, cfg *config.Config) *RedditAdapter {
	return &RedditAdapter{client: client, cfg: cfg}
}

func (a *RedditAdapter) Name() string {
	return models.PlatformReddit
}

func (a *RedditAdapter) Eligible(campaign *models.Campaign) bool {
	return firstKeyword(campaign.Keywords) != ""
}

func (a *RedditAdapter) Fetch(ctx context.Context, campaign *models.Campaign) ([]models.RawMention, error) {
	if !a.Eligible(campaign) {
		return nil, nil
	}

	keywords := cleanKeywords(campaign.Keywords)
	limit := maxPosts(a.cfg, campaign)

	items, err := a.client.RunActorChunked(ctx, redditActor, limit, func(chunk int) any {
		return map[string]any{
			"searches":     keywords,
			"maxItems":     chunk,
			"sort":         "new",
			"maxComments":  maxComments(a.cfg, campaign),
			"searchPosts":  true,
			"skipComments": false,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("reddit scrape failed: %w", err)
	}

	mentions := make([]models.RawMention, 0, len(items))
	for _, item := range items {
		mentions = append(mentions, models.RawMention{Platform: models.PlatformReddit, Fields: item})
	}

	return mentions, nil
}
