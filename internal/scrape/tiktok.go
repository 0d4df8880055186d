package scrape

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

const tiktokActor = "clockworks~tiktok-scraper"

// TikTokAdapter scrapes a profile when a handle is configured, or hashtag
// results for the first usable keyword otherwise. Videos fan out into one
// raw mention per comment.
type TikTokAdapter struct {
	client *Client
	cfg    *config.Config
}

func NewTikTokAdapter(client *Client, cfg *config.Config) *TikTokAdapter {
	return &TikTokAdapter{client: client, cfg: cfg}
}

func (a *TikTokAdapter) Name() string {
	return models.PlatformTikTok
}

func (a *TikTokAdapter) Eligible(campaign *models.Campaign) bool {
	return cleanHandle(campaign.Handle(models.PlatformTikTok)) != "" || firstKeyword(campaign.Keywords) != ""
}

func (a *TikTokAdapter) Fetch(ctx context.Context, campaign *models.Campaign) ([]models.RawMention, error) {
	handle := cleanHandle(campaign.Handle(models.PlatformTikTok))
	keyword := firstKeyword(campaign.Keywords)

	if handle == "" && keyword == "" {
		logrus.Debug("TikTok skipped: no handle and no usable keyword")
		return nil, nil
	}

	limit := maxPosts(a.cfg, campaign)

	var input func(chunk int) any
	if handle != "" {
		logrus.Infof("Scraping TikTok profile @%s", handle)
		input = func(chunk int) any {
			return map[string]any{
				"profiles":        []string{handle},
				"resultsPerPage":  chunk,
				"shouldDownload":  false,
				"commentsPerPost": maxComments(a.cfg, campaign),
			}
		}
	} else {
		logrus.Infof("Scraping TikTok hashtag #%s", hashtagForm(keyword))
		input = func(chunk int) any {
			return map[string]any{
				"hashtags":        []string{hashtagForm(keyword)},
				"resultsPerPage":  chunk,
				"shouldDownload":  false,
				"commentsPerPost": maxComments(a.cfg, campaign),
			}
		}
	}

	items, err := a.client.RunActorChunked(ctx, tiktokActor, limit, input)
	if err != nil {
		return nil, fmt.Errorf("tiktok scrape failed: %w", err)
	}

	return expandComments(items, models.PlatformTikTok, "comments", commentFieldMap{
		text:   "text",
		author: "uniqueId",
	}, maxComments(a.cfg, campaign)), nil
}
