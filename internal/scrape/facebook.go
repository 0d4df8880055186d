package scrape

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

const (
	facebookPostsActor  = "apify~facebook-posts-scraper"
	facebookSearchActor = "apify~facebook-search-scraper"
)

// FacebookAdapter scrapes a page when a handle is configured, or keyword
// search results otherwise. Posts fan out into one raw mention per comment.
type FacebookAdapter struct {
	client *Client
	cfg    *config.Config
}

func NewFacebookAdapter(client *Client, cfg *config.Config) *FacebookAdapter {
	return &FacebookAdapter{client: client, cfg: cfg}
}

func (a *FacebookAdapter) Name() string {
	return models.PlatformFacebook
}

func (a *FacebookAdapter) Eligible(campaign *models.Campaign) bool {
	return cleanHandle(campaign.Handle(models.PlatformFacebook)) != "" || firstKeyword(campaign.Keywords) != ""
}

func (a *FacebookAdapter) Fetch(ctx context.Context, campaign *models.Campaign) ([]models.RawMention, error) {
	handle := cleanHandle(campaign.Handle(models.PlatformFacebook))
	keyword := firstKeyword(campaign.Keywords)

	if handle == "" && keyword == "" {
		logrus.Debug("Facebook skipped: no handle and no usable keyword")
		return nil, nil
	}

	limit := maxPosts(a.cfg, campaign)

	var actor string
	var input func(chunk int) any
	if handle != "" {
		actor = facebookPostsActor
		logrus.Infof("Scraping Facebook page %s", handle)
		input = func(chunk int) any {
			return map[string]any{
				"startUrls":    []map[string]string{{"url": fmt.Sprintf("https://www.facebook.com/%s", handle)}},
				"resultsLimit": chunk,
				"commentsMode": "RANKED_THREADED",
				"maxComments":  maxComments(a.cfg, campaign),
			}
		}
	} else {
		actor = facebookSearchActor
		logrus.Infof("Searching Facebook for %q", keyword)
		input = func(chunk int) any {
			return map[string]any{
				"query":        keyword,
				"resultsLimit": chunk,
				"maxComments":  maxComments(a.cfg, campaign),
			}
		}
	}

	items, err := a.client.RunActorChunked(ctx, actor, limit, input)
	if err != nil {
		return nil, fmt.Errorf("facebook scrape failed: %w", err)
	}

	return expandComments(items, models.PlatformFacebook, "comments", commentFieldMap{
		text:   "text",
		author: "profileName",
	}, maxComments(a.cfg, campaign)), nil
}
