package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

const instagramActor = "apify~instagram-scraper"

// InstagramAdapter scrapes a configured profile when a handle is set, or
// hashtag results for the first usable keyword otherwise. Each scraped post
// fans out into one raw mention per comment; a post without comments yields
// a single bare-post mention.
type InstagramAdapter struct {
	client *Client
	cfg    *config.Config
}

func NewInstagramAdapter(client *Client, cfg *config.Config) *InstagramAdapter {
	return &InstagramAdapter{client: client, cfg: cfg}
}

func (a *InstagramAdapter) Name() string {
	return models.PlatformInstagram
}

func (a *InstagramAdapter) Eligible(campaign *models.Campaign) bool {
	return cleanHandle(campaign.Handle(models.PlatformInstagram)) != "" || firstKeyword(campaign.Keywords) != ""
}

func (a *InstagramAdapter) Fetch(ctx context.Context, campaign *models.Campaign) ([]models.RawMention, error) {
	handle := cleanHandle(campaign.Handle(models.PlatformInstagram))
	keyword := firstKeyword(campaign.Keywords)

	if handle == "" && keyword == "" {
		logrus.Debug("Instagram skipped: no handle and no usable keyword")
		return nil, nil
	}

	limit := maxPosts(a.cfg, campaign)

	var input func(chunk int) any
	if handle != "" {
		logrus.Infof("Scraping Instagram profile @%s", handle)
		input = func(chunk int) any {
			return map[string]any{
				"directUrls":   []string{fmt.Sprintf("https://www.instagram.com/%s/", handle)},
				"resultsType":  "posts",
				"resultsLimit": chunk,
			}
		}
	} else {
		logrus.Infof("Scraping Instagram hashtag #%s", hashtagForm(keyword))
		input = func(chunk int) any {
			return map[string]any{
				"search":       hashtagForm(keyword),
				"searchType":   "hashtag",
				"resultsType":  "posts",
				"resultsLimit": chunk,
			}
		}
	}

	items, err := a.client.RunActorChunked(ctx, instagramActor, limit, input)
	if err != nil {
		return nil, fmt.Errorf("instagram scrape failed: %w", err)
	}

	return expandComments(items, models.PlatformInstagram, "latestComments", commentFieldMap{
		text:   "text",
		author: "ownerUsername",
	}, maxComments(a.cfg, campaign)), nil
}

// hashtagForm collapses a keyword into the single token hashtag search wants.
func hashtagForm(keyword string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(keyword, "#"), " ", ""))
}
