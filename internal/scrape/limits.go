package scrape

import (
	"time"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

// Campaign settings override the configured defaults knob by knob.

func maxPosts(cfg *config.Config, campaign *models.Campaign) int {
	if campaign.Settings.MaxPosts > 0 {
		return campaign.Settings.MaxPosts
	}
	return cfg.MaxPosts
}

func maxComments(cfg *config.Config, campaign *models.Campaign) int {
	if campaign.Settings.MaxComments > 0 {
		return campaign.Settings.MaxComments
	}
	return cfg.MaxComments
}

func windowStart(cfg *config.Config, campaign *models.Campaign) time.Time {
	days := campaign.Settings.TimeWindow
	if days <= 0 {
		days = cfg.TimeWindowDay
	}
	return time.Now().AddDate(0, 0, -days)
}
