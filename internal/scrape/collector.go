package scrape

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

// Collector fans a campaign out across the requested platform adapters
// concurrently. Every platform's outcome is settled independently: one
// platform failing or timing out never aborts the others.
type Collector struct {
	adapters map[string]PlatformAdapter
	timeout  time.Duration
}

// NewCollector wires the adapters by platform name.
func NewCollector(cfg *config.Config, adapters ...PlatformAdapter) *Collector {
	byName := make(map[string]PlatformAdapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &Collector{adapters: byName, timeout: cfg.PlatformTimeout}
}

// DefaultAdapters builds the standard adapter set against one provider client.
func DefaultAdapters(client *Client, cfg *config.Config) []PlatformAdapter {
	return []PlatformAdapter{
		NewTwitterAdapter(client, cfg),
		NewInstagramAdapter(client, cfg),
		NewRedditAdapter(client, cfg),
		NewTikTokAdapter(client, cfg),
		NewFacebookAdapter(client, cfg),
	}
}

type outcome struct {
	mentions  []models.RawMention
	err       error
	attempted bool
}

// Collect invokes one adapter per requested platform and merges the
// successful results with an ordered list of "{platform}: {message}" errors.
// Platforms whose required inputs are absent are skipped silently.
func (c *Collector) Collect(ctx context.Context, campaign *models.Campaign) ([]models.RawMention, []string) {
	slots := make([]outcome, len(campaign.Platforms))
	var wg sync.WaitGroup

	for i, name := range campaign.Platforms {
		adapter, ok := c.adapters[name]
		if !ok {
			slots[i] = outcome{err: fmt.Errorf("unsupported platform"), attempted: true}
			continue
		}
		if !adapter.Eligible(campaign) {
			logrus.Infof("Skipping %s: required input missing for this campaign", name)
			continue
		}

		slots[i].attempted = true
		wg.Add(1)
		go func(i int, adapter PlatformAdapter) {
			defer wg.Done()

			logrus.Infof("Collecting mentions from %s", adapter.Name())
			mentions, err := c.fetchWithTimeout(ctx, adapter, campaign)
			if err != nil {
				logrus.Errorf("Collection from %s failed: %v", adapter.Name(), err)
				slots[i].err = err
				return
			}

			logrus.Infof("Collected %d raw mentions from %s", len(mentions), adapter.Name())
			slots[i].mentions = mentions
		}(i, adapter)
	}

	wg.Wait()

	var all []models.RawMention
	var errs []string
	for i, name := range campaign.Platforms {
		if !slots[i].attempted {
			continue
		}
		if slots[i].err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, slots[i].err))
			continue
		}
		all = append(all, slots[i].mentions...)
	}

	return all, errs
}

// fetchWithTimeout races the adapter call against the per-platform timer.
// A late result from the in-flight call is discarded, not observed.
func (c *Collector) fetchWithTimeout(ctx context.Context, adapter PlatformAdapter, campaign *models.Campaign) ([]models.RawMention, error) {
	done := make(chan outcome, 1)

	go func() {
		mentions, err := adapter.Fetch(ctx, campaign)
		done <- outcome{mentions: mentions, err: err}
	}()

	select {
	case o := <-done:
		return o.mentions, o.err
	case <-time.After(c.timeout):
		return nil, newError(KindTimeout, "timed out after %v: try reducing maxPosts or the time window", c.timeout)
	case <-ctx.Done():
		return nil, newError(KindTimeout, "collection cancelled: %v", ctx.Err())
	}
}
