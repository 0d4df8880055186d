package pipeline

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/report"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/scrape"
)

// Runner executes the full pipeline for one campaign: collect, normalize,
// enhance, aggregate, report. Stage failures accumulate in the returned
// errors list; the pipeline never aborts on partial failure.
type Runner struct {
	cfg       *config.Config
	collector *scrape.Collector
	enhancer  *Enhancer
	reports   *report.Generator
}

func NewRunner(cfg *config.Config, collector *scrape.Collector, enhancer *Enhancer, reports *report.Generator) *Runner {
	return &Runner{cfg: cfg, collector: collector, enhancer: enhancer, reports: reports}
}

// Run processes one campaign from scratch. Mock mode swaps the collection
// and reporting stages for synthetic generators, skipping all external calls.
func (r *Runner) Run(ctx context.Context, campaign *models.Campaign) *models.CampaignData {
	if campaign.MockMode || r.cfg.MockMode {
		return r.runMock(campaign)
	}

	raw, errs := r.collector.Collect(ctx, campaign)
	logrus.Infof("Collected %d raw mentions (%d platform errors)", len(raw), len(errs))

	normalized := NormalizeAll(raw)

	var enhanced []models.EnhancedMention
	if len(normalized) > 0 {
		enhanced = r.enhancer.Enhance(ctx, normalized, campaign)
	}

	agg := Aggregate(enhanced)

	var reports map[string]string
	if campaign.WantsReport() {
		var reportErrs []string
		reports, reportErrs = r.reports.Generate(ctx, campaign, agg, enhanced)
		errs = append(errs, reportErrs...)
	}

	return &models.CampaignData{
		TotalMentions: agg.TotalMentions,
		Mentions:      enhanced,
		ProcessedData: agg,
		Reports:       reports,
		Errors:        errs,
	}
}

func (r *Runner) runMock(campaign *models.Campaign) *models.CampaignData {
	logrus.Info("Mock mode enabled: generating synthetic campaign data")

	mentions := MockMentions(campaign, r.cfg)
	agg := Aggregate(mentions)

	var reports map[string]string
	if campaign.WantsReport() {
		reports = MockReports(campaign, agg)
	}

	return &models.CampaignData{
		TotalMentions: agg.TotalMentions,
		Mentions:      mentions,
		ProcessedData: agg,
		Reports:       reports,
	}
}
