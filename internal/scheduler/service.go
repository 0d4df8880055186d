package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/archive"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/notify"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/pipeline"
)

// Service re-runs the env-configured standing campaign on a cron schedule,
// emailing and archiving the results. Disabled when no schedule is set.
type Service struct {
	cfg      *config.Config
	runner   *pipeline.Runner
	notifier *notify.Service
	store    archive.Store
	cron     *cron.Cron
}

func NewService(cfg *config.Config, runner *pipeline.Runner, notifier *notify.Service, store archive.Store) *Service {
	return &Service{
		cfg:      cfg,
		runner:   runner,
		notifier: notifier,
		store:    store,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start registers the standing campaign with the cron runner.
func (s *Service) Start() error {
	if s.cfg.StandingSchedule == "" {
		logrus.Info("No standing schedule configured, scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.StandingSchedule, func() {
		logrus.Info("Starting scheduled standing-campaign run")
		if err := s.runStanding(); err != nil {
			logrus.Errorf("Scheduled campaign run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid standing schedule %q: %w", s.cfg.StandingSchedule, err)
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with schedule %q", s.cfg.StandingSchedule)
	return nil
}

// Stop stops the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}

func (s *Service) runStanding() error {
	campaign := s.standingCampaign()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	data := s.runner.Run(ctx, campaign)
	logrus.Infof("Standing campaign collected %d mentions in %v (%d errors)",
		data.TotalMentions, time.Since(start), len(data.Errors))

	if s.store != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			logrus.Errorf("Failed to marshal standing run: %v", err)
		} else {
			filename := fmt.Sprintf("standing/%s.json", time.Now().Format("2006-01-02-15-04-05"))
			if err := s.store.Store(filename, payload); err != nil {
				logrus.Errorf("Failed to archive standing run: %v", err)
			}
		}
	}

	if s.notifier != nil {
		if err := s.notifier.EmailReport(campaign.Name, data); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) standingCampaign() *models.Campaign {
	platforms := s.cfg.StandingPlatforms
	if len(platforms) == 0 {
		platforms = []string{models.PlatformTwitter, models.PlatformReddit}
	}

	return &models.Campaign{
		Name:      s.cfg.StandingName,
		Keywords:  s.cfg.StandingKeywords,
		Platforms: platforms,
	}
}
