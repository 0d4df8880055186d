package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
)

// Service forwards campaign launches to the configured webhook and emails
// report digests for scheduled runs. Both channels are optional and
// independently configured.
type Service struct {
	cfg    *config.Config
	client *resty.Client
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:    cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

type launchPayload struct {
	CampaignID string   `json:"campaignId"`
	Name       string   `json:"name"`
	Keywords   []string `json:"keywords"`
	Platforms  []string `json:"platforms"`
	LaunchedAt string   `json:"launchedAt"`
}

// ForwardLaunch posts the campaign launch to the configured webhook.
// Fire-and-forget: failures are logged, never surfaced to the caller.
func (s *Service) ForwardLaunch(campaignID string, campaign *models.Campaign) {
	if s.cfg.LaunchWebhookURL == "" {
		return
	}

	payload := launchPayload{
		CampaignID: campaignID,
		Name:       campaign.Name,
		Keywords:   campaign.Keywords,
		Platforms:  campaign.Platforms,
		LaunchedAt: time.Now().Format(time.RFC3339),
	}

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(s.cfg.LaunchWebhookURL)

	if err != nil {
		logrus.Errorf("Failed to forward campaign launch %s: %v", campaignID, err)
		return
	}
	if resp.StatusCode() >= 300 {
		logrus.Errorf("Campaign-launch webhook returned status %d for %s", resp.StatusCode(), campaignID)
		return
	}

	logrus.Debugf("Forwarded campaign launch %s", campaignID)
}

// EmailReport sends a digest of a completed run to the notification address.
func (s *Service) EmailReport(campaignName string, data *models.CampaignData) error {
	if s.cfg.NotificationEmail == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.SMTPUsername)
	m.SetHeader("To", s.cfg.NotificationEmail)
	m.SetHeader("Subject", fmt.Sprintf("Listening report: %s (%d mentions)", campaignName, data.TotalMentions))
	m.SetBody("text/html", buildDigest(campaignName, data))

	dialer := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.SMTPUsername, s.cfg.SMTPPassword)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	logrus.Infof("Emailed report digest for %q to %s", campaignName, s.cfg.NotificationEmail)
	return nil
}

func buildDigest(campaignName string, data *models.CampaignData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>%s</h2>", campaignName)
	fmt.Fprintf(&b, "<p><b>%d</b> mentions collected.</p>", data.TotalMentions)

	if agg := data.ProcessedData; agg != nil {
		fmt.Fprintf(&b, "<p>Sentiment: %d positive / %d negative / %d neutral</p>",
			agg.SentimentCounts.Positive, agg.SentimentCounts.Negative, agg.SentimentCounts.Neutral)
	}

	for _, section := range models.ReportSections {
		if text, ok := data.Reports[section]; ok {
			fmt.Fprintf(&b, "<h3>%s</h3><p>%s</p>", strings.Title(section), text)
		}
	}

	if len(data.Errors) > 0 {
		fmt.Fprintf(&b, "<h3>Errors</h3><ul>")
		for _, e := range data.Errors {
			fmt.Fprintf(&b, "<li>%s</li>", e)
		}
		b.WriteString("</ul>")
	}

	return b.String()
}
