package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/pipeline"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/report"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/scrape"
)

type staticCompleter struct {
	text  string
	err   error
	delay time.Duration
}

func (s *staticCompleter) Complete(ctx context.Context, system, user string, timeout time.Duration) (string, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.text, s.err
}

// slowAdapter blocks long enough to trip the request-level timer.
type slowAdapter struct {
	delay time.Duration
}

func (a *slowAdapter) Name() string                     { return models.PlatformTwitter }
func (a *slowAdapter) Eligible(c *models.Campaign) bool { return true }

func (a *slowAdapter) Fetch(ctx context.Context, c *models.Campaign) ([]models.RawMention, error) {
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
	}
	return nil, nil
}

func serverConfig() *config.Config {
	return &config.Config{
		MaxPosts:        50,
		MaxComments:     20,
		TimeWindowDay:   7,
		EnhanceBatch:    20,
		EnhanceTimeout:  time.Second,
		ReportTimeout:   time.Second,
		PlatformTimeout: time.Second,
		RequestTimeout:  5 * time.Second,
	}
}

func disabledModel() *staticCompleter {
	return &staticCompleter{err: fmt.Errorf("model disabled in tests")}
}

func newTestServer(cfg *config.Config, model *staticCompleter, adapters ...scrape.PlatformAdapter) *Server {
	collector := scrape.NewCollector(cfg, adapters...)
	enhancer := pipeline.NewEnhancer(model, cfg)
	reports := report.NewGenerator(model, cfg)
	runner := pipeline.NewRunner(cfg, collector, enhancer, reports)
	return New(cfg, runner, nil, nil)
}

func postCampaign(t *testing.T, srv *Server, campaign any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(campaign)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/campaigns", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleCampaign_ValidationErrors(t *testing.T) {
	srv := newTestServer(serverConfig(), disabledModel())

	tests := []struct {
		name     string
		campaign models.Campaign
		wantErr  string
	}{
		{
			name:     "missing name",
			campaign: models.Campaign{Keywords: []string{"acme"}, Platforms: []string{"twitter"}},
			wantErr:  "campaign name is required",
		},
		{
			name:     "blank name",
			campaign: models.Campaign{Name: "   ", Keywords: []string{"acme"}, Platforms: []string{"twitter"}},
			wantErr:  "campaign name is required",
		},
		{
			name:     "no keywords",
			campaign: models.Campaign{Name: "Acme", Platforms: []string{"twitter"}},
			wantErr:  "at least one keyword is required",
		},
		{
			name:     "no platforms",
			campaign: models.Campaign{Name: "Acme", Keywords: []string{"acme"}},
			wantErr:  "at least one platform is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postCampaign(t, srv, tt.campaign)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantErr, body["error"])
		})
	}
}

func TestHandleCampaign_MalformedBody(t *testing.T) {
	srv := newTestServer(serverConfig(), disabledModel())

	req := httptest.NewRequest("POST", "/api/campaigns", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestHandleCampaign_MockModeRuns(t *testing.T) {
	srv := newTestServer(serverConfig(), disabledModel())

	rec := postCampaign(t, srv, models.Campaign{
		Name:      "Mock Launch",
		Keywords:  []string{"acme"},
		Platforms: []string{"twitter", "instagram"},
		Settings:  models.Settings{MaxPosts: 10},
		MockMode:  true,
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.CampaignResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.CampaignID, "campaign_")
	require.NotNil(t, resp.Data)
	assert.Equal(t, 10, resp.Data.TotalMentions)
	assert.Len(t, resp.Data.Mentions, 10)
	assert.Len(t, resp.Data.Reports, 4)
	for _, m := range resp.Data.Mentions {
		assert.NotNil(t, m.Sentiment)
	}
}

func TestHandleCampaign_RequestTimeout(t *testing.T) {
	cfg := serverConfig()
	cfg.RequestTimeout = 30 * time.Millisecond
	model := &staticCompleter{err: fmt.Errorf("model disabled in tests"), delay: 2 * time.Second}
	srv := newTestServer(cfg, model, &slowAdapter{delay: 2 * time.Second})

	rec := postCampaign(t, srv, models.Campaign{
		Name:      "Slow",
		Keywords:  []string{"acme"},
		Platforms: []string{"twitter"},
	})

	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "campaign processing timed out", body["error"])
	assert.Contains(t, body["details"], "30ms")
}

func TestMetrics_ReflectLastRun(t *testing.T) {
	srv := newTestServer(serverConfig(), disabledModel())

	postCampaign(t, srv, models.Campaign{
		Name:      "Mock Launch",
		Keywords:  []string{"acme"},
		Platforms: []string{"twitter", "reddit"},
		Settings:  models.Settings{MaxPosts: 6},
		MockMode:  true,
	})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var metrics Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Equal(t, 6, metrics.TotalMentions)
	assert.False(t, metrics.LastRun.IsZero())
	assert.Equal(t, 3, metrics.PlatformMetrics["twitter"])
	assert.Equal(t, 3, metrics.PlatformMetrics["reddit"])
	assert.Zero(t, metrics.ErrorCount)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(serverConfig(), disabledModel())

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
