package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/archive"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/models"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/notify"
	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/pipeline"
)

// Server exposes the campaign endpoint plus health and metrics. It holds no
// mutable state across requests beyond the last-run metrics snapshot.
type Server struct {
	cfg      *config.Config
	runner   *pipeline.Runner
	notifier *notify.Service
	store    archive.Store

	metrics Metrics
	mu      sync.RWMutex
}

// Metrics is the last-run snapshot served at /metrics.
type Metrics struct {
	TotalMentions      int            `json:"total_mentions"`
	LastRun            time.Time      `json:"last_run"`
	LastRunDuration    string         `json:"last_run_duration"`
	PlatformMetrics    map[string]int `json:"platform_metrics"`
	SentimentBreakdown map[string]int `json:"sentiment_breakdown"`
	ErrorCount         int            `json:"error_count"`
}

// New creates the server. The notifier and store may be nil when the
// corresponding features are not configured.
func New(cfg *config.Config, runner *pipeline.Runner, notifier *notify.Service, store archive.Store) *Server {
	return &Server{
		cfg:      cfg,
		runner:   runner,
		notifier: notifier,
		store:    store,
		metrics: Metrics{
			PlatformMetrics:    make(map[string]int),
			SentimentBreakdown: make(map[string]int),
		},
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	router.HandleFunc("/api/campaigns", s.handleCampaign).Methods("POST")
	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snapshot := s.metrics
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, snapshot)
}

// handleCampaign runs the whole pipeline for one submitted campaign under
// the request-level timeout. Partial failure is the normal operating mode:
// the response carries whatever succeeded plus the errors encountered. Only
// validation, total timeout, and orchestration panics produce failures.
func (s *Server) handleCampaign(w http.ResponseWriter, r *http.Request) {
	var campaign models.Campaign
	if err := json.NewDecoder(r.Body).Decode(&campaign); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	if err := validateCampaign(&campaign); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	campaignID := fmt.Sprintf("campaign_%d", time.Now().UnixMilli())
	logrus.Infof("Processing campaign %s (%q, platforms: %s)", campaignID, campaign.Name, strings.Join(campaign.Platforms, ","))

	if s.notifier != nil {
		go s.notifier.ForwardLaunch(campaignID, &campaign)
	}

	start := time.Now()
	data, err := s.runWithTimeout(r.Context(), &campaign)
	if err != nil {
		if err == errRequestTimeout {
			writeJSON(w, http.StatusRequestTimeout, map[string]string{
				"error":   "campaign processing timed out",
				"details": fmt.Sprintf("processing exceeded %v; reduce the number of platforms or requested posts", s.cfg.RequestTimeout),
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "campaign processing failed",
			"details": err.Error(),
		})
		return
	}

	s.updateMetrics(data, time.Since(start))

	if s.store != nil {
		go s.archiveRun(campaignID, data)
	}

	writeJSON(w, http.StatusOK, models.CampaignResponse{
		Success:    true,
		CampaignID: campaignID,
		Data:       data,
	})
}

var errRequestTimeout = fmt.Errorf("request timeout")

// runWithTimeout races the pipeline against the request-level timer. When
// the timer fires, any still-running platform work is abandoned and its
// eventual result is never observed.
func (s *Server) runWithTimeout(ctx context.Context, campaign *models.Campaign) (data *models.CampaignData, err error) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	done := make(chan *models.CampaignData, 1)
	panicked := make(chan error, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				panicked <- fmt.Errorf("pipeline panic: %v", rec)
			}
		}()
		done <- s.runner.Run(runCtx, campaign)
	}()

	select {
	case data = <-done:
		return data, nil
	case err = <-panicked:
		return nil, err
	case <-runCtx.Done():
		return nil, errRequestTimeout
	}
}

// validateCampaign fails fast before any downstream call is made.
func validateCampaign(c *models.Campaign) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("campaign name is required")
	}
	if len(c.Keywords) == 0 {
		return fmt.Errorf("at least one keyword is required")
	}
	if len(c.Platforms) == 0 {
		return fmt.Errorf("at least one platform is required")
	}
	return nil
}

func (s *Server) updateMetrics(data *models.CampaignData, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.TotalMentions = data.TotalMentions
	s.metrics.LastRun = time.Now()
	s.metrics.LastRunDuration = duration.String()
	s.metrics.ErrorCount = len(data.Errors)
	s.metrics.PlatformMetrics = make(map[string]int)
	s.metrics.SentimentBreakdown = make(map[string]int)

	for _, mention := range data.Mentions {
		s.metrics.PlatformMetrics[mention.Platform]++
		label := "unlabeled"
		if mention.Sentiment != nil {
			label = *mention.Sentiment
		}
		s.metrics.SentimentBreakdown[label]++
	}
}

func (s *Server) archiveRun(campaignID string, data *models.CampaignData) {
	payload, err := json.Marshal(data)
	if err != nil {
		logrus.Errorf("Failed to marshal run %s for archival: %v", campaignID, err)
		return
	}
	filename := fmt.Sprintf("runs/%s.json", campaignID)
	if err := s.store.Store(filename, payload); err != nil {
		logrus.Errorf("Failed to archive run %s: %v", campaignID, err)
		return
	}
	logrus.Infof("Archived campaign run %s", campaignID)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}
