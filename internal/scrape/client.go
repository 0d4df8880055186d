package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
)

// Client drives the scraping provider's asynchronous job API: submit a run,
// poll its status, then fetch the result dataset. One Client is shared by
// all platform adapters.
type Client struct {
	http           *resty.Client
	baseURL        string
	token          string
	pollInterval   time.Duration
	maxWait        time.Duration
	chunkThreshold int
	chunkDelay     time.Duration
}

// NewClient creates a provider client from static configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(60 * time.Second).
			SetHeader("User-Agent", "listening-pipeline/1.0"),
		baseURL:        cfg.ScrapeBaseURL,
		token:          cfg.ScrapeToken,
		pollInterval:   cfg.PollInterval,
		maxWait:        cfg.MaxScrapeWait,
		chunkThreshold: cfg.ChunkThreshold,
		chunkDelay:     cfg.ChunkDelay,
	}
}

type runStartResponse struct {
	Data struct {
		ID               string `json:"id"`
		DefaultDatasetID string `json:"defaultDatasetId"`
		Status           string `json:"status"`
	} `json:"data"`
}

type runStatusResponse struct {
	Data struct {
		Status        string `json:"status"`
		StatusMessage string `json:"statusMessage"`
	} `json:"data"`
}

// RunActor submits one job to the named actor, polls until it finishes, and
// returns the dataset items. A dataset that has gone missing is treated as
// zero results, not a failure.
func (c *Client) RunActor(ctx context.Context, actorID string, input any) ([]map[string]any, error) {
	runID, datasetID, err := c.startRun(ctx, actorID, input)
	if err != nil {
		return nil, err
	}

	if err := c.waitForRun(ctx, actorID, runID); err != nil {
		return nil, err
	}

	return c.fetchItems(ctx, datasetID)
}

// RunActorChunked splits a large request into sequential sub-jobs so the
// provider's own rate limits are respected. A failing chunk is logged and
// skipped; remaining chunks continue.
func (c *Client) RunActorChunked(ctx context.Context, actorID string, total int, buildInput func(limit int) any) ([]map[string]any, error) {
	if total <= c.chunkThreshold {
		return c.RunActor(ctx, actorID, buildInput(total))
	}

	var items []map[string]any
	var lastErr error
	remaining := total

	for chunk := 0; remaining > 0; chunk++ {
		size := remaining
		if size > c.chunkThreshold {
			size = c.chunkThreshold
		}

		if chunk > 0 {
			select {
			case <-ctx.Done():
				return items, newError(KindTimeout, "chunked scrape cancelled after %d items: %v", len(items), ctx.Err())
			case <-time.After(c.chunkDelay):
			}
		}

		logrus.Debugf("Running chunk %d for actor %s (%d items, %d remaining)", chunk+1, actorID, size, remaining)
		chunkItems, err := c.RunActor(ctx, actorID, buildInput(size))
		if err != nil {
			logrus.Warnf("Chunk %d for actor %s failed, continuing with remaining chunks: %v", chunk+1, actorID, err)
			lastErr = err
			remaining -= size
			continue
		}

		items = append(items, chunkItems...)
		remaining -= size
	}

	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return items, nil
}

func (c *Client) startRun(ctx context.Context, actorID string, input any) (runID, datasetID string, err error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token", c.token).
		SetHeader("Content-Type", "application/json").
		SetBody(input).
		Post(fmt.Sprintf("%s/v2/acts/%s/runs", c.baseURL, actorID))

	if err != nil {
		return "", "", newError(KindProvider, "failed to start scrape job: %v", err)
	}

	switch {
	case resp.StatusCode() == 401 || resp.StatusCode() == 403:
		return "", "", newError(KindRestricted, "scrape provider denied access (status %d): check API token and plan limits", resp.StatusCode())
	case resp.StatusCode() == 404:
		return "", "", newError(KindNotFound, "scrape actor %s not found", actorID)
	case resp.StatusCode() >= 300:
		return "", "", newError(KindProvider, "scrape provider returned status %d: %s", resp.StatusCode(), resp.Body())
	}

	var start runStartResponse
	if err := json.Unmarshal(resp.Body(), &start); err != nil {
		return "", "", newError(KindProvider, "failed to parse job-start response: %v", err)
	}
	if start.Data.ID == "" {
		return "", "", newError(KindProvider, "job-start response missing run id")
	}

	return start.Data.ID, start.Data.DefaultDatasetID, nil
}

func (c *Client) waitForRun(ctx context.Context, actorID, runID string) error {
	maxAttempts := int(c.maxWait / c.pollInterval)
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return newError(KindTimeout, "scrape job %s cancelled while polling: %v", runID, ctx.Err())
		case <-time.After(c.pollInterval):
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("token", c.token).
			Get(fmt.Sprintf("%s/v2/actor-runs/%s", c.baseURL, runID))

		if err != nil {
			logrus.Warnf("Status poll %d for run %s failed: %v", attempt+1, runID, err)
			continue
		}
		if resp.StatusCode() >= 300 {
			logrus.Warnf("Status poll %d for run %s returned %d", attempt+1, runID, resp.StatusCode())
			continue
		}

		var status runStatusResponse
		if err := json.Unmarshal(resp.Body(), &status); err != nil {
			logrus.Warnf("Failed to parse run status for %s: %v", runID, err)
			continue
		}

		switch status.Data.Status {
		case "SUCCEEDED":
			return nil
		case "FAILED":
			return newError(KindProvider, "scrape job failed: %s", providerMessage(status.Data.StatusMessage))
		case "ABORTED", "TIMED-OUT":
			return newError(KindProvider, "scrape job aborted by provider: %s", providerMessage(status.Data.StatusMessage))
		default:
			// READY / RUNNING: keep polling
			logrus.Debugf("Run %s (%s) still %s after poll %d", runID, actorID, status.Data.Status, attempt+1)
		}
	}

	return newError(KindTimeout, "scrape job timed out after %v: try reducing the requested post volume", c.maxWait)
}

func (c *Client) fetchItems(ctx context.Context, datasetID string) ([]map[string]any, error) {
	if datasetID == "" {
		return nil, nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token", c.token).
		SetQueryParam("format", "json").
		SetQueryParam("clean", "true").
		Get(fmt.Sprintf("%s/v2/datasets/%s/items", c.baseURL, datasetID))

	if err != nil {
		return nil, newError(KindProvider, "failed to fetch scrape results: %v", err)
	}

	// Provider quirk: a run can succeed while its dataset 404s. Treat as
	// zero results, not a pipeline fault.
	if resp.StatusCode() == 404 {
		logrus.Debugf("Dataset %s not found, treating as empty", datasetID)
		return nil, nil
	}
	if resp.StatusCode() >= 300 {
		return nil, newError(KindProvider, "result fetch returned status %d: %s", resp.StatusCode(), resp.Body())
	}

	var items []map[string]any
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, newError(KindProvider, "failed to parse scrape results: %v", err)
	}

	return items, nil
}

func providerMessage(msg string) string {
	if msg == "" {
		return "no details reported"
	}
	return msg
}
