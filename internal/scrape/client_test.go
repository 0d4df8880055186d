package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdelrahmanelsayyad/sb1-dtfebxye-sub000/internal/config"
)

// fakeProvider simulates the scraping provider's job API.
type fakeProvider struct {
	mux          *http.ServeMux
	statusSeq    []string // statuses returned by successive polls
	statusCalls  atomic.Int32
	runsStarted  atomic.Int32
	items        []map[string]any
	datasetCode  int
	startCode    int
	statusDetail string
}

func newFakeProvider(statusSeq []string, items []map[string]any) *fakeProvider {
	p := &fakeProvider{
		statusSeq:   statusSeq,
		items:       items,
		datasetCode: http.StatusOK,
		startCode:   http.StatusCreated,
	}

	p.mux = http.NewServeMux()
	p.mux.HandleFunc("/v2/acts/", func(w http.ResponseWriter, r *http.Request) {
		if p.startCode >= 300 {
			w.WriteHeader(p.startCode)
			return
		}
		p.runsStarted.Add(1)
		w.WriteHeader(p.startCode)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "run-1", "defaultDatasetId": "ds-1", "status": "READY"},
		})
	})
	p.mux.HandleFunc("/v2/actor-runs/", func(w http.ResponseWriter, r *http.Request) {
		call := int(p.statusCalls.Add(1)) - 1
		status := p.statusSeq[len(p.statusSeq)-1]
		if call < len(p.statusSeq) {
			status = p.statusSeq[call]
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"status": status, "statusMessage": p.statusDetail},
		})
	})
	p.mux.HandleFunc("/v2/datasets/", func(w http.ResponseWriter, r *http.Request) {
		if p.datasetCode != http.StatusOK {
			w.WriteHeader(p.datasetCode)
			return
		}
		json.NewEncoder(w).Encode(p.items)
	})

	return p
}

func clientConfig(baseURL string) *config.Config {
	return &config.Config{
		ScrapeBaseURL:  baseURL,
		ScrapeToken:    "test-token",
		PollInterval:   5 * time.Millisecond,
		MaxScrapeWait:  250 * time.Millisecond,
		ChunkThreshold: 50,
		ChunkDelay:     time.Millisecond,
	}
}

func TestClient_RunActorSucceeds(t *testing.T) {
	provider := newFakeProvider(
		[]string{"RUNNING", "SUCCEEDED"},
		[]map[string]any{{"text": "hello"}, {"text": "world"}},
	)
	server := httptest.NewServer(provider.mux)
	defer server.Close()

	client := NewClient(clientConfig(server.URL))
	items, err := client.RunActor(context.Background(), "some~actor", map[string]any{"maxItems": 2})

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "hello", items[0]["text"])
	assert.GreaterOrEqual(t, int(provider.statusCalls.Load()), 2)
}

func TestClient_RunFailureCarriesProviderMessage(t *testing.T) {
	provider := newFakeProvider([]string{"FAILED"}, nil)
	provider.statusDetail = "actor ran out of memory"
	server := httptest.NewServer(provider.mux)
	defer server.Close()

	client := NewClient(clientConfig(server.URL))
	_, err := client.RunActor(context.Background(), "some~actor", nil)

	require.Error(t, err)
	assert.Equal(t, KindProvider, KindOf(err))
	assert.Contains(t, err.Error(), "actor ran out of memory")
}

func TestClient_RunAborted(t *testing.T) {
	provider := newFakeProvider([]string{"ABORTED"}, nil)
	server := httptest.NewServer(provider.mux)
	defer server.Close()

	client := NewClient(clientConfig(server.URL))
	_, err := client.RunActor(context.Background(), "some~actor", nil)

	require.Error(t, err)
	assert.Equal(t, KindProvider, KindOf(err))
	assert.Contains(t, err.Error(), "aborted")
}

func TestClient_PollExhaustionIsTimeout(t *testing.T) {
	provider := newFakeProvider([]string{"RUNNING"}, nil)
	server := httptest.NewServer(provider.mux)
	defer server.Close()

	cfg := clientConfig(server.URL)
	cfg.MaxScrapeWait = 20 * time.Millisecond

	client := NewClient(cfg)
	_, err := client.RunActor(context.Background(), "some~actor", nil)

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestClient_MissingDatasetIsEmpty(t *testing.T) {
	provider := newFakeProvider([]string{"SUCCEEDED"}, nil)
	provider.datasetCode = http.StatusNotFound
	server := httptest.NewServer(provider.mux)
	defer server.Close()

	client := NewClient(clientConfig(server.URL))
	items, err := client.RunActor(context.Background(), "some~actor", nil)

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClient_AccessDeniedIsRestricted(t *testing.T) {
	provider := newFakeProvider(nil, nil)
	provider.startCode = http.StatusForbidden
	server := httptest.NewServer(provider.mux)
	defer server.Close()

	client := NewClient(clientConfig(server.URL))
	_, err := client.RunActor(context.Background(), "some~actor", nil)

	require.Error(t, err)
	assert.Equal(t, KindRestricted, KindOf(err))
}

func TestClient_ChunkedSplitsLargeRequests(t *testing.T) {
	provider := newFakeProvider([]string{"SUCCEEDED"}, []map[string]any{{"text": "item"}})
	server := httptest.NewServer(provider.mux)
	defer server.Close()

	cfg := clientConfig(server.URL)
	cfg.ChunkThreshold = 40

	client := NewClient(cfg)
	var requestedLimits []int
	items, err := client.RunActorChunked(context.Background(), "some~actor", 100, func(limit int) any {
		requestedLimits = append(requestedLimits, limit)
		return map[string]any{"maxItems": limit}
	})

	require.NoError(t, err)
	assert.Equal(t, []int{40, 40, 20}, requestedLimits)
	assert.Len(t, items, 3)
	assert.Equal(t, int32(3), provider.runsStarted.Load())
}

func TestClient_ChunkedBelowThresholdRunsOnce(t *testing.T) {
	provider := newFakeProvider([]string{"SUCCEEDED"}, []map[string]any{{"text": "item"}})
	server := httptest.NewServer(provider.mux)
	defer server.Close()

	client := NewClient(clientConfig(server.URL))
	_, err := client.RunActorChunked(context.Background(), "some~actor", 10, func(limit int) any {
		assert.Equal(t, 10, limit)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), provider.runsStarted.Load())
}

func TestClient_ChunkedSkipsFailedChunk(t *testing.T) {
	// Every run fails, so the chunked call should surface the last error.
	provider := newFakeProvider([]string{"FAILED"}, nil)
	server := httptest.NewServer(provider.mux)
	defer server.Close()

	cfg := clientConfig(server.URL)
	cfg.ChunkThreshold = 10

	client := NewClient(cfg)
	_, err := client.RunActorChunked(context.Background(), "some~actor", 30, func(limit int) any {
		return fmt.Sprintf("chunk-%d", limit)
	})

	require.Error(t, err)
	assert.Equal(t, int32(3), provider.runsStarted.Load())
}
