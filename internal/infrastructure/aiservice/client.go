package aiservice

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sjlee-dev/ragdocs/internal/core/ports"
	"github.com/sjlee-dev/ragdocs/internal/infrastructure/resilience"
)

// Client wraps every outbound call to the external AI processing service.
// Transport failures are retried through the resilience executor; HTTP
// error statuses propagate immediately with the upstream body attached.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	healthTimeout time.Duration
	executor      *resilience.Executor
}

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	HealthTimeout time.Duration
}

func New(cfg Config, executor *resilience.Executor) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	healthTimeout := cfg.HealthTimeout
	if healthTimeout <= 0 {
		healthTimeout = 5 * time.Second
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		healthTimeout: healthTimeout,
		executor:      executor,
	}
}

// HealthCheck reports AI service liveness. It never returns an error and
// never gates ingestion; a failure is only status-reporting signal.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("ai_health_check_failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 300
}

func (c *Client) CreateCollection(ctx context.Context, name string) (ports.AiCollectionAck, error) {
	payload := map[string]string{"name": name}
	var response struct {
		Status         string `json:"status"`
		CollectionName string `json:"collectionName"`
		Message        string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/namespaces", payload, &response, "create_collection"); err != nil {
		return ports.AiCollectionAck{}, err
	}
	return ports.AiCollectionAck{
		Status:         response.Status,
		CollectionName: response.CollectionName,
		Message:        response.Message,
	}, nil
}

func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	path := "/namespaces/" + url.PathEscape(name)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, "delete_collection")
}

func (c *Client) IndexDocument(ctx context.Context, documentID int64, collection, filePath, filename string) (ports.AiIndexAck, error) {
	path := fmt.Sprintf("/namespaces/%s/documents", url.PathEscape(collection))
	payload := map[string]any{
		"document_id":     documentID,
		"collection_name": collection,
		"file_path":       filePath,
		"filename":        filename,
	}
	var response struct {
		Status     string `json:"status"`
		DocumentID int64  `json:"documentId"`
		Message    string `json:"message"`
		ChunkCount int    `json:"chunkCount"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, payload, &response, "index_document"); err != nil {
		return ports.AiIndexAck{}, err
	}
	return ports.AiIndexAck{
		Status:     response.Status,
		DocumentID: response.DocumentID,
		Message:    response.Message,
		ChunkCount: response.ChunkCount,
	}, nil
}
