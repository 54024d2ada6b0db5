package studygen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPBackend binds the Backend contract to the generation service's REST
// API. Requests carry a bearer token; responses arrive in the service's
// uniform {message, data} envelope.
type HTTPBackend struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// Ensure HTTPBackend implements Backend
var _ Backend = &HTTPBackend{}

func NewHTTPBackend(baseURL, token string) *HTTPBackend {
	return &HTTPBackend{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type apiEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type submitJobRequest struct {
	Kind       ArtifactKind `json:"kind"`
	SourceIds  []string     `json:"source_ids"`
	Parameters Parameters   `json:"parameters,omitempty"`
}

type submitJobResponse struct {
	JobId string `json:"job_id"`
}

type invalidateResponse struct {
	DeletedCount int `json:"deleted_count"`
}

func (b *HTTPBackend) Generate(ctx context.Context, kind ArtifactKind, sourceIds []string, params Parameters) (string, error) {
	payload := submitJobRequest{
		Kind:       kind,
		SourceIds:  sourceIds,
		Parameters: params,
	}
	var res submitJobResponse
	if err := b.do(ctx, http.MethodPost, "/jobs", nil, payload, &res); err != nil {
		return "", err
	}
	return res.JobId, nil
}

func (b *HTTPBackend) JobStatus(ctx context.Context, jobId string) (*JobStatus, error) {
	var status JobStatus
	if err := b.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(jobId), nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (b *HTTPBackend) CleanupJob(ctx context.Context, jobId string) error {
	return b.do(ctx, http.MethodDelete, "/jobs/"+url.PathEscape(jobId), nil, nil, nil)
}

func (b *HTTPBackend) CachedResult(ctx context.Context, kind ArtifactKind, sourceIds []string, params Parameters) (*CacheResult, error) {
	var res CacheResult
	if err := b.do(ctx, http.MethodGet, "/cache", cacheQuery(kind, sourceIds, params), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (b *HTTPBackend) InvalidateCache(ctx context.Context, kind ArtifactKind, sourceIds []string, params Parameters) (int, error) {
	var res invalidateResponse
	if err := b.do(ctx, http.MethodDelete, "/cache", cacheQuery(kind, sourceIds, params), nil, &res); err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func cacheQuery(kind ArtifactKind, sourceIds []string, params Parameters) url.Values {
	query := url.Values{}
	query.Set("kind", string(kind))
	query.Set("source_ids", strings.Join(sourceIds, ","))
	for key, value := range params {
		switch v := value.(type) {
		case []string:
			query.Set(key, strings.Join(v, ","))
		default:
			query.Set(key, fmt.Sprint(v))
		}
	}
	return query
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, query url.Values, payload, out interface{}) error {
	endpoint := b.BaseURL + "/api/generation/v1" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.Token)
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var envelope apiEnvelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, truncate(string(raw), 200))
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if envelope.Message != "" {
			return fmt.Errorf("backend rejected request (status %d): %s", resp.StatusCode, envelope.Message)
		}
		return fmt.Errorf("backend rejected request (status %d)", resp.StatusCode)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
