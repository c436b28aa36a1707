// Package registry talks to the patient management system's REST API and
// normalizes its varied response shapes into PatientRecord values.
package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ablelove766/Healthcare-AssistantNew/cache"
	"github.com/ablelove766/Healthcare-AssistantNew/common/httpx"
	"github.com/ablelove766/Healthcare-AssistantNew/common/logger"
	"github.com/ablelove766/Healthcare-AssistantNew/config"
	"github.com/ablelove766/Healthcare-AssistantNew/metrics"
)

// nameQueryParam is the registry's query key for name filtering. The tool
// argument is called patient_name; the wire parameter is not.
const nameQueryParam = "name"

// Client fetches patient records. Implementations must be safe for
// concurrent use across sessions.
type Client interface {
	// Fetch returns records filtered by name, at most limit entries.
	// nameFilter "" means no filtering; limit is clamped to [1, 100].
	Fetch(ctx context.Context, nameFilter string, limit int) ([]PatientRecord, error)
}

// HTTPClient is the registry client over its REST API.
type HTTPClient struct {
	http    *httpx.Client
	baseURL string
	path    string
	cache   *cache.LRU[[]PatientRecord]
}

// NewHTTPClient builds a registry client from configuration. A section
// timeout overrides the shared HTTP client default when set. A positive
// cache TTL enables an in-process cache keyed by filter and limit.
func NewHTTPClient(cfg config.RegistryConfig, base *httpx.Client) *HTTPClient {
	hc := base
	if hc == nil {
		hc = httpx.NewFromConfig(nil)
	}
	if cfg.TimeoutSeconds > 0 {
		hc = hc.WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	}
	c := &HTTPClient{
		http:    hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		path:    cfg.PatientsPath,
	}
	if cfg.CacheTTLSeconds > 0 {
		c.cache = cache.NewLRU[[]PatientRecord](cfg.CacheSize, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	}
	return c
}

// Fetch performs one GET against the patients endpoint. Errors carry the
// upstream status and body text; callers turn them into user-visible text
// rather than retrying.
func (c *HTTPClient) Fetch(ctx context.Context, nameFilter string, limit int) ([]PatientRecord, error) {
	limit = clampLimit(limit)

	cacheKey := nameFilter + "|" + strconv.Itoa(limit)
	if c.cache != nil {
		if records, ok := c.cache.Get(cacheKey); ok {
			logger.Debugf("registry cache hit, name=%q limit=%d", nameFilter, limit)
			return records, nil
		}
	}

	q := url.Values{}
	if nameFilter != "" {
		q.Set(nameQueryParam, nameFilter)
	}
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + c.path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build registry request failed, err: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRegistryFetch(start, 0, false)
		return nil, fmt.Errorf("registry request failed, err: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		metrics.ObserveRegistryFetch(start, 0, false)
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, msg)
	}
	if readErr != nil {
		metrics.ObserveRegistryFetch(start, 0, false)
		return nil, fmt.Errorf("read registry response failed, err: %w", readErr)
	}

	records := DecodePatients(body)
	metrics.ObserveRegistryFetch(start, len(records), true)
	if c.cache != nil {
		c.cache.Set(cacheKey, records, 0)
	}
	logger.Debugf("registry fetch returned %d record(s), name=%q limit=%d", len(records), nameFilter, limit)
	return records, nil
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > 100 {
		return 100
	}
	return limit
}
