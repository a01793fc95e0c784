// Package connectors keeps named HTTP client configurations for the
// external platforms the companion can reach on the user's behalf.
package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"aegis/internal/models"
	"aegis/internal/storage"
)

// knownPlatforms maps platform name to the env var and base URL used
// for auto-population. A connector is registered for each var that is
// set at startup.
var knownPlatforms = []struct {
	name   string
	envVar string
	url    string
	auth   models.AuthType
}{
	{"taskade", "TASKADE_API_KEY", "https://www.taskade.com/api/v1", models.AuthBearer},
	{"youtube", "YOUTUBE_API_KEY", "https://www.googleapis.com/youtube/v3", models.AuthAPIKey},
	{"facebook", "FACEBOOK_ACCESS_TOKEN", "https://graph.facebook.com/v18.0", models.AuthBearer},
	{"stripe", "STRIPE_API_KEY", "https://api.stripe.com/v1", models.AuthBearer},
	{"shopify", "SHOPIFY_ACCESS_TOKEN", "", models.AuthCustom},
	{"github", "GITHUB_TOKEN", "https://api.github.com", models.AuthBearer},
	{"gmail", "GMAIL_API_KEY", "https://gmail.googleapis.com/gmail/v1", models.AuthBearer},
	{"openai", "OPENAI_API_KEY", "https://api.openai.com/v1", models.AuthBearer},
	{"aws", "AWS_ACCESS_KEY", "", models.AuthCustom},
	{"capcut", "CAPCUT_API_KEY", "", models.AuthBearer},
	{"canva", "CANVA_API_KEY", "https://api.canva.com/rest/v1", models.AuthBearer},
	{"replit", "REPLIT_API_KEY", "https://replit.com/api/v1", models.AuthBearer},
}

// Registry holds connector configs, persisted to <dir>/connectors.json.
// Each connector gets its own rate limiter so one chatty integration
// cannot starve the rest.
type Registry struct {
	mu         sync.RWMutex
	dir        string
	connectors map[string]models.ConnectorConfig
	limiters   map[string]*rate.Limiter
	client     *http.Client
}

// NewRegistry loads persisted connectors from dir and then registers
// any known platform whose env var is set and not already configured.
func NewRegistry(dir string) (*Registry, error) {
	r := &Registry{
		dir:        dir,
		connectors: map[string]models.ConnectorConfig{},
		limiters:   map[string]*rate.Limiter{},
		client:     &http.Client{Timeout: 30 * time.Second},
	}

	if _, err := storage.Load(r.path(), &r.connectors); err != nil {
		return nil, fmt.Errorf("failed to load connectors: %w", err)
	}

	added := 0
	for _, p := range knownPlatforms {
		key := os.Getenv(p.envVar)
		if key == "" {
			continue
		}
		if _, exists := r.connectors[p.name]; exists {
			continue
		}
		r.connectors[p.name] = models.ConnectorConfig{
			Name:     p.name,
			URL:      p.url,
			APIKey:   key,
			AuthType: p.auth,
		}
		added++
	}
	if added > 0 {
		r.save()
	}

	log.Printf("🔌 [CONNECTORS] Registry initialized (%d connectors, %d from environment)", len(r.connectors), added)
	return r, nil
}

func (r *Registry) path() string { return filepath.Join(r.dir, "connectors.json") }

func (r *Registry) save() {
	if err := storage.Save(r.path(), r.connectors); err != nil {
		log.Printf("⚠️ [CONNECTORS] Error saving connectors: %v", err)
	}
}

// Get returns the connector with the given name.
func (r *Registry) Get(name string) (models.ConnectorConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[name]
	return c, ok
}

// List returns all connectors sorted by name.
func (r *Registry) List() []models.ConnectorConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ConnectorConfig, 0, len(r.connectors))
	for _, c := range r.connectors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Add registers or replaces a connector.
func (r *Registry) Add(cfg models.ConnectorConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("connector name is required")
	}
	if cfg.AuthType == "" {
		cfg.AuthType = models.AuthBearer
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[cfg.Name] = cfg
	delete(r.limiters, cfg.Name)
	r.save()

	log.Printf("🔌 [CONNECTORS] Added connector: %s", cfg.Name)
	return nil
}

// Remove unregisters a connector.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.connectors[name]; !ok {
		return fmt.Errorf("unknown connector: %s", name)
	}
	delete(r.connectors, name)
	delete(r.limiters, name)
	r.save()
	return nil
}

// limiter returns the per-connector rate limiter, creating it lazily.
// 2 requests/second with a burst of 5 keeps us well inside every
// platform's published limits.
func (r *Registry) limiter(name string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[name]
	if !ok {
		l = rate.NewLimiter(rate.Limit(2), 5)
		r.limiters[name] = l
	}
	return l
}

func (r *Registry) authorize(req *http.Request, cfg models.ConnectorConfig) {
	switch cfg.AuthType {
	case models.AuthBearer:
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	case models.AuthBasic:
		req.SetBasicAuth(cfg.Name, cfg.APIKey)
	case models.AuthAPIKey:
		q := req.URL.Query()
		q.Set("key", cfg.APIKey)
		req.URL.RawQuery = q.Encode()
	}
	for k, v := range cfg.CustomHeaders {
		req.Header.Set(k, v)
	}
}

func (r *Registry) do(ctx context.Context, name, method, endpoint string, body io.Reader) (map[string]any, error) {
	cfg, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown connector: %s", name)
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("connector %s has no base URL configured", name)
	}

	if err := r.limiter(name).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.URL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.authorize(req, cfg)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connector %s request failed: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("connector %s returned %d: %s", name, resp.StatusCode, truncate(string(raw), 200))
	}

	var result map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("connector %s returned non-JSON response: %w", name, err)
		}
	}
	return result, nil
}

// GetData performs a GET against the connector's base URL plus
// endpoint and decodes the JSON object response.
func (r *Registry) GetData(ctx context.Context, name, endpoint string) (map[string]any, error) {
	return r.do(ctx, name, http.MethodGet, endpoint, nil)
}

// PostData performs a POST with a JSON body and decodes the response.
func (r *Registry) PostData(ctx context.Context, name, endpoint string, payload any) (map[string]any, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return r.do(ctx, name, http.MethodPost, endpoint, body)
}

// Test checks whether a connector's base URL answers at all. Any HTTP
// response, including an auth error, counts as reachable.
func (r *Registry) Test(ctx context.Context, name string) error {
	cfg, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("unknown connector: %s", name)
	}
	if cfg.URL == "" {
		return fmt.Errorf("connector %s has no base URL configured", name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	r.authorize(req, cfg)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("connector %s unreachable: %w", name, err)
	}
	resp.Body.Close()
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
