// Package registry is a client for the LLM model catalog that supplies model
// aliases, scores and preferred output modes.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rettend/lin/cache"
)

// DefaultBaseURL is the public catalog.
const DefaultBaseURL = "https://llm.rettend.me"

const modelsKey = "models"

// Model is one catalog entry.
type Model struct {
	Provider string `json:"provider"`
	Value    string `json:"value"`
	Alias    string `json:"alias"`
	Name     string `json:"name,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Status   string `json:"status,omitempty"`
	IQ       int    `json:"iq,omitempty"`
	Speed    int    `json:"speed,omitempty"`
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// Cache holds the fetched catalog. Nil disables caching.
	Cache      cache.Cache
	HTTPClient *http.Client
}

// Client fetches the catalog once and answers queries from it. Close
// releases the cache.
type Client struct {
	baseURL string
	cache   cache.Cache
	http    *http.Client
	models  []Model
}

// ErrNotFound is returned by GetModel for an unknown model.
var ErrNotFound = errors.New("model not found in registry")

// Open returns a client. No request is made until the first query.
func Open(o Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(o.BaseURL, "/"),
		cache:   o.Cache,
		http:    o.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.cache == nil {
		c.cache = cache.None{}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	return c
}

// Close releases the cache backend.
func (c *Client) Close() error {
	return c.cache.Close()
}

// Query filters SearchModels. Empty fields match everything.
type Query struct {
	Providers []string
	Status    []string
}

// SearchModels returns the catalog entries matching q in catalog order.
func (c *Client) SearchModels(ctx context.Context, q Query) ([]Model, error) {
	all, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []Model
	for _, m := range all {
		if len(q.Providers) > 0 && !containsFold(q.Providers, m.Provider) {
			continue
		}
		if len(q.Status) > 0 && m.Status != "" && !containsFold(q.Status, m.Status) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// GetModel finds a model of provider by value or alias.
func (c *Client) GetModel(ctx context.Context, provider, model string) (Model, error) {
	all, err := c.load(ctx)
	if err != nil {
		return Model{}, err
	}
	for _, m := range all {
		if !strings.EqualFold(m.Provider, provider) {
			continue
		}
		if m.Value == model || m.Alias == model {
			return m, nil
		}
	}
	return Model{}, fmt.Errorf("%s/%s: %w", provider, model, ErrNotFound)
}

// ModelMode returns the preferred output mode of a model, or "" when the
// catalog does not name one.
func (c *Client) ModelMode(ctx context.Context, provider, model string) (string, error) {
	m, err := c.GetModel(ctx, provider, model)
	if err != nil {
		return "", err
	}
	return m.Mode, nil
}

// ClearCache drops the cached catalog.
func (c *Client) ClearCache(ctx context.Context) error {
	c.models = nil
	return c.cache.Clear(ctx)
}

func (c *Client) load(ctx context.Context) ([]Model, error) {
	if c.models != nil {
		return c.models, nil
	}
	if data, ok, err := c.cache.Get(ctx, modelsKey); err == nil && ok {
		var models []Model
		if json.Unmarshal(data, &models) == nil {
			c.models = models
			return models, nil
		}
	}

	data, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	var models []Model
	if err := json.Unmarshal(data, &models); err != nil {
		return nil, fmt.Errorf("decoding model catalog: %w", err)
	}
	if models == nil {
		models = []Model{}
	}
	// A cache write failure only costs a refetch next run.
	_ = c.cache.Set(ctx, modelsKey, data)
	c.models = models
	return models, nil
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	url := c.baseURL + "/api/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching model catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching model catalog: %s returned %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading model catalog: %w", err)
	}
	return body, nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
