package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/platform/cache"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

const (
	HSNByCode = "byCode"
	HSNByDesc = "byDesc"
)

// HSNSearcher looks up HSN/SAC codes.
type HSNSearcher interface {
	Search(ctx context.Context, query, mode, category string) ([]HSNResult, error)
}

// HSNClient wraps the GST HSN quick-search API with a redis cache.
type HSNClient struct {
	baseURL    string
	httpClient *http.Client
	cache      redis.Cmdable
	ttl        time.Duration
	logger     *slog.Logger
	group      singleflight.Group
}

// NewHSNClient constructs a new client. cache may be nil.
func NewHSNClient(baseURL string, timeout time.Duration, cache redis.Cmdable, ttl time.Duration, logger *slog.Logger) *HSNClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HSNClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

type hsnPayload struct {
	Data []struct {
		C string `json:"c"`
		N string `json:"n"`
	} `json:"data"`
}

// Search returns matches for query. Concurrent identical searches share one
// upstream request; results are cached for the configured TTL.
func (c *HSNClient) Search(ctx context.Context, query, mode, category string) ([]HSNResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, shared.NewValidationError("q", "is required")
	}
	switch mode {
	case "":
		mode = HSNByCode
	case HSNByCode, HSNByDesc:
	default:
		return nil, shared.NewValidationError("type", "must be one of byCode byDesc")
	}
	category = strings.TrimSpace(category)
	key := hsnCacheKey(query, mode, category)

	if c.cache != nil {
		var cached []HSNResult
		err := cache.GetJSON(ctx, c.cache, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			c.logger.Warn("hsn cache read failed", slog.Any("error", err))
		}
	}

	// The shared request outlives any single caller; the http client timeout
	// bounds it.
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return c.fetch(detached, query, mode, category)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	results := res.Val.([]HSNResult)

	if c.cache != nil {
		if err := cache.SetJSON(ctx, c.cache, key, results, c.ttl); err != nil {
			c.logger.Warn("hsn cache write failed", slog.Any("error", err))
		}
	}
	return results, nil
}

func (c *HSNClient) fetch(ctx context.Context, query, mode, category string) ([]HSNResult, error) {
	params := url.Values{}
	params.Set("inputText", query)
	params.Set("selectedType", mode)
	if category == "" {
		params.Set("category", "null")
	} else {
		params.Set("category", category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: hsn search: %v", shared.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: hsn search returned status %d", shared.ErrUpstream, resp.StatusCode)
	}

	var payload hsnPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: hsn search: decode: %v", shared.ErrUpstream, err)
	}
	results := make([]HSNResult, 0, len(payload.Data))
	for _, d := range payload.Data {
		results = append(results, HSNResult{Code: d.C, Description: d.N})
	}
	return results, nil
}

func hsnCacheKey(query, mode, category string) string {
	return "hsn:" + mode + ":" + strings.ToLower(category) + ":" + strings.ToLower(query)
}
