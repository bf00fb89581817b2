package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/common/metrics"
	"agentic-nlu/internal/models"
)

var ErrSearchFailed = errors.New("SEARCH_FAILED")

type Config struct {
	BaseURL string
	Limit   int
	Timeout time.Duration
}

// HTTPResolver is a thin adapter over the search/catalog service.
type HTTPResolver struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewHTTPResolver(config *Config, log logger.Logger) *HTTPResolver {
	if config.Limit == 0 {
		config.Limit = 5
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	return &HTTPResolver{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: log.With(map[string]interface{}{"component": "resolver", "backend": "http"}),
	}
}

type searchResponse struct {
	Items []struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		StoreID   string  `json:"store_id"`
		StoreName string  `json:"store_name"`
		Price     float64 `json:"price"`
	} `json:"items"`
	Stores []struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	} `json:"stores"`
}

func (r *HTTPResolver) search(ctx context.Context, query, storeID string) (*searchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(r.config.Limit))
	if storeID != "" {
		params.Set("store_id", storeID)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", r.config.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSearchFailed, resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrSearchFailed, err)
	}
	return &out, nil
}

// ResolveStore looks up a store by free-text name.
func (r *HTTPResolver) ResolveStore(ctx context.Context, name string) (*models.ResolvedStore, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	out, err := r.search(ctx, name, "")
	if err != nil {
		metrics.ResolutionsTotal.WithLabelValues("store", "error").Inc()
		return nil, err
	}
	if len(out.Stores) == 0 {
		metrics.ResolutionsTotal.WithLabelValues("store", "unmatched").Inc()
		return nil, nil
	}

	top := out.Stores[0]
	confidence := top.Score
	if confidence <= 0 || confidence > 1 {
		confidence = 0.8
	}
	metrics.ResolutionsTotal.WithLabelValues("store", "matched").Inc()
	return &models.ResolvedStore{
		ID:         top.ID,
		Name:       top.Name,
		Matched:    true,
		Confidence: confidence,
	}, nil
}

// ResolveFood resolves each item independently and concurrently. When
// storeID is given it is passed through so results come from that store
// only.
func (r *HTTPResolver) ResolveFood(ctx context.Context, items []string, storeID string) ([]models.ResolvedFood, error) {
	return resolveFoodConcurrently(ctx, items, func(ctx context.Context, item string) *models.ResolvedFood {
		out, err := r.search(ctx, item, storeID)
		if err != nil {
			r.logger.Warn("food search failed", map[string]interface{}{
				"query": item,
				"error": err.Error(),
			})
			return nil
		}
		if len(out.Items) == 0 {
			return nil
		}
		top := out.Items[0]
		return &models.ResolvedFood{
			Query:     item,
			ID:        top.ID,
			Name:      top.Name,
			StoreID:   top.StoreID,
			StoreName: top.StoreName,
			Price:     top.Price,
			Matched:   true,
		}
	}), nil
}
