package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"agentic-nlu/internal/common/logger"
	"agentic-nlu/internal/common/metrics"
	"agentic-nlu/internal/models"
)

var ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")

type ESConfig struct {
	StoreIndex string
	FoodIndex  string
	Limit      int
}

// ESResolver runs catalog lookups directly against Elasticsearch indices,
// for deployments where the search service is bypassed.
type ESResolver struct {
	config *ESConfig
	client *elasticsearch.Client
	logger logger.Logger
}

func NewESResolver(config *ESConfig, client *elasticsearch.Client, log logger.Logger) *ESResolver {
	if config.Limit == 0 {
		config.Limit = 5
	}
	return &ESResolver{
		config: config,
		client: client,
		logger: log.With(map[string]interface{}{"component": "resolver", "backend": "elasticsearch"}),
	}
}

func buildNameQuery(query, storeID string) map[string]interface{} {
	mustClauses := []interface{}{
		map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^3", "aliases^2", "description"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		},
	}

	filterClauses := []interface{}{}
	if storeID != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"store_id": storeID},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"filter": filterClauses,
			},
		},
	}
}

type esHit struct {
	Score  float64 `json:"_score"`
	Source struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		StoreID   string  `json:"store_id"`
		StoreName string  `json:"store_name"`
		Price     float64 `json:"price"`
	} `json:"_source"`
}

func (r *ESResolver) search(ctx context.Context, index, query, storeID string) ([]esHit, error) {
	body, _ := json.Marshal(buildNameQuery(query, storeID))
	size := r.config.Limit

	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	resp, err := req.Do(ctx, r.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchQueryFailed, resp.Status())
	}

	var out struct {
		Hits struct {
			MaxScore float64 `json:"max_score"`
			Hits     []esHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrSearchQueryFailed, err)
	}
	return out.Hits.Hits, nil
}

func (r *ESResolver) ResolveStore(ctx context.Context, name string) (*models.ResolvedStore, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	hits, err := r.search(ctx, r.config.StoreIndex, name, "")
	if err != nil {
		metrics.ResolutionsTotal.WithLabelValues("store", "error").Inc()
		return nil, err
	}
	if len(hits) == 0 {
		metrics.ResolutionsTotal.WithLabelValues("store", "unmatched").Inc()
		return nil, nil
	}

	top := hits[0]
	confidence := top.Score / 10
	if confidence <= 0 || confidence > 1 {
		confidence = 0.8
	}
	metrics.ResolutionsTotal.WithLabelValues("store", "matched").Inc()
	return &models.ResolvedStore{
		ID:         top.Source.ID,
		Name:       top.Source.Name,
		Matched:    true,
		Confidence: confidence,
	}, nil
}

func (r *ESResolver) ResolveFood(ctx context.Context, items []string, storeID string) ([]models.ResolvedFood, error) {
	return resolveFoodConcurrently(ctx, items, func(ctx context.Context, item string) *models.ResolvedFood {
		hits, err := r.search(ctx, r.config.FoodIndex, item, storeID)
		if err != nil {
			r.logger.Warn("food search failed", map[string]interface{}{
				"query": item,
				"error": err.Error(),
			})
			return nil
		}
		if len(hits) == 0 {
			return nil
		}
		top := hits[0]
		return &models.ResolvedFood{
			Query:     item,
			ID:        top.Source.ID,
			Name:      top.Source.Name,
			StoreID:   top.Source.StoreID,
			StoreName: top.Source.StoreName,
			Price:     top.Source.Price,
			Matched:   true,
		}
	}), nil
}
