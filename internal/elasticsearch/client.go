package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/dwai-labs/newsletter-generator/internal/logger"
	"github.com/dwai-labs/newsletter-generator/internal/models"
)

// CreatedAtPipeline stamps created_at with the ingest node's clock.
const CreatedAtPipeline = "newsletter-created-at"

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("article not found")

// Client wraps go-elasticsearch with helpers tailored to this project.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

// Config selects the cluster and index.
type Config struct {
	Addr   string
	Index  string
	APIKey string
}

// SearchParams narrow the article listing query.
type SearchParams struct {
	Query       string
	CategoryKey string
	From        int
	Size        int
}

// SearchResult bundles hits and total count.
type SearchResult struct {
	Total int64                  `json:"total"`
	Items []models.ArticleRecord `json:"items"`
}

// New instantiates the Elasticsearch client.
func New(cfg Config, log *slog.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Addr},
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	if log == nil {
		log = logger.Discard()
	}

	return &Client{es: es, index: cfg.Index, log: log}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}

	return nil
}

// EnsurePipeline installs the ingest pipeline that assigns created_at.
func (c *Client) EnsurePipeline(ctx context.Context) error {
	body := map[string]any{
		"description": "assign server-side creation time to newsletter articles",
		"processors": []map[string]any{
			{"set": map[string]any{
				"field": "created_at",
				"value": "{{_ingest.timestamp}}",
			}},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal pipeline: %w", err)
	}

	req := esapi.IngestPutPipelineRequest{
		PipelineID: CreatedAtPipeline,
		Body:       bytes.NewReader(payload),
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("put pipeline: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("put pipeline failed: %s", readError(res.Body))
	}
	return nil
}

// IndexArticle writes a new document and returns the id Elasticsearch generated.
func (c *Client) IndexArticle(ctx context.Context, rec models.ArticleRecord) (string, error) {
	rec.ID = ""
	rec.CreatedAt = nil

	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:    c.index,
		Body:     bytes.NewReader(payload),
		Pipeline: CreatedAtPipeline,
		Refresh:  "false",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return "", fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return "", fmt.Errorf("index doc failed: %s", readError(res.Body))
	}

	var parsed struct {
		ID string `json:"_id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode index response: %w", err)
	}
	if parsed.ID == "" {
		return "", errors.New("index response carried no document id")
	}

	c.log.Debug("indexed article", slog.String("id", parsed.ID), slog.String("index", c.index))
	return parsed.ID, nil
}

// GetArticle fetches one article by document id.
func (c *Client) GetArticle(ctx context.Context, id string) (*models.ArticleRecord, error) {
	req := esapi.GetRequest{Index: c.index, DocumentID: id}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("get doc: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("get doc failed: %s", readError(res.Body))
	}

	var parsed struct {
		ID     string               `json:"_id"`
		Found  bool                 `json:"found"`
		Source models.ArticleRecord `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode get response: %w", err)
	}
	if !parsed.Found {
		return nil, ErrNotFound
	}

	rec := parsed.Source
	rec.ID = parsed.ID
	return &rec, nil
}

// SearchArticles lists articles newest first with optional filters.
func (c *Client) SearchArticles(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Size <= 0 {
		params.Size = 20
	}
	if params.Size > 200 {
		params.Size = 200
	}
	if params.From < 0 {
		params.From = 0
	}

	must := make([]map[string]any, 0, 1)
	filters := make([]map[string]any, 0, 1)

	if params.Query != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":  params.Query,
				"fields": []string{"title^2", "excerpt", "body"},
			},
		})
	}

	if params.CategoryKey != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{
				"category_key": params.CategoryKey,
			},
		})
	}

	boolQuery := map[string]any{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	if len(must) == 0 && len(filters) == 0 {
		boolQuery["must"] = []map[string]any{
			{"match_all": map[string]any{}},
		}
	}

	body := map[string]any{
		"from":             params.From,
		"size":             params.Size,
		"track_total_hits": true,
		"query": map[string]any{
			"bool": boolQuery,
		},
		"sort": []map[string]any{
			{"created_at": map[string]any{"order": "desc", "unmapped_type": "date"}},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", readError(res.Body))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID     string               `json:"_id"`
				Source models.ArticleRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]models.ArticleRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		rec := hit.Source
		rec.ID = hit.ID
		items = append(items, rec)
	}

	return &SearchResult{
		Total: parsed.Hits.Total.Value,
		Items: items,
	}, nil
}

// DeleteOlderThan removes articles created before now-maxAge using batched delete-by-query.
// It loops until a batch returns fewer deleted documents than the requested batchSize.
func (c *Client) DeleteOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	cutoff := time.Now().Add(-maxAge).UTC().Format(time.RFC3339)
	totalDeleted := int64(0)

	for {
		body := map[string]any{
			"max_docs": batchSize,
			"query": map[string]any{
				"range": map[string]any{
					"created_at": map[string]any{
						"lte": cutoff,
					},
				},
			},
		}

		payload, err := json.Marshal(body)
		if err != nil {
			return totalDeleted, fmt.Errorf("marshal delete body: %w", err)
		}

		res, err := c.es.DeleteByQuery(
			[]string{c.index},
			bytes.NewReader(payload),
			c.es.DeleteByQuery.WithContext(ctx),
			c.es.DeleteByQuery.WithWaitForCompletion(true),
			c.es.DeleteByQuery.WithConflicts("proceed"),
			c.es.DeleteByQuery.WithScrollSize(batchSize),
		)
		if err != nil {
			return totalDeleted, fmt.Errorf("delete by query: %w", err)
		}

		if res.IsError() {
			msg := readError(res.Body)
			res.Body.Close()
			return totalDeleted, fmt.Errorf("delete by query failed: %s", msg)
		}

		var parsed struct {
			Deleted int64 `json:"deleted"`
		}
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			res.Body.Close()
			return totalDeleted, fmt.Errorf("decode delete response: %w", err)
		}
		res.Body.Close()

		totalDeleted += parsed.Deleted

		if parsed.Deleted < int64(batchSize) {
			break
		}
	}

	return totalDeleted, nil
}

// Health checks cluster health.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("cluster health bad: %s", readError(res.Body))
	}
	return nil
}

func readError(r io.Reader) string {
	data, _ := io.ReadAll(r)
	return strings.TrimSpace(string(data))
}
