// Package search indexes products in Meilisearch for typo-tolerant name lookup.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"github.com/price-tracker/app/models"
	"github.com/price-tracker/internal/normalizer"
)

const batchSize = 1000

// Config connection settings for the product index.
type Config struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// Document is the indexed shape of a product.
type Document struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
	Brand          string `json:"brand,omitempty"`
	Category       string `json:"category,omitempty"`
	Barcode        string `json:"barcode,omitempty"`
}

// NewDocument builds the document for p.
func NewDocument(p *models.Product) Document {
	return Document{
		ID:             p.ID,
		Name:           p.Name,
		NormalizedName: normalizer.Normalize(p.Name),
		Brand:          p.Brand,
		Category:       p.Category,
		Barcode:        p.Barcode,
	}
}

// ProductIndex keeps a Meilisearch index of product names.
type ProductIndex struct {
	client    meilisearch.ServiceManager
	indexName string
	logger    *zap.Logger
}

// NewProductIndex connects to Meilisearch and checks it is healthy.
func NewProductIndex(cfg Config, logger *zap.Logger) (*ProductIndex, error) {
	client := meilisearch.New(cfg.Host,
		meilisearch.WithAPIKey(cfg.APIKey),
		meilisearch.WithCustomClient(newHTTPClient(cfg.Timeout)))

	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("meilisearch unreachable at %s: %w", cfg.Host, err)
	}

	return &ProductIndex{
		client:    client,
		indexName: cfg.IndexName,
		logger:    logger,
	}, nil
}

// defaultTimeout applies when no timeout is configured.
const defaultTimeout = 5 * time.Second

// newHTTPClient bounds every Meilisearch request by timeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// EnsureSettings configures searchable fields, typo tolerance and the
// street-abbreviation synonyms.
func (pi *ProductIndex) EnsureSettings() error {
	index := pi.client.Index(pi.indexName)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"name", "normalized_name", "brand"},
		FilterableAttributes: []string{"category", "barcode"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "exactness"},
		Synonyms:             Synonyms(normalizer.Abbreviations()),
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  4,
				TwoTypos: 8,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("configure index %s: %w", pi.indexName, err)
	}

	pi.logger.Info("Meilisearch index configured",
		zap.String("index", pi.indexName), zap.Int64("task_uid", task.TaskUID))
	return nil
}

// Synonyms maps each abbreviation to its expansion.
func Synonyms(abbrs []normalizer.Abbreviation) map[string][]string {
	out := make(map[string][]string, len(abbrs))
	for _, a := range abbrs {
		out[a.Abbr] = append(out[a.Abbr], a.Full)
	}
	return out
}

// Index adds or replaces the product's document.
func (pi *ProductIndex) Index(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	task, err := pi.client.Index(pi.indexName).AddDocuments([]Document{NewDocument(p)}, "id")
	if err != nil {
		return fmt.Errorf("index product %s: %w", p.ID, err)
	}
	pi.logger.Debug("Product queued for indexing", zap.String("id", p.ID), zap.Int64("task_uid", task.TaskUID))
	return nil
}

// IndexAll reindexes products in batches.
func (pi *ProductIndex) IndexAll(ctx context.Context, products []models.Product) error {
	index := pi.client.Index(pi.indexName)

	for start := 0; start < len(products); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + batchSize
		if end > len(products) {
			end = len(products)
		}

		docs := make([]Document, 0, end-start)
		for i := start; i < end; i++ {
			docs = append(docs, NewDocument(&products[i]))
		}
		task, err := index.AddDocuments(docs, "id")
		if err != nil {
			return fmt.Errorf("index batch %d-%d: %w", start, end, err)
		}
		pi.logger.Info("Indexed product batch",
			zap.Int("from", start), zap.Int("to", end), zap.Int64("task_uid", task.TaskUID))
	}
	return nil
}

// Remove deletes the product's document.
func (pi *ProductIndex) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := pi.client.Index(pi.indexName).DeleteDocument(id); err != nil {
		return fmt.Errorf("remove product %s: %w", id, err)
	}
	return nil
}

// Search returns the IDs of the best matching products.
func (pi *ProductIndex) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := pi.client.Index(pi.indexName).Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return decodeIDs(result.Hits)
}

// decodeIDs pulls the id field out of each hit, whatever its concrete type.
func decodeIDs[H any](hits []H) ([]string, error) {
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			return nil, fmt.Errorf("encode hit: %w", err)
		}
		var doc struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode hit: %w", err)
		}
		if doc.ID != "" {
			ids = append(ids, doc.ID)
		}
	}
	return ids, nil
}
