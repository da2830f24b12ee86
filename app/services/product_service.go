package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/price-tracker/app/models"
	"github.com/price-tracker/helpers/utils"
	"github.com/price-tracker/internal/clock"
	"github.com/price-tracker/internal/normalizer"
	"github.com/price-tracker/internal/pricing"
)

// ProductPrefix prefixes every product key: product_<id>.
const ProductPrefix = "product_"

// MaxProductNameLength is the longest accepted product name, in characters.
const MaxProductNameLength = 200

const searchLimit = 50

// ProductIndex is a full-text index over product names.
type ProductIndex interface {
	Index(ctx context.Context, p *models.Product) error
	Remove(ctx context.Context, id string) error
	// Search returns matching product IDs, best first.
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// ProductPatch editable product fields. Nil fields are left unchanged.
type ProductPatch struct {
	Name     *string
	Barcode  *string
	Brand    *string
	Category *string
	Image    *string
}

// ProductService stores products and keeps their derived price fields current.
type ProductService struct {
	store      KVStore
	merchants  *MerchantService
	index      ProductIndex
	aggregator *pricing.Aggregator
	clock      clock.Clock
	newID      func() string
	logger     *zap.Logger
	mu         sync.Mutex
}

// NewProductService creates a ProductService. index may be nil, in which case
// name search scans the store.
func NewProductService(store KVStore, merchants *MerchantService, index ProductIndex, clk clock.Clock, logger *zap.Logger) *ProductService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &ProductService{
		store:      store,
		merchants:  merchants,
		index:      index,
		aggregator: pricing.NewAggregator(clk),
		clock:      clk,
		newID:      utils.NewID,
		logger:     logger,
	}
}

func productKey(id string) string {
	return ProductPrefix + id
}

func validateProduct(p *models.Product) error {
	var reasons []string
	name := strings.TrimSpace(p.Name)
	if name == "" {
		reasons = append(reasons, "name is required")
	}
	if utf8.RuneCountInString(p.Name) > MaxProductNameLength {
		reasons = append(reasons, "name cannot exceed 200 characters")
	}
	if len(reasons) > 0 {
		return invalid(reasons...)
	}
	return nil
}

// Save validates and persists p, assigning an ID and timestamps as needed.
func (ps *ProductService) Save(ctx context.Context, p *models.Product) (*models.Product, error) {
	if p == nil {
		return nil, invalid("product is required")
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	return ps.persist(ctx, p)
}

// persist recomputes derived fields and writes p. Callers hold ps.mu.
func (ps *ProductService) persist(ctx context.Context, p *models.Product) (*models.Product, error) {
	now := ps.clock.Now().UTC()
	if p.ID == "" {
		p.ID = ps.newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Prices == nil {
		p.Prices = []models.PriceEntry{}
	}
	ps.aggregator.Recompute(p)

	if err := ps.store.Set(ctx, productKey(p.ID), p); err != nil {
		return nil, storageErr("save product", err)
	}
	ps.reindex(ctx, p)
	return p, nil
}

func (ps *ProductService) reindex(ctx context.Context, p *models.Product) {
	if ps.index == nil {
		return
	}
	if err := ps.index.Index(ctx, p); err != nil {
		ps.logger.Warn("Failed to index product", zap.String("id", p.ID), zap.Error(err))
	}
}

// Update merges patch into the stored product.
func (ps *ProductService) Update(ctx context.Context, id string, patch ProductPatch) (*models.Product, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	p, err := ps.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Barcode != nil {
		p.Barcode = strings.TrimSpace(*patch.Barcode)
	}
	if patch.Brand != nil {
		p.Brand = *patch.Brand
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	return ps.persist(ctx, p)
}

// AddPrice appends a price observation to the product. Usage of the
// referenced branch is recorded afterwards; that second write is not atomic
// with the first and its failure is only logged.
func (ps *ProductService) AddPrice(ctx context.Context, productID string, in pricing.PriceInput) (*models.Product, error) {
	var resolver pricing.BranchResolver
	if _, ok := in.Source.(pricing.BranchSource); ok && ps.merchants != nil {
		dir, err := ps.merchants.Directory(ctx)
		if err != nil {
			return nil, err
		}
		resolver = dir
	}

	ps.mu.Lock()
	p, err := ps.get(ctx, productID)
	if err != nil {
		ps.mu.Unlock()
		return nil, err
	}

	canonical, err := pricing.Canonicalize(in, resolver, ps.clock.Now().UTC(), ps.newID)
	if err != nil {
		ps.mu.Unlock()
		if errors.Is(err, pricing.ErrInvalidValue) {
			return nil, invalid(err.Error())
		}
		return nil, err
	}
	switch {
	case canonical.Unresolved:
		ps.logger.Warn("Price references an unknown branch",
			zap.String("product_id", productID),
			zap.String("merchant_id", canonical.Entry.MerchantID),
			zap.String("address_id", canonical.Entry.AddressID))
	case canonical.Legacy:
		ps.logger.Debug("Price without branch reference", zap.String("product_id", productID))
	}

	p.Prices = append(p.Prices, canonical.Entry)
	saved, err := ps.persist(ctx, p)
	ps.mu.Unlock()
	if err != nil {
		return nil, err
	}

	entry := canonical.Entry
	if entry.MerchantID != "" && !canonical.Unresolved && ps.merchants != nil {
		if err := ps.merchants.RecordUsage(ctx, entry.MerchantID, entry.AddressID); err != nil {
			ps.logger.Warn("Failed to record merchant usage",
				zap.String("merchant_id", entry.MerchantID), zap.Error(err))
		}
	}

	ps.logger.Info("Price added",
		zap.String("product_id", saved.ID),
		zap.String("price_id", entry.ID),
		zap.Float64("value", entry.Value))
	return saved, nil
}

// AdjustConfirmations adds delta to a price's confirmation count, never going below zero.
func (ps *ProductService) AdjustConfirmations(ctx context.Context, productID, priceID string, delta int) (*models.Product, int, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	p, err := ps.get(ctx, productID)
	if err != nil {
		return nil, 0, err
	}
	i := p.FindPrice(priceID)
	if i < 0 {
		return nil, 0, ErrNotFound
	}

	count := p.Prices[i].Confirmations + delta
	if count < 0 {
		count = 0
	}
	p.Prices[i].Confirmations = count

	saved, err := ps.persist(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return saved, count, nil
}

// Get returns the product with id.
func (ps *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return ps.get(ctx, id)
}

func (ps *ProductService) get(ctx context.Context, id string) (*models.Product, error) {
	p, found, err := getJSON[models.Product](ctx, ps.store, productKey(id), ps.logger)
	if err != nil {
		return nil, storageErr("load product", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &p, nil
}

// List returns every stored product ordered by key.
func (ps *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products, err := listJSON[models.Product](ctx, ps.store, ProductPrefix, ps.logger)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	return products, nil
}

// ListByRecentActivity returns products most recently touched first.
func (ps *ProductService) ListByRecentActivity(ctx context.Context) ([]models.Product, error) {
	products, err := ps.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].RecentActivity().After(products[j].RecentActivity())
	})
	return products, nil
}

// SearchByName finds products whose name contains term, ignoring case and
// accents. The index is used when configured; if it fails the store is scanned.
func (ps *ProductService) SearchByName(ctx context.Context, term string) ([]models.Product, error) {
	if ps.index != nil && strings.TrimSpace(term) != "" {
		products, err := ps.searchIndex(ctx, term)
		if err == nil {
			return products, nil
		}
		ps.logger.Warn("Index search failed, scanning store", zap.String("term", term), zap.Error(err))
	}

	products, err := ps.List(ctx)
	if err != nil {
		return nil, err
	}
	needle := normalizer.Fold(term)
	out := make([]models.Product, 0)
	for _, p := range products {
		if strings.Contains(normalizer.Fold(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (ps *ProductService) searchIndex(ctx context.Context, term string) ([]models.Product, error) {
	ids, err := ps.index.Search(ctx, term, searchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p, err := ps.get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			ps.logger.Debug("Index hit without stored product", zap.String("id", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// FindByBarcode returns the product whose trimmed barcode equals code.
func (ps *ProductService) FindByBarcode(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}
	products, err := ps.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].Barcode != "" && strings.TrimSpace(products[i].Barcode) == code {
			return &products[i], nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes the product.
func (ps *ProductService) Delete(ctx context.Context, id string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, err := ps.get(ctx, id); err != nil {
		return err
	}
	if err := ps.store.Delete(ctx, productKey(id)); err != nil {
		return storageErr("delete product", err)
	}
	if ps.index != nil {
		if err := ps.index.Remove(ctx, id); err != nil {
			ps.logger.Warn("Failed to remove product from index", zap.String("id", id), zap.Error(err))
		}
	}
	ps.logger.Info("Product deleted", zap.String("id", id))
	return nil
}

// RecordInteraction marks the product as just viewed or edited.
func (ps *ProductService) RecordInteraction(ctx context.Context, id string) (*models.Product, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	p, err := ps.get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := ps.clock.Now().UTC()
	p.LastInteractionAt = &now
	return ps.persist(ctx, p)
}

// Stats counts products and prices.
func (ps *ProductService) Stats(ctx context.Context) (models.ProductStats, error) {
	products, err := ps.List(ctx)
	if err != nil {
		return models.ProductStats{}, err
	}
	stats := models.ProductStats{TotalProducts: len(products)}
	for _, p := range products {
		stats.TotalPrices += len(p.Prices)
	}
	if stats.TotalProducts > 0 {
		stats.AveragePerProduct = (2*stats.TotalPrices + stats.TotalProducts) / (2 * stats.TotalProducts)
	}
	return stats, nil
}

// RecomputeAll refreshes derived fields of every product whose values
// changed, which happens as prices age out of the trend window. It returns
// the number of products rewritten.
func (ps *ProductService) RecomputeAll(ctx context.Context) (int, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	products, err := ps.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range products {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		p := &products[i]
		before := derivedOf(p)
		ps.aggregator.Recompute(p)
		if derivedOf(p) == before {
			continue
		}
		if err := ps.store.Set(ctx, productKey(p.ID), p); err != nil {
			return updated, storageErr("save product", err)
		}
		updated++
	}

	ps.logger.Info("Recomputed products", zap.Int("total", len(products)), zap.Int("updated", updated))
	return updated, nil
}

type derived struct {
	bestPrice    float64
	bestMerchant string
	spread       float64
	trend        models.Trend
	trendPercent int
	bestPriceID  string
}

func derivedOf(p *models.Product) derived {
	d := derived{
		bestPrice:    p.BestPrice,
		bestMerchant: p.BestMerchant,
		spread:       p.PriceSpread,
		trend:        p.Trend,
		trendPercent: p.TrendPercent,
	}
	for _, e := range p.Prices {
		if e.IsBest {
			d.bestPriceID = e.ID
			break
		}
	}
	return d
}
