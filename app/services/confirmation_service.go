package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/price-tracker/app/models"
	"github.com/price-tracker/internal/clock"
)

// ConfirmationsPrefix prefixes each user's confirmation record: confirmations_<userID>.
const ConfirmationsPrefix = "confirmations_"

// ConfirmResult outcome of a successful Confirm or Unconfirm.
type ConfirmResult struct {
	Product       *models.Product `json:"product"`
	Confirmations int             `json:"confirmations"`
}

// ConfirmationService tracks which prices each user has vouched for and keeps
// the per-price confirmation counts in step.
type ConfirmationService struct {
	store    KVStore
	products *ProductService
	clock    clock.Clock
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewConfirmationService creates a ConfirmationService.
func NewConfirmationService(store KVStore, products *ProductService, clk clock.Clock, logger *zap.Logger) *ConfirmationService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &ConfirmationService{
		store:    store,
		products: products,
		clock:    clk,
		logger:   logger,
	}
}

func confirmationsKey(userID string) string {
	return ConfirmationsPrefix + userID
}

func requireIDs(userID, productID, priceID string) error {
	var reasons []string
	if strings.TrimSpace(userID) == "" {
		reasons = append(reasons, "user id is required")
	}
	if strings.TrimSpace(productID) == "" {
		reasons = append(reasons, "product id is required")
	}
	if strings.TrimSpace(priceID) == "" {
		reasons = append(reasons, "price id is required")
	}
	if len(reasons) > 0 {
		return invalid(reasons...)
	}
	return nil
}

// Confirm records that userID vouches for the price and increments its count.
func (cs *ConfirmationService) Confirm(ctx context.Context, userID, productID, priceID string) (*ConfirmResult, error) {
	if err := requireIDs(userID, productID, priceID); err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	record, err := cs.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record.Contains(priceID) {
		return nil, ErrAlreadyConfirmed
	}

	product, count, err := cs.products.AdjustConfirmations(ctx, productID, priceID, 1)
	if err != nil {
		return nil, err
	}

	record.ConfirmedPriceIDs = append(record.ConfirmedPriceIDs, priceID)
	if err := cs.save(ctx, record); err != nil {
		return nil, err
	}

	cs.logger.Info("Price confirmed",
		zap.String("user_id", userID),
		zap.String("price_id", priceID),
		zap.Int("confirmations", count))
	return &ConfirmResult{Product: product, Confirmations: count}, nil
}

// Unconfirm withdraws the user's confirmation. The count never drops below zero.
func (cs *ConfirmationService) Unconfirm(ctx context.Context, userID, productID, priceID string) (*ConfirmResult, error) {
	if err := requireIDs(userID, productID, priceID); err != nil {
		return nil, err
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	record, err := cs.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !record.Contains(priceID) {
		return nil, ErrNotConfirmed
	}

	product, count, err := cs.products.AdjustConfirmations(ctx, productID, priceID, -1)
	if err != nil {
		return nil, err
	}

	kept := record.ConfirmedPriceIDs[:0]
	for _, id := range record.ConfirmedPriceIDs {
		if id != priceID {
			kept = append(kept, id)
		}
	}
	record.ConfirmedPriceIDs = kept
	if err := cs.save(ctx, record); err != nil {
		return nil, err
	}

	cs.logger.Info("Price confirmation removed", zap.String("user_id", userID), zap.String("price_id", priceID))
	return &ConfirmResult{Product: product, Confirmations: count}, nil
}

// HasConfirmed reports whether userID already confirmed priceID.
func (cs *ConfirmationService) HasConfirmed(ctx context.Context, userID, priceID string) (bool, error) {
	record, err := cs.load(ctx, userID)
	if err != nil {
		return false, err
	}
	return record.Contains(priceID), nil
}

// ForUser returns the user's record, empty when none is stored.
func (cs *ConfirmationService) ForUser(ctx context.Context, userID string) (*models.UserConfirmations, error) {
	return cs.load(ctx, userID)
}

// Stats summarizes the user's confirmations.
func (cs *ConfirmationService) Stats(ctx context.Context, userID string) (models.ConfirmationStats, error) {
	record, err := cs.load(ctx, userID)
	if err != nil {
		return models.ConfirmationStats{}, err
	}
	stats := models.ConfirmationStats{
		UserID:         userID,
		TotalConfirmed: len(record.ConfirmedPriceIDs),
	}
	if !record.UpdatedAt.IsZero() {
		updated := record.UpdatedAt
		stats.UpdatedAt = &updated
	}
	return stats, nil
}

// Clear forgets every confirmation of the user. Price counts are left as they are.
func (cs *ConfirmationService) Clear(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("user id is required")
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.store.Delete(ctx, confirmationsKey(userID)); err != nil {
		return storageErr("clear confirmations", err)
	}
	cs.logger.Info("Confirmations cleared", zap.String("user_id", userID))
	return nil
}

// load accepts both the current object shape and a bare array of price IDs.
func (cs *ConfirmationService) load(ctx context.Context, userID string) (*models.UserConfirmations, error) {
	empty := &models.UserConfirmations{UserID: userID, ConfirmedPriceIDs: []string{}}

	raw, found, err := cs.store.Get(ctx, confirmationsKey(userID))
	if err != nil {
		return nil, storageErr("load confirmations", err)
	}
	if !found {
		return empty, nil
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		empty.ConfirmedPriceIDs = ids
		return empty, nil
	}

	var record models.UserConfirmations
	if err := json.Unmarshal(raw, &record); err != nil {
		cs.logger.Warn("Confirmation record is corrupted, treating as empty",
			zap.String("user_id", userID), zap.Error(err))
		return empty, nil
	}
	record.UserID = userID
	if record.ConfirmedPriceIDs == nil {
		record.ConfirmedPriceIDs = []string{}
	}
	return &record, nil
}

func (cs *ConfirmationService) save(ctx context.Context, record *models.UserConfirmations) error {
	record.UpdatedAt = cs.clock.Now().UTC()
	if err := cs.store.Set(ctx, confirmationsKey(record.UserID), record); err != nil {
		return storageErr("save confirmations", err)
	}
	return nil
}
