package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/price-tracker/app/models"
	"github.com/price-tracker/helpers/utils"
	"github.com/price-tracker/internal/clock"
	"github.com/price-tracker/internal/dedup"
	"github.com/price-tracker/internal/normalizer"
	"github.com/price-tracker/internal/pricing"
	"github.com/price-tracker/internal/similarity"
)

// MerchantsKey holds the whole merchant collection as one JSON array.
const MerchantsKey = "merchants"

// MerchantsBackupPrefix prefixes copies of a merchant collection that could
// not be fully decoded. They are written before the collection can be
// overwritten.
const MerchantsBackupPrefix = "merchants_corrupt_"

// MerchantInput data for a new merchant and its first branch.
type MerchantInput struct {
	Name         string
	Type         string
	Photo        string
	Street       string
	Neighborhood string
	City         string
}

// AddressInput data for a new branch.
type AddressInput struct {
	Street       string
	Neighborhood string
	City         string
}

// MerchantPatch editable merchant fields. Nil fields are left unchanged.
type MerchantPatch struct {
	Name  *string
	Type  *string
	Photo *string
}

// MerchantService manages the merchant collection and its branches.
type MerchantService struct {
	store  KVStore
	clock  clock.Clock
	newID  func() string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewMerchantService creates a MerchantService. A nil clock means the system clock.
func NewMerchantService(store KVStore, clk clock.Clock, logger *zap.Logger) *MerchantService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &MerchantService{
		store:  store,
		clock:  clk,
		newID:  utils.NewID,
		logger: logger,
	}
}

// List returns every merchant in stored order.
func (ms *MerchantService) List(ctx context.Context) ([]models.Merchant, error) {
	return ms.load(ctx)
}

// load decodes the collection one element at a time so a single bad
// record does not hide the rest.
func (ms *MerchantService) load(ctx context.Context) ([]models.Merchant, error) {
	raw, found, err := ms.store.Get(ctx, MerchantsKey)
	if err != nil {
		return nil, storageErr("load merchants", err)
	}
	if !found {
		return []models.Merchant{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		if err := ms.backup(ctx, raw); err != nil {
			return nil, err
		}
		ms.logger.Warn("Merchant collection is corrupted, treating as empty", zap.Error(err))
		return []models.Merchant{}, nil
	}

	merchants := make([]models.Merchant, 0, len(elems))
	for i, elem := range elems {
		var m models.Merchant
		if err := json.Unmarshal(elem, &m); err != nil {
			ms.logger.Warn("Skipping corrupted merchant", zap.Int("index", i), zap.Error(err))
			continue
		}
		merchants = append(merchants, m)
	}
	if len(merchants) < len(elems) {
		if err := ms.backup(ctx, raw); err != nil {
			return nil, err
		}
	}
	return merchants, nil
}

// backup copies an undecodable collection, as a JSON string, to a key derived
// from its content. Repeated reads of the same bytes reuse the key. If the
// copy cannot be written the load fails, so nothing overwrites the original.
func (ms *MerchantService) backup(ctx context.Context, raw json.RawMessage) error {
	key := MerchantsBackupPrefix + utils.ContentID(raw)
	if err := ms.store.Set(ctx, key, string(raw)); err != nil {
		ms.logger.Error("Failed to back up corrupted merchant collection", zap.String("key", key), zap.Error(err))
		return storageErr("back up merchants", err)
	}
	ms.logger.Error("Merchant collection partly unreadable, original copied", zap.String("key", key))
	return nil
}

func (ms *MerchantService) save(ctx context.Context, merchants []models.Merchant) error {
	if err := ms.store.Set(ctx, MerchantsKey, merchants); err != nil {
		return storageErr("save merchants", err)
	}
	return nil
}

// Get returns the merchant with id.
func (ms *MerchantService) Get(ctx context.Context, id string) (*models.Merchant, error) {
	merchants, err := ms.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range merchants {
		if merchants[i].ID == id {
			return &merchants[i], nil
		}
	}
	return nil, ErrNotFound
}

// SearchByName returns merchants whose normalized name contains the
// normalized term, closest first. Abbreviations on either side are expanded
// so "Farmacia Dr. Ross" matches "doctor".
func (ms *MerchantService) SearchByName(ctx context.Context, term string) ([]models.Merchant, error) {
	merchants, err := ms.load(ctx)
	if err != nil {
		return nil, err
	}

	needle := normalizer.Normalize(term)
	expandedNeedle := normalizer.Normalize(normalizer.ExpandAbbreviations(term))

	var (
		hits  []models.Merchant
		names []string
	)
	for _, m := range merchants {
		name := normalizer.Normalize(m.Name)
		if strings.Contains(name, needle) ||
			strings.Contains(normalizer.Normalize(normalizer.ExpandAbbreviations(m.Name)), expandedNeedle) {
			hits = append(hits, m)
			names = append(names, m.Name)
		}
	}

	out := make([]models.Merchant, 0, len(hits))
	for _, r := range similarity.Rank(term, names) {
		out = append(out, hits[r.Index])
	}
	return out, nil
}

// CheckDuplicates classifies candidate against the stored collection.
func (ms *MerchantService) CheckDuplicates(ctx context.Context, candidate dedup.Candidate) (dedup.Verdict, error) {
	if strings.TrimSpace(candidate.Name) == "" {
		return dedup.Verdict{}, invalid("name is required")
	}
	merchants, err := ms.load(ctx)
	if err != nil {
		return dedup.Verdict{}, err
	}

	verdict := dedup.Classify(candidate, merchants)
	if verdict.IsDuplicate {
		ms.logger.Info("Possible duplicate merchant",
			zap.String("name", candidate.Name),
			zap.String("kind", verdict.Kind),
			zap.Int("matches", len(verdict.Matches)))
	}
	return verdict, nil
}

// Add creates a merchant with a single branch.
func (ms *MerchantService) Add(ctx context.Context, in MerchantInput) (*models.Merchant, error) {
	name := strings.TrimSpace(in.Name)
	street := strings.TrimSpace(in.Street)

	var reasons []string
	if name == "" {
		reasons = append(reasons, "name is required")
	}
	if street == "" {
		reasons = append(reasons, "street is required")
	}
	if len(reasons) > 0 {
		return nil, invalid(reasons...)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	merchants, err := ms.load(ctx)
	if err != nil {
		return nil, err
	}

	now := ms.clock.Now().UTC()
	merchantType := strings.TrimSpace(in.Type)
	if merchantType == "" {
		merchantType = models.DefaultMerchantType
	}
	m := models.Merchant{
		ID:         ms.newID(),
		Name:       name,
		Type:       merchantType,
		Photo:      in.Photo,
		Addresses:  []models.Address{ms.newAddress(name, AddressInput{Street: street, Neighborhood: in.Neighborhood, City: in.City}, now)},
		CreatedAt:  now,
		LastUsedAt: &now,
	}

	merchants = append(merchants, m)
	if err := ms.save(ctx, merchants); err != nil {
		return nil, err
	}

	ms.logger.Info("Merchant added", zap.String("id", m.ID), zap.String("name", m.Name))
	return &m, nil
}

func (ms *MerchantService) newAddress(merchantName string, in AddressInput, now time.Time) models.Address {
	street := strings.TrimSpace(in.Street)
	return models.Address{
		ID:           ms.newID(),
		Street:       street,
		Neighborhood: strings.TrimSpace(in.Neighborhood),
		City:         strings.TrimSpace(in.City),
		DisplayName:  models.BranchDisplayName(merchantName, street),
		LastUsedAt:   &now,
	}
}

// Edit merges patch into the merchant. A rename rewrites branch display names.
func (ms *MerchantService) Edit(ctx context.Context, id string, patch MerchantPatch) (*models.Merchant, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalid("name cannot be empty")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	merchants, err := ms.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOfMerchant(merchants, id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	m := &merchants[idx]
	if patch.Name != nil {
		m.Name = strings.TrimSpace(*patch.Name)
		for i := range m.Addresses {
			m.Addresses[i].DisplayName = models.BranchDisplayName(m.Name, m.Addresses[i].Street)
		}
	}
	if patch.Type != nil {
		m.Type = *patch.Type
	}
	if patch.Photo != nil {
		m.Photo = *patch.Photo
	}

	if err := ms.save(ctx, merchants); err != nil {
		return nil, err
	}
	out := *m
	return &out, nil
}

// Delete removes the merchant.
func (ms *MerchantService) Delete(ctx context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	merchants, err := ms.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOfMerchant(merchants, id)
	if idx < 0 {
		return ErrNotFound
	}

	merchants = append(merchants[:idx], merchants[idx+1:]...)
	if err := ms.save(ctx, merchants); err != nil {
		return err
	}
	ms.logger.Info("Merchant deleted", zap.String("id", id))
	return nil
}

// AddAddress appends a branch to the merchant and returns the updated merchant.
func (ms *MerchantService) AddAddress(ctx context.Context, merchantID string, in AddressInput) (*models.Merchant, error) {
	if strings.TrimSpace(in.Street) == "" {
		return nil, invalid("street is required")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	merchants, err := ms.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOfMerchant(merchants, merchantID)
	if idx < 0 {
		return nil, ErrNotFound
	}

	m := &merchants[idx]
	m.Addresses = append(m.Addresses, ms.newAddress(m.Name, in, ms.clock.Now().UTC()))
	if err := ms.save(ctx, merchants); err != nil {
		return nil, err
	}
	out := *m
	return &out, nil
}

// DeleteAddress removes one branch.
func (ms *MerchantService) DeleteAddress(ctx context.Context, merchantID, addressID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	merchants, err := ms.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOfMerchant(merchants, merchantID)
	if idx < 0 {
		return ErrNotFound
	}

	m := &merchants[idx]
	a := m.FindAddress(addressID)
	if a < 0 {
		return ErrNotFound
	}
	m.Addresses = append(m.Addresses[:a], m.Addresses[a+1:]...)
	return ms.save(ctx, merchants)
}

// RecordUsage bumps the usage counter and last-use time of the merchant and,
// when addressID is set, of that branch.
func (ms *MerchantService) RecordUsage(ctx context.Context, merchantID, addressID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	merchants, err := ms.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOfMerchant(merchants, merchantID)
	if idx < 0 {
		return ErrNotFound
	}

	now := ms.clock.Now().UTC()
	m := &merchants[idx]
	m.LastUsedAt = &now
	m.UsageCount++
	if addressID != "" {
		if a := m.FindAddress(addressID); a >= 0 {
			m.Addresses[a].LastUsedAt = &now
		}
	}
	return ms.save(ctx, merchants)
}

// ListByRecentUse returns merchants most recently used first; never-used
// merchants fall back to their creation time.
func (ms *MerchantService) ListByRecentUse(ctx context.Context) ([]models.Merchant, error) {
	merchants, err := ms.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(merchants, func(i, j int) bool {
		return merchants[i].RecentActivity().After(merchants[j].RecentActivity())
	})
	return merchants, nil
}

// ListChains groups merchants sharing a normalized name.
func (ms *MerchantService) ListChains(ctx context.Context) ([]models.MerchantChain, error) {
	merchants, err := ms.load(ctx)
	if err != nil {
		return nil, err
	}
	return dedup.GroupByChain(merchants), nil
}

// Directory snapshots the collection for branch resolution.
func (ms *MerchantService) Directory(ctx context.Context) (pricing.Directory, error) {
	merchants, err := ms.load(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.Directory(merchants), nil
}

func indexOfMerchant(merchants []models.Merchant, id string) int {
	for i := range merchants {
		if merchants[i].ID == id {
			return i
		}
	}
	return -1
}
