package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/price-tracker/app/models"
)

// PreferencesKey holds the device owner's display preferences.
const PreferencesKey = "user_preferences"

// PreferencesService reads and updates display preferences.
type PreferencesService struct {
	store  KVStore
	logger *zap.Logger
	mu     sync.Mutex
}

// NewPreferencesService creates a PreferencesService.
func NewPreferencesService(store KVStore, logger *zap.Logger) *PreferencesService {
	return &PreferencesService{store: store, logger: logger}
}

// Get returns the stored preferences with defaults filled in.
func (ps *PreferencesService) Get(ctx context.Context) (models.Preferences, error) {
	defaults := models.DefaultPreferences()

	raw, found, err := ps.store.Get(ctx, PreferencesKey)
	if err != nil {
		return models.Preferences{}, storageErr("load preferences", err)
	}
	if !found {
		return defaults, nil
	}

	var prefs models.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		ps.logger.Warn("Preferences unreadable, using defaults", zap.Error(err))
		return defaults, nil
	}
	if prefs.Currency == "" {
		prefs.Currency = defaults.Currency
	}
	if prefs.Unit == "" {
		prefs.Unit = defaults.Unit
	}
	return prefs, nil
}

// SetCurrency stores a supported ISO currency code.
func (ps *PreferencesService) SetCurrency(ctx context.Context, code string) (models.Preferences, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !models.IsSupportedCurrency(code) {
		return models.Preferences{}, invalid("unsupported currency " + code)
	}
	return ps.update(ctx, func(p *models.Preferences) { p.Currency = code })
}

// SetUnit stores the display unit.
func (ps *PreferencesService) SetUnit(ctx context.Context, unit string) (models.Preferences, error) {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return models.Preferences{}, invalid("unit is required")
	}
	return ps.update(ctx, func(p *models.Preferences) { p.Unit = unit })
}

func (ps *PreferencesService) update(ctx context.Context, apply func(*models.Preferences)) (models.Preferences, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	prefs, err := ps.Get(ctx)
	if err != nil {
		return models.Preferences{}, err
	}
	apply(&prefs)
	if err := ps.store.Set(ctx, PreferencesKey, prefs); err != nil {
		return models.Preferences{}, storageErr("save preferences", err)
	}
	return prefs, nil
}
