// Package pricing derives a product's current best price and trend from its
// price history.
package pricing

import (
	"math"
	"sort"
	"time"

	"github.com/price-tracker/app/models"
	"github.com/price-tracker/internal/clock"
)

const (
	// TrendWindow separates recent prices from historic ones.
	TrendWindow = 30 * 24 * time.Hour
	// StableBand is the percentage change, either way, still reported as stable.
	StableBand = 2.0
)

// Aggregator recomputes derived product fields against an injected clock.
type Aggregator struct {
	clock clock.Clock
}

// NewAggregator creates an Aggregator. A nil clock means the system clock.
func NewAggregator(c clock.Clock) *Aggregator {
	if c == nil {
		c = clock.NewRealClock()
	}
	return &Aggregator{clock: c}
}

// Recompute refreshes p's derived fields as of the aggregator's clock.
func (a *Aggregator) Recompute(p *models.Product) *models.Product {
	return Recompute(p, a.clock.Now())
}

// Recompute fills BestPrice, BestMerchant, PriceSpread, Trend, TrendPercent
// and each entry's IsBest flag in place, and returns p.
//
// Entries are grouped by PriceEntry.Label and only the latest entry of each
// group competes for best and worst price. The trend uses the whole history.
func Recompute(p *models.Product, now time.Time) *models.Product {
	if p == nil {
		return nil
	}

	if len(p.Prices) == 0 {
		p.BestPrice = 0
		p.BestMerchant = models.NoDataMerchant
		p.PriceSpread = 0
		p.Trend = models.TrendStable
		p.TrendPercent = 0
		return p
	}

	current := CurrentPrices(p.Prices)

	sort.SliceStable(current, func(i, j int) bool {
		return p.Prices[current[i]].Value < p.Prices[current[j]].Value
	})
	bestIdx := current[0]
	best := p.Prices[bestIdx]
	worst := p.Prices[current[len(current)-1]]

	p.BestPrice = best.Value
	p.BestMerchant = best.Label()
	p.PriceSpread = worst.Value - best.Value

	for i := range p.Prices {
		p.Prices[i].IsBest = i == bestIdx
	}

	p.Trend, p.TrendPercent = Trend(p.Prices, now)
	return p
}

// CurrentPrices returns, for each merchant label in order of first
// appearance, the index of its most recent entry. Equal timestamps keep the
// earlier entry.
func CurrentPrices(prices []models.PriceEntry) []int {
	groups := make(map[string]int)
	var current []int

	for i, e := range prices {
		label := e.Label()
		g, ok := groups[label]
		if !ok {
			groups[label] = len(current)
			current = append(current, i)
			continue
		}
		if e.Timestamp.After(prices[current[g]].Timestamp) {
			current[g] = i
		}
	}
	return current
}

// Trend compares the mean of entries newer than TrendWindow against the mean
// of older ones. Entries without a timestamp fall in neither side.
func Trend(prices []models.PriceEntry, now time.Time) (models.Trend, int) {
	if len(prices) < 2 {
		return models.TrendStable, 0
	}

	cutoff := now.Add(-TrendWindow)
	var recentSum, historicSum float64
	var recentN, historicN int

	for _, e := range prices {
		if e.Timestamp.IsZero() {
			continue
		}
		if e.Timestamp.Before(cutoff) {
			historicSum += e.Value
			historicN++
		} else {
			recentSum += e.Value
			recentN++
		}
	}

	if recentN == 0 || historicN == 0 {
		return models.TrendStable, 0
	}

	historicMean := historicSum / float64(historicN)
	if historicMean == 0 {
		return models.TrendStable, 0
	}
	recentMean := recentSum / float64(recentN)

	change := (recentMean - historicMean) / historicMean * 100
	percent := roundHalfUp(change)

	switch {
	case change < -StableBand:
		return models.TrendFalling, percent
	case change > StableBand:
		return models.TrendRising, percent
	default:
		return models.TrendStable, percent
	}
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
