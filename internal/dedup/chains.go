package dedup

import (
	"sort"
	"time"

	"github.com/price-tracker/app/models"
	"github.com/price-tracker/internal/normalizer"
)

const topAddresses = 3

// GroupByChain folds merchants sharing a normalized name into chains.
// Branches are ordered by last use, and chains by their most recent use.
func GroupByChain(merchants []models.Merchant) []models.MerchantChain {
	index := make(map[string]int)
	var chains []models.MerchantChain
	var members [][]models.Merchant

	for _, m := range merchants {
		key := normalizer.Normalize(m.Name)
		i, ok := index[key]
		if !ok {
			index[key] = len(chains)
			chains = append(chains, models.MerchantChain{
				ID:          m.ID,
				Name:        m.Name,
				Type:        m.Type,
				BranchCount: 1,
				Addresses:   append([]models.Address(nil), m.Addresses...),
				LastUsedAt:  m.LastUsedAt,
				UsageCount:  m.UsageCount,
				MerchantIDs: []string{m.ID},
			})
			members = append(members, []models.Merchant{m})
			continue
		}

		c := &chains[i]
		c.IsChain = true
		c.BranchCount++
		c.Addresses = append(c.Addresses, m.Addresses...)
		c.MerchantIDs = append(c.MerchantIDs, m.ID)
		c.UsageCount += m.UsageCount
		if after(m.LastUsedAt, c.LastUsedAt) {
			c.LastUsedAt = m.LastUsedAt
		}
		members[i] = append(members[i], m)
	}

	for i := range chains {
		c := &chains[i]
		sort.SliceStable(c.Addresses, func(a, b int) bool {
			return unixOrZero(c.Addresses[a].LastUsedAt).After(unixOrZero(c.Addresses[b].LastUsedAt))
		})
		n := len(c.Addresses)
		if n > topAddresses {
			n = topAddresses
		}
		c.TopAddresses = c.Addresses[:n]
		if len(c.Addresses) > 0 {
			primary := c.Addresses[0]
			c.PrimaryAddress = &primary
		}

		group := members[i]
		sort.SliceStable(group, func(a, b int) bool {
			return unixOrZero(group[a].LastUsedAt).After(unixOrZero(group[b].LastUsedAt))
		})
		c.Photo = group[0].Photo
	}

	sort.SliceStable(chains, func(a, b int) bool {
		return unixOrZero(chains[a].LastUsedAt).After(unixOrZero(chains[b].LastUsedAt))
	})
	return chains
}

func after(t, than *time.Time) bool {
	return unixOrZero(t).After(unixOrZero(than))
}

func unixOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Unix(0, 0)
	}
	return *t
}
