package models

import "time"

// DefaultMerchantType is assigned when a merchant is added without a type.
const DefaultMerchantType = "Other"

// Merchant a business that may have several branches.
type Merchant struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Photo      string     `json:"photo,omitempty"`
	Addresses  []Address  `json:"addresses"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	UsageCount int        `json:"usage_count"`
}

// Address one physical branch of a merchant.
type Address struct {
	ID           string     `json:"id"`
	Street       string     `json:"street"`
	Neighborhood string     `json:"neighborhood,omitempty"`
	City         string     `json:"city,omitempty"`
	DisplayName  string     `json:"display_name"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
}

// BranchDisplayName builds the "Name - Street" label shown next to prices.
func BranchDisplayName(merchantName, street string) string {
	return merchantName + " - " + street
}

// RecentActivity is the last use time, falling back to creation time.
func (m *Merchant) RecentActivity() time.Time {
	if m.LastUsedAt != nil {
		return *m.LastUsedAt
	}
	return m.CreatedAt
}

// FindAddress returns the index of the address with the given ID, or -1.
func (m *Merchant) FindAddress(addressID string) int {
	for i := range m.Addresses {
		if m.Addresses[i].ID == addressID {
			return i
		}
	}
	return -1
}

// MerchantChain merchants sharing a normalized name, viewed as one chain.
type MerchantChain struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	Photo          string     `json:"photo,omitempty"`
	IsChain        bool       `json:"is_chain"`
	BranchCount    int        `json:"branch_count"`
	Addresses      []Address  `json:"addresses"`
	TopAddresses   []Address  `json:"top_addresses"`
	PrimaryAddress *Address   `json:"primary_address,omitempty"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
	UsageCount     int        `json:"usage_count"`
	MerchantIDs    []string   `json:"merchant_ids"`
}

// AsMerchant flattens the chain into a single merchant record carrying every branch.
func (c *MerchantChain) AsMerchant() Merchant {
	return Merchant{
		ID:         c.ID,
		Name:       c.Name,
		Type:       c.Type,
		Photo:      c.Photo,
		Addresses:  c.Addresses,
		LastUsedAt: c.LastUsedAt,
		UsageCount: c.UsageCount,
	}
}
