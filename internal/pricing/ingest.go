package pricing

import (
	"errors"
	"strings"
	"time"

	"github.com/price-tracker/app/models"
)

// ErrInvalidValue is returned for prices that are not strictly positive.
var ErrInvalidValue = errors.New("price value must be greater than zero")

const labelSeparator = " - "

// Source says where a price was observed. It is either a LegacySource or a BranchSource.
type Source interface {
	source()
}

// LegacySource free-text merchant label, e.g. "Disco - Av. Italia 4000".
type LegacySource struct {
	DisplayName string
	Merchant    string
	Address     string
}

// BranchSource reference to a stored merchant branch.
type BranchSource struct {
	MerchantID string
	AddressID  string
}

func (LegacySource) source() {}
func (BranchSource) source() {}

// PriceInput a price as submitted, before canonicalization.
type PriceInput struct {
	ID            string
	Source        Source
	Value         float64
	Currency      string
	Timestamp     time.Time
	Confirmations int
	UserID        string
}

// BranchResolver looks up a merchant branch by ID.
type BranchResolver interface {
	ResolveBranch(merchantID, addressID string) (models.Merchant, models.Address, bool)
}

// Directory resolves branches against an in-memory merchant collection.
type Directory []models.Merchant

// ResolveBranch finds the merchant and address with the given IDs.
func (d Directory) ResolveBranch(merchantID, addressID string) (models.Merchant, models.Address, bool) {
	for _, m := range d {
		if m.ID != merchantID {
			continue
		}
		if i := m.FindAddress(addressID); i >= 0 {
			return m, m.Addresses[i], true
		}
		return models.Merchant{}, models.Address{}, false
	}
	return models.Merchant{}, models.Address{}, false
}

// Canonical is the result of Canonicalize.
type Canonical struct {
	Entry models.PriceEntry
	// Legacy is true when the entry carries no branch reference.
	Legacy bool
	// Unresolved is true when a branch reference did not match any stored branch.
	Unresolved bool
}

// Canonicalize turns a PriceInput into the single stored entry shape.
// Missing IDs come from newID and missing timestamps from now.
func Canonicalize(in PriceInput, resolver BranchResolver, now time.Time, newID func() string) (Canonical, error) {
	if in.Value <= 0 {
		return Canonical{}, ErrInvalidValue
	}

	entry := models.PriceEntry{
		ID:            in.ID,
		Value:         in.Value,
		Currency:      in.Currency,
		Timestamp:     in.Timestamp,
		Confirmations: in.Confirmations,
		UserID:        in.UserID,
	}
	if entry.ID == "" {
		entry.ID = newID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}
	if entry.Confirmations < 0 {
		entry.Confirmations = 0
	}

	var out Canonical
	switch src := in.Source.(type) {
	case BranchSource:
		entry.MerchantID = src.MerchantID
		entry.AddressID = src.AddressID
		var (
			m    models.Merchant
			addr models.Address
			ok   bool
		)
		if resolver != nil {
			m, addr, ok = resolver.ResolveBranch(src.MerchantID, src.AddressID)
		}
		if ok {
			entry.Merchant = m.Name
			entry.Address = addr.Street
			entry.DisplayName = addr.DisplayName
			if entry.DisplayName == "" {
				entry.DisplayName = models.BranchDisplayName(m.Name, addr.Street)
			}
		} else {
			out.Unresolved = true
			entry.Merchant = models.UnknownMerchant
		}
	case LegacySource:
		out.Legacy = true
		fillLegacy(&entry, src)
	default:
		out.Legacy = true
		entry.Merchant = models.UnknownMerchant
	}

	out.Entry = entry
	return out, nil
}

func fillLegacy(entry *models.PriceEntry, src LegacySource) {
	entry.DisplayName = src.DisplayName
	entry.Merchant = src.Merchant
	entry.Address = src.Address

	parts := strings.Split(src.DisplayName, labelSeparator)
	if entry.Merchant == "" {
		entry.Merchant = parts[0]
		if entry.Merchant == "" {
			entry.Merchant = models.UnknownMerchant
		}
	}
	if entry.Address == "" && len(parts) > 1 {
		entry.Address = parts[1]
	}
}
