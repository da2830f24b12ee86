// Package dedup detects when a merchant being added already exists.
package dedup

import (
	"github.com/price-tracker/app/models"
	"github.com/price-tracker/internal/normalizer"
	"github.com/price-tracker/internal/similarity"
)

// Score thresholds for the fuzzy tiers. Changing them changes which merchants
// users are warned about.
const (
	SimilarNameThreshold  = 85
	SameLocationThreshold = 90
)

// Tier duplicate level, in precedence order.
type Tier int

const (
	TierUnique       Tier = 0
	TierExact        Tier = 1
	TierSimilarName  Tier = 2
	TierSameLocation Tier = 3
)

// Kind returns the machine-readable name of the tier.
func (t Tier) Kind() string {
	switch t {
	case TierExact:
		return "exact"
	case TierSimilarName:
		return "similar_name"
	case TierSameLocation:
		return "same_location"
	default:
		return "unique"
	}
}

// Candidate merchant data about to be added.
type Candidate struct {
	Name         string `json:"name"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
}

// Match an existing merchant and how close it is to the candidate.
type Match struct {
	Merchant models.Merchant `json:"merchant"`
	Score    int             `json:"score"`
}

// Verdict result of Classify.
type Verdict struct {
	IsDuplicate bool   `json:"is_duplicate"`
	Tier        Tier   `json:"tier"`
	Kind        string `json:"kind"`
	Message     string `json:"message"`

	// Merchant is set for TierExact only.
	Merchant *models.Merchant `json:"merchant,omitempty"`
	// Matches lists merchants for the fuzzy tiers, in input order.
	Matches []Match `json:"matches,omitempty"`
	// PermitAddAnyway is a soft block: the caller may still create the record.
	PermitAddAnyway bool `json:"permit_add_anyway"`
}

// Composite is the normalized "street neighborhood city" string compared across branches.
func Composite(street, neighborhood, city string) string {
	return normalizer.NormalizeAll(street, neighborhood, city)
}

// Classify checks the candidate against existing merchants. The first tier
// that matches wins: exact name and address, similar name, same location.
func Classify(candidate Candidate, existing []models.Merchant) Verdict {
	candName := normalizer.Normalize(candidate.Name)
	candComposite := Composite(candidate.Street, candidate.Neighborhood, candidate.City)

	for i := range existing {
		m := existing[i]
		if normalizer.Normalize(m.Name) != candName {
			continue
		}
		for _, addr := range m.Addresses {
			if Composite(addr.Street, addr.Neighborhood, addr.City) == candComposite {
				return Verdict{
					IsDuplicate:     true,
					Tier:            TierExact,
					Kind:            TierExact.Kind(),
					Message:         "This merchant already exists at this location",
					Merchant:        &m,
					PermitAddAnyway: true,
				}
			}
		}
	}

	var similar []Match
	for _, m := range existing {
		if score := similarity.Similarity(m.Name, candidate.Name); score >= SimilarNameThreshold {
			similar = append(similar, Match{Merchant: m, Score: score})
		}
	}
	if len(similar) > 0 {
		return Verdict{
			IsDuplicate: true,
			Tier:        TierSimilarName,
			Kind:        TierSimilarName.Kind(),
			Message:     "Found merchants with similar names",
			Matches:     similar,
		}
	}

	var sameLocation []Match
	for _, m := range existing {
		best := -1
		for _, addr := range m.Addresses {
			score := similarity.Similarity(Composite(addr.Street, addr.Neighborhood, addr.City), candComposite)
			if score > best {
				best = score
			}
		}
		if best >= SameLocationThreshold {
			sameLocation = append(sameLocation, Match{Merchant: m, Score: best})
		}
	}
	if len(sameLocation) > 0 {
		return Verdict{
			IsDuplicate: true,
			Tier:        TierSameLocation,
			Kind:        TierSameLocation.Kind(),
			Message:     "Other merchants already exist at this location",
			Matches:     sameLocation,
		}
	}

	return Verdict{
		Tier:    TierUnique,
		Kind:    TierUnique.Kind(),
		Message: "No duplicates found",
	}
}
