package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/price-tracker/app/models"
	"github.com/price-tracker/internal/similarity"
)

func merchant(id, name string, addrs ...models.Address) models.Merchant {
	return models.Merchant{ID: id, Name: name, Type: models.DefaultMerchantType, Addresses: addrs}
}

func addr(id, street, neighborhood, city string) models.Address {
	return models.Address{ID: id, Street: street, Neighborhood: neighborhood, City: city}
}

func TestClassify_ExactDuplicate(t *testing.T) {
	existing := []models.Merchant{
		merchant("m1", "TATA", addr("a1", "Av. Brasil 2550", "", "")),
	}

	v := Classify(Candidate{Name: "TATA", Street: "Av. Brasil 2550"}, existing)

	assert.True(t, v.IsDuplicate)
	assert.Equal(t, TierExact, v.Tier)
	assert.Equal(t, "exact", v.Kind)
	assert.True(t, v.PermitAddAnyway)
	require.NotNil(t, v.Merchant)
	assert.Equal(t, "m1", v.Merchant.ID)
	assert.Empty(t, v.Matches)
}

func TestClassify_ExactIgnoresCaseAndAccents(t *testing.T) {
	existing := []models.Merchant{
		merchant("m1", "TATA", addr("a1", "Av. Brasil 2550", "Pocitos", "Montevideo")),
	}

	v := Classify(Candidate{Name: "Tatá", Street: "AV BRASIL 2550", Neighborhood: "pocitos", City: "MONTEVIDEO"}, existing)

	assert.Equal(t, TierExact, v.Tier)
}

func TestClassify_ExactShortCircuitsSimilar(t *testing.T) {
	existing := []models.Merchant{
		merchant("m1", "Supermercado Disko", addr("a1", "Rivera 100", "", "")),
		merchant("m2", "Supermercado Disco", addr("a2", "Rivera 200", "", "")),
	}

	v := Classify(Candidate{Name: "Supermercado Disco", Street: "Rivera 200"}, existing)

	assert.Equal(t, TierExact, v.Tier)
	assert.Equal(t, "m2", v.Merchant.ID)
}

func TestClassify_SimilarName(t *testing.T) {
	existing := []models.Merchant{
		merchant("m1", "Supermercado Disko", addr("a1", "Rivera 100", "", "")),
		merchant("m2", "Macro Mercado", addr("a2", "Italia 3000", "", "")),
		merchant("m3", "Supermercado Disco", addr("a3", "Rivera 200", "", "")),
	}

	v := Classify(Candidate{Name: "Supermercado Disco", Street: "Garibaldi 2200"}, existing)

	assert.True(t, v.IsDuplicate)
	assert.Equal(t, TierSimilarName, v.Tier)
	assert.False(t, v.PermitAddAnyway)
	require.Len(t, v.Matches, 2)
	assert.Equal(t, "m1", v.Matches[0].Merchant.ID)
	assert.Equal(t, 94, v.Matches[0].Score)
	assert.Equal(t, "m3", v.Matches[1].Merchant.ID)
	assert.Equal(t, 100, v.Matches[1].Score)
}

func TestClassify_FiveLetterNamesBelowThreshold(t *testing.T) {
	// DISCO/DISKO is often given as the example of a similar-name duplicate,
	// but that example contradicts the scoring formula: one edit in five letters
	// scores round(4/5*100) = 80, under SimilarNameThreshold (85). The formula
	// and threshold are kept, so the pair is unique.
	require.Equal(t, 80, similarity.Similarity("DISCO", "DISKO"))
	existing := []models.Merchant{
		merchant("m1", "DISCO", addr("a1", "Av. Italia 4000", "", "")),
	}

	v := Classify(Candidate{Name: "DISKO", Street: "Bv. Artigas 1500"}, existing)

	assert.Equal(t, TierUnique, v.Tier)
	assert.False(t, v.IsDuplicate)
}

func TestClassify_SameLocation(t *testing.T) {
	existing := []models.Merchant{
		merchant("m1", "Kiosco Pepe", addr("a1", "18 de Julio 1234", "Centro", "Montevideo")),
		merchant("m2", "Farmashop", addr("a2", "Rambla 25 de Agosto 500", "Ciudad Vieja", "Montevideo")),
	}

	t.Run("identical address", func(t *testing.T) {
		v := Classify(Candidate{Name: "Farmacia Central", Street: "18 de Julio 1234", Neighborhood: "Centro", City: "Montevideo"}, existing)

		assert.True(t, v.IsDuplicate)
		assert.Equal(t, TierSameLocation, v.Tier)
		assert.Equal(t, "same_location", v.Kind)
		require.Len(t, v.Matches, 1)
		assert.Equal(t, "m1", v.Matches[0].Merchant.ID)
		assert.Equal(t, 100, v.Matches[0].Score)
	})

	t.Run("one digit off", func(t *testing.T) {
		v := Classify(Candidate{Name: "Farmacia Central", Street: "18 de Julio 1235", Neighborhood: "Centro", City: "Montevideo"}, existing)

		assert.Equal(t, TierSameLocation, v.Tier)
		require.Len(t, v.Matches, 1)
		assert.Equal(t, 97, v.Matches[0].Score)
	})
}

func TestClassify_Unique(t *testing.T) {
	existing := []models.Merchant{
		merchant("m1", "TATA", addr("a1", "Av. Brasil 2550", "", "")),
		merchant("m2", "Sin sucursales"),
	}

	v := Classify(Candidate{Name: "Panaderia Rosa", Street: "Rivera 5000"}, existing)

	assert.False(t, v.IsDuplicate)
	assert.Equal(t, TierUnique, v.Tier)
	assert.Equal(t, "unique", v.Kind)
	assert.Nil(t, v.Merchant)
	assert.Empty(t, v.Matches)
}

func TestClassify_EmptyCollection(t *testing.T) {
	v := Classify(Candidate{Name: "TATA", Street: "Av. Brasil 2550"}, nil)
	assert.Equal(t, TierUnique, v.Tier)
}

func TestComposite(t *testing.T) {
	assert.Equal(t, "av brasil 2550", Composite("Av. Brasil 2550", "", ""))
	assert.Equal(t, "av brasil 2550 pocitos montevideo", Composite("Av. Brasil 2550", "Pocitos", "Montevideo"))
}

func TestGroupByChain(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	t3 := t2.Add(24 * time.Hour)

	a := merchant("a", "Disco", models.Address{ID: "a1", Street: "Rivera 100", LastUsedAt: &t1})
	a.LastUsedAt = &t1
	a.UsageCount = 1
	a.Photo = "old.jpg"

	b := merchant("b", "DISCO",
		models.Address{ID: "b1", Street: "Italia 3000", LastUsedAt: &t3},
		models.Address{ID: "b2", Street: "Garibaldi 10"},
	)
	b.LastUsedAt = &t3
	b.UsageCount = 2
	b.Photo = "new.jpg"

	c := merchant("c", "Tata", models.Address{ID: "c1", Street: "Av. Brasil 2550", LastUsedAt: &t2})
	c.LastUsedAt = &t2
	c.UsageCount = 5

	chains := GroupByChain([]models.Merchant{a, c, b})
	require.Len(t, chains, 2)

	disco := chains[0]
	assert.Equal(t, "a", disco.ID)
	assert.Equal(t, "Disco", disco.Name)
	assert.True(t, disco.IsChain)
	assert.Equal(t, 2, disco.BranchCount)
	assert.Equal(t, 3, disco.UsageCount)
	assert.Equal(t, []string{"a", "b"}, disco.MerchantIDs)
	assert.Equal(t, t3, *disco.LastUsedAt)
	assert.Equal(t, "new.jpg", disco.Photo)
	require.Len(t, disco.Addresses, 3)
	assert.Equal(t, "b1", disco.Addresses[0].ID)
	assert.Equal(t, "a1", disco.Addresses[1].ID)
	assert.Equal(t, "b2", disco.Addresses[2].ID)
	require.NotNil(t, disco.PrimaryAddress)
	assert.Equal(t, "b1", disco.PrimaryAddress.ID)
	assert.Len(t, disco.TopAddresses, 3)

	tata := chains[1]
	assert.False(t, tata.IsChain)
	assert.Equal(t, 1, tata.BranchCount)
	assert.Equal(t, 5, tata.UsageCount)

	flat := disco.AsMerchant()
	assert.Equal(t, "a", flat.ID)
	assert.Len(t, flat.Addresses, 3)
}
