package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/price-tracker/app/models"
)

func fixedID() string { return "generated" }

func TestCanonicalize_Legacy(t *testing.T) {
	testCases := []struct {
		name     string
		source   LegacySource
		merchant string
		address  string
		label    string
	}{
		{
			name:     "display name split",
			source:   LegacySource{DisplayName: "Disco - Av. Italia 4000"},
			merchant: "Disco",
			address:  "Av. Italia 4000",
			label:    "Disco - Av. Italia 4000",
		},
		{
			name:     "explicit fields win",
			source:   LegacySource{DisplayName: "Disco - Av. Italia 4000", Merchant: "Disco Pocitos", Address: "Italia 4000"},
			merchant: "Disco Pocitos",
			address:  "Italia 4000",
			label:    "Disco - Av. Italia 4000",
		},
		{
			name:     "merchant only",
			source:   LegacySource{Merchant: "Feria"},
			merchant: "Feria",
			label:    "Feria",
		},
		{
			name:     "nothing",
			source:   LegacySource{},
			merchant: models.UnknownMerchant,
			label:    models.UnknownMerchant,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Canonicalize(PriceInput{Source: tc.source, Value: 10}, nil, now, fixedID)
			require.NoError(t, err)

			assert.True(t, out.Legacy)
			assert.False(t, out.Unresolved)
			assert.Equal(t, tc.merchant, out.Entry.Merchant)
			assert.Equal(t, tc.address, out.Entry.Address)
			assert.Equal(t, tc.label, out.Entry.Label())
		})
	}
}

func TestCanonicalize_Branch(t *testing.T) {
	dir := Directory{
		{ID: "m1", Name: "Tata", Addresses: []models.Address{
			{ID: "a1", Street: "Av. Brasil 2550", DisplayName: "Tata - Av. Brasil 2550"},
			{ID: "a2", Street: "Rivera 100"},
		}},
	}

	t.Run("resolved", func(t *testing.T) {
		out, err := Canonicalize(PriceInput{Source: BranchSource{MerchantID: "m1", AddressID: "a1"}, Value: 99}, dir, now, fixedID)
		require.NoError(t, err)

		assert.False(t, out.Legacy)
		assert.False(t, out.Unresolved)
		assert.Equal(t, "m1", out.Entry.MerchantID)
		assert.Equal(t, "a1", out.Entry.AddressID)
		assert.Equal(t, "Tata", out.Entry.Merchant)
		assert.Equal(t, "Av. Brasil 2550", out.Entry.Address)
		assert.Equal(t, "Tata - Av. Brasil 2550", out.Entry.DisplayName)
	})

	t.Run("display name built when missing", func(t *testing.T) {
		out, err := Canonicalize(PriceInput{Source: BranchSource{MerchantID: "m1", AddressID: "a2"}, Value: 99}, dir, now, fixedID)
		require.NoError(t, err)
		assert.Equal(t, "Tata - Rivera 100", out.Entry.DisplayName)
	})

	t.Run("unknown address", func(t *testing.T) {
		out, err := Canonicalize(PriceInput{Source: BranchSource{MerchantID: "m1", AddressID: "zz"}, Value: 99}, dir, now, fixedID)
		require.NoError(t, err)
		assert.True(t, out.Unresolved)
		assert.Equal(t, models.UnknownMerchant, out.Entry.Label())
		assert.Equal(t, "m1", out.Entry.MerchantID)
	})

	t.Run("nil resolver", func(t *testing.T) {
		out, err := Canonicalize(PriceInput{Source: BranchSource{MerchantID: "m1", AddressID: "a1"}, Value: 99}, nil, now, fixedID)
		require.NoError(t, err)
		assert.True(t, out.Unresolved)
	})
}

func TestCanonicalize_Defaults(t *testing.T) {
	out, err := Canonicalize(PriceInput{Source: LegacySource{Merchant: "Disco"}, Value: 10, Confirmations: -3}, nil, now, fixedID)
	require.NoError(t, err)

	assert.Equal(t, "generated", out.Entry.ID)
	assert.Equal(t, now, out.Entry.Timestamp)
	assert.Equal(t, 0, out.Entry.Confirmations)
	assert.False(t, out.Entry.IsBest)

	at := daysAgo(3)
	out, err = Canonicalize(PriceInput{ID: "keep", Source: LegacySource{Merchant: "Disco"}, Value: 10, Timestamp: at, Confirmations: 2}, nil, now, fixedID)
	require.NoError(t, err)
	assert.Equal(t, "keep", out.Entry.ID)
	assert.Equal(t, at, out.Entry.Timestamp)
	assert.Equal(t, 2, out.Entry.Confirmations)
}

func TestCanonicalize_InvalidValue(t *testing.T) {
	for _, v := range []float64{0, -1} {
		_, err := Canonicalize(PriceInput{Source: LegacySource{Merchant: "Disco"}, Value: v}, nil, now, fixedID)
		assert.ErrorIs(t, err, ErrInvalidValue)
	}
}

func TestCanonicalize_NilSource(t *testing.T) {
	out, err := Canonicalize(PriceInput{Value: 5}, nil, now, fixedID)
	require.NoError(t, err)
	assert.True(t, out.Legacy)
	assert.Equal(t, models.UnknownMerchant, out.Entry.Merchant)
}
