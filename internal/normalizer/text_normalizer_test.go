package normalizer

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "accents and case", input: "Panadería LA ESPIGA", expected: "panaderia la espiga"},
		{name: "punctuation dropped", input: "Av. Brasil 2550, Pocitos", expected: "av brasil 2550 pocitos"},
		{name: "enie", input: "Peñarol", expected: "penarol"},
		{name: "whitespace runs", input: "  Tienda \t\n  Inglesa  ", expected: "tienda inglesa"},
		{name: "only symbols", input: "!!!---", expected: ""},
		{name: "non latin dropped", input: "Café 東京 24h", expected: "cafe 24h"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"TATA",
		"Av. Brasil 2550",
		"Ñandú  Ávila—Óscar",
		"Supermercado Disco Nº 12",
		"  múltiples   espacios\ty\ttabs  ",
		"İstanbul ß straße",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeAll(t *testing.T) {
	assert.Equal(t, "av brasil 2550", NormalizeAll("Av. Brasil 2550", "", ""))
	assert.Equal(t, "18 de julio 1234 centro montevideo", NormalizeAll("18 de Julio 1234", "Centro", "Montevideo"))
}

func TestExpandAbbreviations(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "Av. Brasil 2550", expected: "avenida brasil 2550"},
		{input: "Avda Italia 3000", expected: "avenida italia 3000"},
		{input: "Gral. Flores esq. Bv Artigas", expected: "general flores esquina bulevar artigas"},
		{input: "Nro 123", expected: "numero 123"},
		{input: "Sto. Domingo", expected: "santo domingo"},
		{input: "Sta Lucia", expected: "santa lucia"},
		{input: "Dr. Pedro Visca", expected: "doctor pedro visca"},
		{input: "calle sta", expected: "calle sta"},
		{input: "mav 3", expected: "mav 3"},
		{input: "Rambla", expected: "rambla"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExpandAbbreviations(tc.input))
		})
	}
}

func TestAbbreviations_TableOrderAndInvariant(t *testing.T) {
	table := Abbreviations()
	require.Len(t, table, 19)
	assert.Equal(t, Abbreviation{Abbr: "av", Full: "avenida"}, table[0])
	assert.Equal(t, Abbreviation{Abbr: "sta", Full: "santa"}, table[len(table)-1])

	// Expanded words must not be picked up again by any rule.
	for _, rule := range table {
		for _, other := range table {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(other.Abbr) + `\.?\s`)
			assert.False(t, re.MatchString(rule.Full+" "), "%q re-matches %q", rule.Full, other.Abbr)
		}
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "cafe con leche", Fold("  Café con Leche "))
	assert.Equal(t, "azucar 1kg", Fold("Azúcar 1kg"))
}
