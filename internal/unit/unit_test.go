package unit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestConvert_SameUnit(t *testing.T) {
	got, err := Convert(dec("123.456"), Liter, Liter)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("123.456")), "got %v", got)
}

func TestConvert_VolumeUnits(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		from   Unit
		to     Unit
		want   string
	}{
		{"liters to milliliters", "1.5", Liter, Milliliter, "1500"},
		{"hectoliters to liters", "2", Hectoliter, Liter, "200"},
		{"gallons to liters", "1", Gallon, Liter, "3.785411784"},
		{"barrel to gallons", "1", Barrel, Gallon, "31"},
		{"liters to gallons", "10", Liter, Gallon, "2.641720524"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(dec(tt.amount), tt.from, tt.to)
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tt.want)), "want %v, got %v", tt.want, got)
		})
	}
}

func TestConvert_MassUnits(t *testing.T) {
	got, err := Convert(dec("1"), Bushel, Pound)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("42")), "got %v", got)

	got, err = Convert(dec("10"), Pound, Kilogram)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("4.5359237")), "got %v", got)
}

func TestConvert_RoundTrip(t *testing.T) {
	epsilon := dec("0.001")
	pairs := [][2]Unit{
		{Liter, Gallon},
		{Liter, Hectoliter},
		{Gallon, Barrel},
		{Kilogram, Pound},
		{Kilogram, Bushel},
	}
	amounts := []string{"0.001", "1", "42.125", "1000", "98765.432"}

	for _, pair := range pairs {
		for _, amount := range amounts {
			v := dec(amount)
			there, err := Convert(v, pair[0], pair[1])
			require.NoError(t, err)
			back, err := Convert(there, pair[1], pair[0])
			require.NoError(t, err)

			assert.True(t, back.Sub(v).Abs().LessThanOrEqual(epsilon),
				"%v %v -> %v -> %v drifted to %v", amount, pair[0], pair[1], pair[0], back)
		}
	}
}

func TestConvert_IncompatibleDimensions(t *testing.T) {
	_, err := Convert(dec("1"), Liter, Kilogram)
	assert.ErrorIs(t, err, ErrIncompatibleUnits)

	_, err = Convert(dec("1"), Bushel, Gallon)
	assert.ErrorIs(t, err, ErrIncompatibleUnits)
}

func TestConvert_UnknownUnit(t *testing.T) {
	_, err := Convert(dec("1"), Unit("furlong"), Liter)
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestConvertWithDensity(t *testing.T) {
	// 100 L of juice at 1.05 kg/L weighs 105 kg.
	got, err := ConvertWithDensity(dec("100"), Liter, Kilogram, dec("1.05"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("105")), "got %v", got)

	// And back again.
	got, err = ConvertWithDensity(dec("105"), Kilogram, Liter, dec("1.05"))
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("100")), "got %v", got)
}

func TestConvertWithDensity_NonPositiveDensity(t *testing.T) {
	_, err := ConvertWithDensity(dec("100"), Liter, Kilogram, decimal.Zero)
	assert.ErrorIs(t, err, ErrIncompatibleUnits)
}

func TestProofConversions(t *testing.T) {
	assert.True(t, ProofFromABV(dec("40")).Equal(dec("80")))
	assert.True(t, ABVFromProof(dec("100")).Equal(dec("50")))
}

func TestProofGallons(t *testing.T) {
	// One gallon at 50% ABV is exactly one proof gallon.
	pg, err := ProofGallons(dec("1"), Gallon, dec("50"))
	require.NoError(t, err)
	assert.True(t, pg.Equal(dec("1")), "got %v", pg)

	// 100 L of 6% cider: 26.417 gal * 6 / 50 = 3.17 PG.
	pg, err = ProofGallons(dec("100"), Liter, dec("6"))
	require.NoError(t, err)
	assert.True(t, pg.Equal(dec("3.17")), "got %v", pg)

	_, err = ProofGallons(dec("1"), Kilogram, dec("50"))
	assert.ErrorIs(t, err, ErrIncompatibleUnits)
}
