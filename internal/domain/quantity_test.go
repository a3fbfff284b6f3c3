package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quincevale/cidery-api/internal/unit"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewQuantity(t *testing.T) {
	q, err := NewQuantity(dec("150.5"), unit.Liter)
	require.NoError(t, err)
	assert.True(t, q.Amount.Equal(dec("150.5")))
	assert.Equal(t, unit.Liter, q.Unit)
	assert.False(t, q.HasABV)
}

func TestNewQuantity_Negative(t *testing.T) {
	_, err := NewQuantity(dec("-1"), unit.Liter)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestNewQuantity_UnknownUnit(t *testing.T) {
	_, err := NewQuantity(dec("1"), unit.Unit("cord"))
	assert.ErrorIs(t, err, unit.ErrUnknownUnit)
}

func TestNewVolumeWithABV(t *testing.T) {
	q, err := NewVolumeWithABV(dec("100"), unit.Liter, dec("6.5"))
	require.NoError(t, err)
	assert.True(t, q.HasABV)
	assert.True(t, q.ABV.Equal(dec("6.5")))

	_, err = NewVolumeWithABV(dec("100"), unit.Liter, dec("101"))
	assert.ErrorIs(t, err, ErrInvalidABV)

	_, err = NewVolumeWithABV(dec("100"), unit.Kilogram, dec("6"))
	assert.ErrorIs(t, err, unit.ErrIncompatibleUnits)
}

func TestQuantity_In(t *testing.T) {
	q, err := NewQuantity(dec("2"), unit.Hectoliter)
	require.NoError(t, err)

	liters, err := q.In(unit.Liter)
	require.NoError(t, err)
	assert.True(t, liters.Amount.Equal(dec("200")), "got %v", liters.Amount)

	// The original is untouched.
	assert.True(t, q.Amount.Equal(dec("2")))
	assert.Equal(t, unit.Hectoliter, q.Unit)
}

func TestQuantity_AddSub(t *testing.T) {
	a, err := NewQuantity(dec("10"), unit.Liter)
	require.NoError(t, err)
	b, err := NewQuantity(dec("500"), unit.Milliliter)
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount.Equal(dec("10.5")), "got %v", sum.Amount)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount.Equal(dec("9.5")), "got %v", diff.Amount)

	_, err = b.Sub(a)
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestQuantity_Liters(t *testing.T) {
	q, err := NewQuantity(dec("1"), unit.Gallon)
	require.NoError(t, err)

	liters, err := q.Liters()
	require.NoError(t, err)
	assert.True(t, liters.Equal(dec("3.785")), "got %v", liters)

	mass, err := NewQuantity(dec("1"), unit.Kilogram)
	require.NoError(t, err)
	_, err = mass.Liters()
	assert.ErrorIs(t, err, unit.ErrIncompatibleUnits)
}
