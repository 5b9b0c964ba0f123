package allocation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func breakdownWithValues(values ...float64) Breakdown {
	total := 0.0
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{ID: string(rune('a' + i)), Value: v}
		total += v
	}
	return Breakdown{Total: total, Rows: rows}
}

func TestConcentrate_EvenSplit(t *testing.T) {
	c := Concentrate(breakdownWithValues(500, 500))

	assert.Equal(t, 2, c.Rows)
	assert.InDelta(t, 0.5, c.HHI, 0.0001)
	assert.InDelta(t, 2.0, c.EffectiveCount, 0.01)
	assert.InDelta(t, 0.5, c.LargestShare, 0.0001)
	assert.InDelta(t, math.Log(2), c.Entropy, 0.001)
	assert.InDelta(t, 500.0, c.MeanValue, 0.001)
	assert.Zero(t, c.StdDevValue)
}

func TestConcentrate_SingleRow(t *testing.T) {
	c := Concentrate(breakdownWithValues(1234.5))

	assert.Equal(t, 1, c.Rows)
	assert.InDelta(t, 1.0, c.HHI, 0.0001)
	assert.InDelta(t, 1.0, c.EffectiveCount, 0.01)
	assert.InDelta(t, 1.0, c.LargestShare, 0.0001)
	assert.Zero(t, c.Entropy)
	assert.Zero(t, c.StdDevValue)
}

func TestConcentrate_Skewed(t *testing.T) {
	c := Concentrate(breakdownWithValues(900, 100))

	assert.InDelta(t, 0.82, c.HHI, 0.0001)
	assert.InDelta(t, 0.9, c.LargestShare, 0.0001)
	assert.InDelta(t, 1.22, c.EffectiveCount, 0.01)
}

func TestConcentrate_ZeroRowsSkipped(t *testing.T) {
	c := Concentrate(breakdownWithValues(1000, 0, 0))

	assert.Equal(t, 1, c.Rows)
	assert.InDelta(t, 1.0, c.HHI, 0.0001)
}

func TestConcentrate_EmptyPortfolio(t *testing.T) {
	c := Concentrate(breakdownWithValues())
	assert.Equal(t, Concentration{}, c)

	c = Concentrate(breakdownWithValues(0, 0))
	assert.Equal(t, Concentration{}, c)
}
