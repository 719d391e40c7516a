package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanDilutionDefaultsToEthanol(t *testing.T) {
	plan, err := PlanDilution(DilutionRequest{BatchML: 50, ConcentrateML: 10, Type: TypeEDP})
	require.NoError(t, err)

	assert.InDelta(t, 20, plan.ConcentratePercent, tolerance)
	assert.True(t, plan.Compliant)
	assert.InDelta(t, 40, plan.RemainingML, tolerance)
	require.Len(t, plan.Portions, 1)
	assert.Equal(t, DefaultDiluent, plan.Portions[0].Key)
	assert.InDelta(t, 40, plan.Portions[0].ML, tolerance)
	assert.InDelta(t, 40*0.809, plan.Portions[0].Grams, tolerance)
}

func TestPlanDilutionSplitsByNormalizedShares(t *testing.T) {
	shares := []DiluentShare{{Key: "dpg", Percent: 30}, {Key: "tec", Percent: 10}}
	plan, err := PlanDilution(DilutionRequest{BatchML: 100, ConcentrateML: 60, Type: TypeEDC, Diluents: shares})
	require.NoError(t, err)

	require.Len(t, plan.Portions, 2)
	assert.InDelta(t, 75, plan.Portions[0].Percent, tolerance)
	assert.InDelta(t, 30, plan.Portions[0].ML, tolerance)
	assert.InDelta(t, 10, plan.Portions[1].ML, tolerance)
	assert.InDelta(t, 11.4, plan.Portions[1].Grams, tolerance)
	assert.False(t, plan.Compliant)
	assert.Equal(t, 30.0, shares[0].Percent, "request must not be mutated")
}

func TestPlanDilutionEdgeCases(t *testing.T) {
	t.Run("zero shares split evenly", func(t *testing.T) {
		plan, err := PlanDilution(DilutionRequest{BatchML: 30, Diluents: []DiluentShare{{Key: "ipm"}, {Key: "decanol"}}})
		require.NoError(t, err)
		assert.InDelta(t, 15, plan.Portions[0].ML, tolerance)
		assert.InDelta(t, 15, plan.Portions[1].ML, tolerance)
	})

	t.Run("concentrate fills the batch", func(t *testing.T) {
		plan, err := PlanDilution(DilutionRequest{BatchML: 10, ConcentrateML: 12})
		require.NoError(t, err)
		assert.Zero(t, plan.RemainingML)
		assert.Zero(t, plan.Portions[0].ML)
	})

	t.Run("zero batch", func(t *testing.T) {
		plan, err := PlanDilution(DilutionRequest{ConcentrateML: 5})
		require.NoError(t, err)
		assert.Zero(t, plan.ConcentratePercent)
	})

	t.Run("unknown diluent", func(t *testing.T) {
		_, err := PlanDilution(DilutionRequest{BatchML: 10, Diluents: []DiluentShare{{Key: "water", Percent: 100}}})
		assert.Error(t, err)
	})
}

func TestComputeTotals(t *testing.T) {
	ctx := Context{Density: 1, BatchWeight: 100}
	materials := []Material{
		Recompute(Material{}, FieldGrams, 5, ctx),
		Recompute(Material{}, FieldGrams, 7.5, ctx),
	}

	totals := ComputeTotals(materials)
	assert.InDelta(t, 12.5, totals.Grams, tolerance)
	assert.InDelta(t, 12.5, totals.ML, tolerance)
	assert.InDelta(t, 250, totals.Drops, tolerance)
	assert.InDelta(t, 12.5, totals.Percent, tolerance)
	assert.Equal(t, Totals{}, ComputeTotals(nil))
}
