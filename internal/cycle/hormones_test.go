package cycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOvulationDay(t *testing.T) {
	assert.Equal(t, 14, OvulationDay(28))
	assert.Equal(t, 12, OvulationDay(21), "clamped to the lower bound")
	assert.Equal(t, 16, OvulationDay(30))
	assert.Equal(t, 20, OvulationDay(45), "clamped to the upper bound")
}

func TestHormoneCurves_StayInUnitRange(t *testing.T) {
	for length := MinCycleLength; length <= MaxCycleLength; length++ {
		for day := 1; day <= length; day++ {
			e := Estrogen(day, length)
			p := Progesterone(day, length)
			assert.GreaterOrEqual(t, e, 0.0)
			assert.LessOrEqual(t, e, 1.0)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		}
	}
}

func TestEstrogen_PeaksAroundOvulation(t *testing.T) {
	assert.InDelta(t, 1.0, Estrogen(14, 28), 1e-9)
	assert.Less(t, Estrogen(1, 28), 0.3)
}

func TestProgesterone_IsLowBeforeOvulation(t *testing.T) {
	assert.Less(t, Progesterone(3, 28), 0.3)
	assert.Greater(t, Progesterone(22, 28), Progesterone(8, 28))
}

func TestHormoneSeries(t *testing.T) {
	series := HormoneSeries(30)
	require.Len(t, series, 30)
	assert.Equal(t, 1, series[0].Day)
	assert.Equal(t, 30, series[29].Day)
	assert.Equal(t, Estrogen(10, 30), series[9].Estrogen)

	assert.Nil(t, HormoneSeries(0))
}

func TestReadTrend(t *testing.T) {
	trend := ReadTrend(Estrogen, 1, 28)
	assert.Equal(t, "low", trend.Level)
	assert.Equal(t, "rising", trend.Direction)
	assert.Equal(t, "Low, rising", trend.String())

	assert.Equal(t, "", Trend{}.String())
}

func TestReadTrend_FlatCurveIsSteady(t *testing.T) {
	flat := func(int, int) float64 { return 0.5 }

	trend := ReadTrend(flat, 10, 28)
	assert.Equal(t, Trend{Level: "moderate", Direction: "steady"}, trend)
}

func TestBands(t *testing.T) {
	t.Run("28 day cycle", func(t *testing.T) {
		assert.Equal(t, []Band{
			{Phase: PhaseMenstrual, Start: 1, End: 5},
			{Phase: PhaseFollicular, Start: 6, End: 13},
			{Phase: PhaseOvulatory, Start: 13, End: 15},
			{Phase: PhaseLuteal, Start: 16, End: 28},
		}, Bands(28))
	})

	t.Run("every band lies inside the cycle", func(t *testing.T) {
		for length := MinCycleLength; length <= MaxCycleLength; length++ {
			for _, b := range Bands(length) {
				assert.GreaterOrEqual(t, b.Start, 1)
				assert.LessOrEqual(t, b.End, length)
				assert.LessOrEqual(t, b.Start, b.End)
			}
		}
	})
}
