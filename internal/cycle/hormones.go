package cycle

import (
	"fmt"
	"math"
	"strings"
)

// The curves below are educational approximations for charting. They are
// never used for phase classification; that always goes through ClassifyPhase.

// OvulationDay estimates the ovulation day as cycleLength-14, clamped to 12..20.
func OvulationDay(cycleLength int) int {
	return min(max(int(math.Round(float64(cycleLength-14))), 12), 20)
}

// Estrogen returns an illustrative estradiol level in [0,1] for a cycle day.
func Estrogen(day, cycleLength int) float64 {
	d := float64(day)
	ovu := float64(OvulationDay(cycleLength))

	rise := sigmoid((d-6)/3) * (1 - sigmoid((d-ovu+1)/1.8))
	peak := gaussian(d, ovu, 2.2)
	luteal := 0.3 * gaussian(d, ovu+6, 4.0)

	return clamp01(0.15 + 0.6*rise + 0.9*peak + luteal)
}

// Progesterone returns an illustrative progesterone level in [0,1] for a cycle day.
func Progesterone(day, cycleLength int) float64 {
	d := float64(day)
	ovu := float64(OvulationDay(cycleLength))

	rise := sigmoid((d - (ovu + 1)) / 2.2)
	fall := 1 - sigmoid((d-(ovu+10))/2.5)

	return clamp01(0.08 + 0.75*rise*fall)
}

// HormoneSample is one charted day.
type HormoneSample struct {
	Day          int
	Estrogen     float64
	Progesterone float64
}

// HormoneSeries samples both curves for days 1..cycleLength.
func HormoneSeries(cycleLength int) []HormoneSample {
	if cycleLength <= 0 {
		return nil
	}
	samples := make([]HormoneSample, 0, cycleLength)
	for day := 1; day <= cycleLength; day++ {
		samples = append(samples, HormoneSample{
			Day:          day,
			Estrogen:     Estrogen(day, cycleLength),
			Progesterone: Progesterone(day, cycleLength),
		})
	}
	return samples
}

// Curve is a hormone level function of (day, cycleLength).
type Curve func(day, cycleLength int) float64

// Trend is the qualitative reading of a curve around a day.
type Trend struct {
	Level     string // low, moderate, high
	Direction string // rising, falling, steady
}

// String renders the trend as "High, rising".
func (t Trend) String() string {
	if t.Level == "" {
		return ""
	}
	return fmt.Sprintf("%s%s, %s", strings.ToUpper(t.Level[:1]), t.Level[1:], t.Direction)
}

// ReadTrend describes the curve's level at day and its slope across the
// neighbouring days, both bounded to the cycle.
func ReadTrend(curve Curve, day, cycleLength int) Trend {
	v := curve(day, cycleLength)
	prev := curve(max(1, day-1), cycleLength)
	next := curve(min(cycleLength, day+1), cycleLength)
	slope := next - prev

	direction := "steady"
	switch {
	case slope > 0.01:
		direction = "rising"
	case slope < -0.01:
		direction = "falling"
	}

	level := "moderate"
	switch {
	case v < 0.3:
		level = "low"
	case v > 0.65:
		level = "high"
	}

	return Trend{Level: level, Direction: direction}
}

// Band is a charted phase range. Bands adapt to the estimated ovulation day
// and may disagree with ClassifyPhase for non-28-day cycles.
type Band struct {
	Phase Phase
	Start int
	End   int
}

// Bands returns the chart bands for a cycle length, dropping empty ones.
func Bands(cycleLength int) []Band {
	ovu := OvulationDay(cycleLength)

	follicularStart := MenstrualEnd + 1
	follicularEnd := max(follicularStart, ovu-1)
	ovulatoryStart := max(follicularEnd, ovu-1)
	ovulatoryEnd := min(cycleLength, ovu+1)
	lutealStart := min(cycleLength, ovulatoryEnd+1)

	all := []Band{
		{Phase: PhaseMenstrual, Start: 1, End: MenstrualEnd},
		{Phase: PhaseFollicular, Start: follicularStart, End: follicularEnd},
		{Phase: PhaseOvulatory, Start: ovulatoryStart, End: ovulatoryEnd},
		{Phase: PhaseLuteal, Start: lutealStart, End: cycleLength},
	}

	bands := all[:0]
	for _, b := range all {
		if b.End >= b.Start {
			bands = append(bands, b)
		}
	}
	return bands
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func gaussian(x, center, width float64) float64 {
	return math.Exp(-math.Pow((x-center)/width, 2))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
