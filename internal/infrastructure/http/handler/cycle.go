package handler

import (
	"net/http"
	"strconv"

	"github.com/cyclesync/cyclesync/internal/affinity"
	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
	"github.com/cyclesync/cyclesync/internal/infrastructure/http/response"
)

type hormoneDTO struct {
	Day          int     `json:"day"`
	Estrogen     float64 `json:"estrogen"`
	Progesterone float64 `json:"progesterone"`
}

type bandDTO struct {
	Phase string `json:"phase"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

type cycleResponse struct {
	AsOf               string       `json:"as_of"`
	State              stateDTO     `json:"state"`
	NextPhase          string       `json:"next_phase"`
	NextPhaseDisplay   displayDTO   `json:"next_phase_display"`
	DaysUntilNextPhase int          `json:"days_until_next_phase"`
	OvulationDay       int          `json:"ovulation_day"`
	EstrogenTrend      string       `json:"estrogen_trend"`
	ProgesteroneTrend  string       `json:"progesterone_trend"`
	Hormones           []hormoneDTO `json:"hormones"`
	Bands              []bandDTO    `json:"bands"`
}

// GetCycle reports the cycle state for a date (today when as_of is absent)
// together with the hormone chart data.
func (h *Handler) GetCycle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	in := cycleInput{LastPeriodStart: q.Get("last_period_start")}
	if raw := q.Get("cycle_length"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.ValidationError(w, "cycle_length", "must be an integer")
			return
		}
		in.CycleLength = n
	}
	params, err := in.params()
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	asOf := h.now()
	if raw := q.Get("as_of"); raw != "" {
		if asOf, err = domain.ParseDate(raw); err != nil {
			response.FromDomainError(w, r, err)
			return
		}
	}

	state, err := cycle.CurrentState(params, asOf)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	next, days := cycle.NextPhase(state)

	series := cycle.HormoneSeries(state.CycleLength)
	hormones := make([]hormoneDTO, 0, len(series))
	for _, s := range series {
		hormones = append(hormones, hormoneDTO{Day: s.Day, Estrogen: s.Estrogen, Progesterone: s.Progesterone})
	}
	bands := make([]bandDTO, 0, 4)
	for _, b := range cycle.Bands(state.CycleLength) {
		bands = append(bands, bandDTO{Phase: string(b.Phase), Start: b.Start, End: b.End})
	}

	response.OK(w, cycleResponse{
		AsOf:               formatDate(cycle.CalendarDate(asOf)),
		State:              toStateDTO(state),
		NextPhase:          string(next),
		NextPhaseDisplay:   toDisplayDTO(affinity.PhaseDisplayInfo(next)),
		DaysUntilNextPhase: days,
		OvulationDay:       cycle.OvulationDay(state.CycleLength),
		EstrogenTrend:      cycle.ReadTrend(cycle.Estrogen, state.CycleDay, state.CycleLength).String(),
		ProgesteroneTrend:  cycle.ReadTrend(cycle.Progesterone, state.CycleDay, state.CycleLength).String(),
		Hormones:           hormones,
		Bands:              bands,
	})
}
