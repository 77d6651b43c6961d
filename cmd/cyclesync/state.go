package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyclesync/cyclesync/internal/affinity"
	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
)

type stateOutput struct {
	AsOf               string   `json:"as_of"`
	CycleDay           int      `json:"cycle_day"`
	CycleLength        int      `json:"cycle_length"`
	Phase              string   `json:"phase"`
	Label              string   `json:"label"`
	OptimalTasks       []string `json:"optimal_tasks"`
	NextPhase          string   `json:"next_phase"`
	DaysUntilNextPhase int      `json:"days_until_next_phase"`
	EstrogenTrend      string   `json:"estrogen_trend"`
	ProgesteroneTrend  string   `json:"progesterone_trend"`
}

func newStateCmd() *cobra.Command {
	var (
		start  string
		length int
		asOf   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the cycle day and phase for a date",
		Long: `Show the cycle day, phase and hormone trends for a date, today by
default, given the first day of the most recent period.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lastStart, err := domain.ParseDate(start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			if length < 0 {
				return fmt.Errorf("--length: %w: %d", cycle.ErrInvalidCycleLength, length)
			}
			date := time.Now().UTC()
			if asOf != "" {
				if date, err = domain.ParseDate(asOf); err != nil {
					return fmt.Errorf("--as-of: %w", err)
				}
			}

			params := cycle.Params{LastPeriodStart: lastStart, CycleLength: cycle.ClampCycleLength(length)}
			state, err := cycle.CurrentState(params, date)
			if err != nil {
				return err
			}
			next, days := cycle.NextPhase(state)

			out := stateOutput{
				AsOf:               cycle.CalendarDate(date).Format(domain.DateLayout),
				CycleDay:           state.CycleDay,
				CycleLength:        state.CycleLength,
				Phase:              string(state.Phase),
				Label:              state.Label,
				OptimalTasks:       state.OptimalTasks,
				NextPhase:          string(next),
				DaysUntilNextPhase: days,
				EstrogenTrend:      cycle.ReadTrend(cycle.Estrogen, state.CycleDay, state.CycleLength).String(),
				ProgesteroneTrend:  cycle.ReadTrend(cycle.Progesterone, state.CycleDay, state.CycleLength).String(),
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			w := cmd.OutOrStdout()
			display := affinity.PhaseDisplayInfo(state.Phase)
			fmt.Fprintf(w, "%s Day %d of %d: %s\n", display.Glyph, out.CycleDay, out.CycleLength, out.Label)
			fmt.Fprintf(w, "Next: %s in %d days\n", affinity.PhaseDisplayInfo(next).Name, days)
			fmt.Fprintf(w, "Estrogen %s, progesterone %s\n", out.EstrogenTrend, out.ProgesteroneTrend)
			for _, task := range out.OptimalTasks {
				fmt.Fprintf(w, "  - %s\n", task)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First day of the last period (YYYY-MM-DD)")
	cmd.Flags().IntVar(&length, "length", cycle.DefaultCycleLength, "Cycle length in days, clamped to 21..45")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Evaluate on this date instead of today (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}
