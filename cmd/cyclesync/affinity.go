package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cyclesync/cyclesync/internal/affinity"
	"github.com/cyclesync/cyclesync/internal/cycle"
)

func newAffinityCmd() *cobra.Command {
	var current string

	cmd := &cobra.Command{
		Use:   "affinity <task description>",
		Short: "Show which phase suits a task best",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			phase := cycle.PhaseAny
			if current != "" {
				p, err := cycle.ParsePhase(current)
				if err != nil {
					return err
				}
				phase = p
			}

			w := cmd.OutOrStdout()
			fit := affinity.Evaluate(text, phase)
			taskType := affinity.AnalyzeTaskType(text)
			fmt.Fprintf(w, "%s %s\n", affinity.TaskTypeGlyph(taskType), affinity.ExtractTaskTitle(text))
			fmt.Fprintf(w, "Best phase: %s %s\n", fit.Display.Glyph, fit.Display.Name)
			fmt.Fprintf(w, "Task type: %s\n", taskType)
			if current != "" {
				fmt.Fprintf(w, "Good time now: %t\n", fit.OptimalNow)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "phase", "", "Current phase, to check whether now is a good time")
	return cmd
}
