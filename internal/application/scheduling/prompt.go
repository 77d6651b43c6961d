package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/cyclesync/cyclesync/internal/cycle"
	"github.com/cyclesync/cyclesync/internal/domain"
)

// BuildPrompt renders the scheduling request sent to the model. The model is
// asked for a bare JSON object; ParseModelResponse tolerates deviations.
func BuildPrompt(input domain.SuggestionInput, state cycle.State, now time.Time) string {
	due := "No specific deadline"
	if input.Constraints.DueDate != nil {
		due = input.Constraints.DueDate.Format(domain.DateLayout)
	}

	days := "Any day"
	if len(input.Constraints.AvailableDays) > 0 {
		names := make([]string, 0, len(input.Constraints.AvailableDays))
		for _, d := range input.Constraints.AvailableDays {
			names = append(names, strings.ToLower(d.String()))
		}
		days = strings.Join(names, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TASK SCHEDULING REQUEST:\n")
	fmt.Fprintf(&b, "Current Date: %s\n", cycle.CalendarDate(now).Format(domain.DateLayout))
	fmt.Fprintf(&b, "Current Cycle Day: %d\n", state.CycleDay)
	fmt.Fprintf(&b, "Current Phase: %s\n", state.Phase)
	fmt.Fprintf(&b, "Cycle Length: %d days\n\n", state.CycleLength)

	fmt.Fprintf(&b, "TASK DETAILS:\n")
	fmt.Fprintf(&b, "- Description: %q\n", input.Description)
	fmt.Fprintf(&b, "- Detected Type: %s\n", input.TaskType)
	fmt.Fprintf(&b, "- Energy Required: %s\n", input.EnergyRequired)
	fmt.Fprintf(&b, "- Focus Required: %s\n", input.FocusRequired)
	fmt.Fprintf(&b, "- Due Date: %s\n", due)
	fmt.Fprintf(&b, "- Available Days: %s\n", days)
	fmt.Fprintf(&b, "- Flexibility: %d days\n\n", input.Constraints.FlexibilityDays)

	b.WriteString(`ANALYSIS REQUIREMENTS:
1. Consider the user's current cycle phase and upcoming phase transitions
2. Optimize for the task type based on hormonal fluctuations
3. Factor in energy and focus requirements
4. Provide confidence scoring based on cycle science
5. Suggest 2-3 alternative dates with different phase alignments

CRITICAL: You MUST respond with ONLY valid JSON in exactly this format:

{
  "suggestedDate": "YYYY-MM-DD",
  "cycleDay": 15,
  "phase": "ovulatory",
  "confidence": 0.85,
  "reasoning": ["First reason", "Second reason"],
  "alternatives": [
    { "date": "YYYY-MM-DD", "cycleDay": 16, "phase": "ovulatory", "confidence": 0.75, "reason": "Alternative reason" }
  ],
  "optimizationTips": ["Tip 1", "Tip 2"],
  "hormonalInsight": "Brief hormonal explanation",
  "shortSummary": "One concise sentence under 50 characters for UI display"
}

Respond with ONLY the JSON object, no other text.`)

	return b.String()
}
