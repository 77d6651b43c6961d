package affinity

import "github.com/cyclesync/cyclesync/internal/cycle"

// DisplayInfo is how a phase tag is shown next to a task.
type DisplayInfo struct {
	Name  string
	Color string
	Glyph string
}

var anyTime = DisplayInfo{Name: "Any time", Color: "#6b7280", Glyph: "✨"}

var displayTable = map[cycle.Phase]DisplayInfo{
	cycle.PhaseMenstrual:  {Name: "Menstrual", Color: "#ef4444", Glyph: "🌙"},
	cycle.PhaseFollicular: {Name: "Follicular", Color: "#10b981", Glyph: "🌱"},
	cycle.PhaseOvulatory:  {Name: "Ovulatory", Color: "#f59e0b", Glyph: "☀️"},
	cycle.PhaseLuteal:     {Name: "Luteal", Color: "#8b5cf6", Glyph: "🍂"},
}

// PhaseDisplayInfo returns the display entry for a phase. Unknown tags and
// cycle.PhaseAny get the "Any time" entry.
func PhaseDisplayInfo(phase cycle.Phase) DisplayInfo {
	if info, ok := displayTable[phase]; ok {
		return info
	}
	return anyTime
}
