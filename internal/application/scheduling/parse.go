package scheduling

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/cyclesync/cyclesync/internal/affinity"
	"github.com/cyclesync/cyclesync/internal/domain"
)

// Errors returned by ParseModelResponse. Any of them sends the caller to the
// deterministic fallback.
var (
	ErrEmptyResponse   = errors.New("model returned an empty response")
	ErrHTMLResponse    = errors.New("model returned HTML instead of JSON")
	ErrNoJSONObject    = errors.New("no JSON object found in model response")
	ErrMissingField    = errors.New("model response missing required field")
	ErrInvalidResponse = errors.New("invalid model response")
)

const (
	defaultAlternativeConfidence = 0.5
	defaultAlternativeReason     = "Alternative timing option"
	defaultShortSummary          = "Optimized for your cycle phase"
	defaultReasoning             = "AI-generated recommendation"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// modelResponse mirrors the JSON the model is asked for. Pointers mark the
// fields whose absence must be detected.
type modelResponse struct {
	SuggestedDate    *string            `json:"suggestedDate"`
	CycleDay         *float64           `json:"cycleDay"`
	Phase            *string            `json:"phase"`
	Confidence       *float64           `json:"confidence"`
	Reasoning        json.RawMessage    `json:"reasoning"`
	Alternatives     []modelAlternative `json:"alternatives"`
	OptimizationTips []string           `json:"optimizationTips"`
	HormonalInsight  string             `json:"hormonalInsight"`
	ShortSummary     string             `json:"shortSummary"`
}

type modelAlternative struct {
	Date       string   `json:"date"`
	CycleDay   *float64 `json:"cycleDay"`
	Phase      string   `json:"phase"`
	Confidence *float64 `json:"confidence"`
	Reason     string   `json:"reason"`
}

// ParseModelResponse decodes raw model text into a suggestion.
//
// The text may be a bare object, an object wrapped in prose, or a fenced
// ```json block. suggestedDate, cycleDay and phase are required; cycleDay
// must lie in [1, cycleLength] and phase must be canonical. Confidence
// defaults to 0.7 and is clamped to [0,1]. Alternatives with an unreadable
// date or phase are dropped.
func ParseModelResponse(raw string, cycleLength int) (domain.Suggestion, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return domain.Suggestion{}, ErrEmptyResponse
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return domain.Suggestion{}, ErrHTMLResponse
	}

	object, err := extractJSONObject(text)
	if err != nil {
		return domain.Suggestion{}, err
	}

	var resp modelResponse
	if err := json.Unmarshal([]byte(object), &resp); err != nil {
		return domain.Suggestion{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	switch {
	case resp.SuggestedDate == nil || *resp.SuggestedDate == "":
		return domain.Suggestion{}, fmt.Errorf("%w: suggestedDate", ErrMissingField)
	case resp.CycleDay == nil:
		return domain.Suggestion{}, fmt.Errorf("%w: cycleDay", ErrMissingField)
	case resp.Phase == nil || *resp.Phase == "":
		return domain.Suggestion{}, fmt.Errorf("%w: phase", ErrMissingField)
	}

	date, err := domain.ParseDate(*resp.SuggestedDate)
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	phase, err := domain.NewPhase(*resp.Phase)
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	day := int(math.Round(*resp.CycleDay))
	if day < 1 || (cycleLength > 0 && day > cycleLength) {
		return domain.Suggestion{}, fmt.Errorf("%w: cycle day %d out of range", ErrInvalidResponse, day)
	}

	confidence := domain.DefaultConfidence
	if resp.Confidence != nil {
		confidence = domain.ClampConfidence(*resp.Confidence)
	}

	summary := resp.ShortSummary
	if summary == "" {
		summary = defaultShortSummary
	}

	tips := resp.OptimizationTips
	if len(tips) == 0 {
		insight := resp.HormonalInsight
		if insight == "" {
			insight = "Align tasks with your hormonal rhythms for optimal performance"
		}
		tips = []string{affinity.FallbackTip, insight}
	}

	return domain.Suggestion{
		SuggestedDate:    date,
		CycleDay:         day,
		Phase:            phase,
		Confidence:       confidence,
		Reasoning:        decodeReasoning(resp.Reasoning),
		Alternatives:     convertAlternatives(resp.Alternatives),
		OptimizationTips: tips,
		HormonalInsight:  resp.HormonalInsight,
		ShortSummary:     summary,
		Source:           domain.SourceModel,
	}, nil
}

// extractJSONObject prefers a fenced block, then the outermost braces.
func extractJSONObject(text string) (string, error) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSONObject
	}
	return text[start : end+1], nil
}

// decodeReasoning accepts either a string array or a single string.
func decodeReasoning(raw json.RawMessage) []string {
	if len(raw) > 0 {
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
			return list
		}
		var single string
		if err := json.Unmarshal(raw, &single); err == nil && single != "" {
			return []string{single}
		}
	}
	return []string{defaultReasoning}
}

func convertAlternatives(in []modelAlternative) []domain.Alternative {
	out := make([]domain.Alternative, 0, len(in))
	for _, alt := range in {
		date, err := domain.ParseDate(alt.Date)
		if err != nil {
			continue
		}
		phase, err := domain.NewPhase(alt.Phase)
		if err != nil {
			continue
		}

		confidence := defaultAlternativeConfidence
		if alt.Confidence != nil {
			confidence = domain.ClampConfidence(*alt.Confidence)
		}
		reason := alt.Reason
		if reason == "" {
			reason = defaultAlternativeReason
		}
		var day int
		if alt.CycleDay != nil {
			day = int(math.Round(*alt.CycleDay))
		}

		out = append(out, domain.Alternative{
			Date:       date,
			CycleDay:   day,
			Phase:      phase,
			Confidence: confidence,
			Reason:     reason,
		})
	}
	return out
}
