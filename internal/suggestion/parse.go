package suggestion

import (
	"encoding/json"
	"strings"

	"github.com/minrisk/risk-management/internal"
)

// rawMatch is one entry of the model's JSON output before filtering.
type rawMatch struct {
	RiskID          string   `json:"risk_id"`
	ConfidenceScore int      `json:"confidence_score"`
	Reasoning       string   `json:"reasoning"`
	KeywordsMatched []string `json:"keywords_matched"`
}

// parseMatches recovers the match array from a model response. Models often
// wrap JSON in markdown code fences or lead with prose, so the parser strips
// fences and falls back to the first bracketed region before giving up.
func parseMatches(raw string) ([]rawMatch, error) {
	candidate := stripCodeFences(raw)

	var matches []rawMatch
	if err := json.Unmarshal([]byte(candidate), &matches); err == nil {
		return matches, nil
	}

	// Some models return {"matches": [...]} or {"suggestions": [...]}.
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &wrapped); err == nil {
		for _, key := range []string{"matches", "suggestions"} {
			if inner, ok := wrapped[key]; ok {
				if err := json.Unmarshal(inner, &matches); err == nil {
					return matches, nil
				}
			}
		}
	}

	if region := bracketedRegion(candidate); region != "" {
		if err := json.Unmarshal([]byte(region), &matches); err == nil {
			return matches, nil
		}
	}

	return nil, internal.NewParseError("ai response is not valid JSON", nil)
}

// stripCodeFences removes a surrounding ```json ... ``` (or plain ```) block.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// drop the language tag line (e.g. "json")
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// bracketedRegion returns the outermost [...] slice of s, or "".
func bracketedRegion(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// clampConfidence forces a score into [0, 100].
func clampConfidence(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// filterMatches clamps scores and drops entries below the threshold or
// referencing risks outside the candidate set.
func filterMatches(matches []rawMatch, threshold int, validRiskIDs map[string]struct{}) []rawMatch {
	kept := make([]rawMatch, 0, len(matches))
	for _, m := range matches {
		m.ConfidenceScore = clampConfidence(m.ConfidenceScore)
		if m.ConfidenceScore < threshold {
			continue
		}
		if _, ok := validRiskIDs[m.RiskID]; !ok {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}
