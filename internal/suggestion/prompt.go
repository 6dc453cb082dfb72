package suggestion

import (
	"fmt"
	"strings"

	"github.com/minrisk/risk-management/internal/incident"
	"github.com/minrisk/risk-management/internal/risk"
)

// buildPrompt renders the analysis request: the incident under review, the
// organization's active risks as candidates, and acceptance history so the
// model can weigh precedent. The model must answer with a JSON array only.
func buildPrompt(inc *incident.Incident, risks []*risk.Risk, history []HistoricalPattern) string {
	var b strings.Builder

	b.WriteString("You are a risk analyst. Given an incident and a list of existing risks, ")
	b.WriteString("identify which risks this incident is related to.\n\n")

	b.WriteString("Incident:\n")
	fmt.Fprintf(&b, "- Title: %s\n", inc.Title)
	fmt.Fprintf(&b, "- Description: %s\n", inc.Description)
	fmt.Fprintf(&b, "- Severity: %s\n\n", inc.Severity)

	b.WriteString("Candidate risks:\n")
	for _, r := range risks {
		fmt.Fprintf(&b, "- id: %s | title: %s | category: %s | description: %s\n",
			r.ID, r.Title, r.Category, r.Description)
	}
	b.WriteString("\n")

	if len(history) > 0 {
		b.WriteString("Acceptance history (times analysts accepted suggestions for each risk):\n")
		for _, h := range history {
			fmt.Fprintf(&b, "- %s (%s): accepted %d times\n", h.RiskTitle, h.RiskID, h.AcceptedCount)
		}
		b.WriteString("\n")
	}

	b.WriteString("Respond with ONLY a JSON array, no prose and no markdown, where each element is:\n")
	b.WriteString(`{"risk_id": "<id from the candidate list>", "confidence_score": <0-100>, ` +
		`"reasoning": "<one sentence>", "keywords_matched": ["<keyword>", ...]}` + "\n")
	b.WriteString("Only include risks you are genuinely confident about. An empty array is a valid answer.\n")

	return b.String()
}
