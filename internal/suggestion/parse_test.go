package suggestion

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/minrisk/risk-management/internal"
)

var _ = Describe("parseMatches", func() {
	It("parses a bare JSON array", func() {
		raw := `[{"risk_id":"r1","confidence_score":80,"reasoning":"related","keywords_matched":["outage"]}]`

		matches, err := parseMatches(raw)

		Expect(err).ToNot(HaveOccurred())
		Expect(matches).To(HaveLen(1))
		Expect(matches[0].RiskID).To(Equal("r1"))
		Expect(matches[0].KeywordsMatched).To(ConsistOf("outage"))
	})

	It("tolerates markdown code fences with a language tag", func() {
		raw := "```json\n[{\"risk_id\":\"r1\",\"confidence_score\":90,\"reasoning\":\"x\",\"keywords_matched\":[]}]\n```"

		matches, err := parseMatches(raw)

		Expect(err).ToNot(HaveOccurred())
		Expect(matches).To(HaveLen(1))
	})

	It("tolerates plain code fences", func() {
		raw := "```\n[{\"risk_id\":\"r2\",\"confidence_score\":75,\"reasoning\":\"y\",\"keywords_matched\":[\"fraud\"]}]\n```"

		matches, err := parseMatches(raw)

		Expect(err).ToNot(HaveOccurred())
		Expect(matches[0].RiskID).To(Equal("r2"))
	})

	It("unwraps object envelopes", func() {
		raw := `{"suggestions":[{"risk_id":"r3","confidence_score":71,"reasoning":"z","keywords_matched":[]}]}`

		matches, err := parseMatches(raw)

		Expect(err).ToNot(HaveOccurred())
		Expect(matches[0].RiskID).To(Equal("r3"))
	})

	It("recovers an array embedded in prose", func() {
		raw := `Here are the matches: [{"risk_id":"r4","confidence_score":85,"reasoning":"w","keywords_matched":[]}] Hope that helps!`

		matches, err := parseMatches(raw)

		Expect(err).ToNot(HaveOccurred())
		Expect(matches[0].RiskID).To(Equal("r4"))
	})

	It("fails with a parse error when nothing recoverable is present", func() {
		_, err := parseMatches("I could not find any related risks, sorry.")

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeAIParseFailed))
	})

	It("accepts an empty array", func() {
		matches, err := parseMatches("[]")

		Expect(err).ToNot(HaveOccurred())
		Expect(matches).To(BeEmpty())
	})
})

var _ = Describe("filterMatches", func() {
	valid := map[string]struct{}{
		"r1": {}, "r2": {}, "r3": {}, "r4": {},
	}

	It("keeps scores at or above the threshold and drops the rest", func() {
		matches := []rawMatch{
			{RiskID: "r1", ConfidenceScore: 95},
			{RiskID: "r2", ConfidenceScore: 72},
			{RiskID: "r3", ConfidenceScore: 69},
			{RiskID: "r4", ConfidenceScore: 100},
		}

		kept := filterMatches(matches, 70, valid)

		scores := make([]int, 0, len(kept))
		for _, m := range kept {
			scores = append(scores, m.ConfidenceScore)
		}
		Expect(scores).To(Equal([]int{95, 72, 100}))
	})

	It("clamps out-of-range scores into [0, 100]", func() {
		matches := []rawMatch{
			{RiskID: "r1", ConfidenceScore: 140},
			{RiskID: "r2", ConfidenceScore: -5},
		}

		kept := filterMatches(matches, 70, valid)

		Expect(kept).To(HaveLen(1))
		Expect(kept[0].ConfidenceScore).To(Equal(100))
	})

	It("drops matches referencing risks outside the candidate set", func() {
		matches := []rawMatch{
			{RiskID: "hallucinated", ConfidenceScore: 99},
			{RiskID: "r1", ConfidenceScore: 80},
		}

		kept := filterMatches(matches, 70, valid)

		Expect(kept).To(HaveLen(1))
		Expect(kept[0].RiskID).To(Equal("r1"))
	})
})
