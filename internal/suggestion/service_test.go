package suggestion_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/incident"
	"github.com/minrisk/risk-management/internal/profile"
	"github.com/minrisk/risk-management/internal/risk"
	"github.com/minrisk/risk-management/internal/suggestion"
)

func TestSuggestionService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SuggestionService Suite")
}

// ---- mocks ----

type mockSuggestionRepository struct {
	byID          map[string]*suggestion.RiskSuggestion
	pending       map[string][]*suggestion.RiskSuggestion
	accepted      map[string]int
	deleteError   error
	createError   error
	deleteCalls   int
	createdBatch  []*suggestion.RiskSuggestion
	statusUpdates map[string]suggestion.Status
}

func newMockSuggestionRepository() *mockSuggestionRepository {
	return &mockSuggestionRepository{
		byID:          make(map[string]*suggestion.RiskSuggestion),
		pending:       make(map[string][]*suggestion.RiskSuggestion),
		accepted:      make(map[string]int),
		statusUpdates: make(map[string]suggestion.Status),
	}
}

func (m *mockSuggestionRepository) GetByID(id string) (*suggestion.RiskSuggestion, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, suggestion.ErrNotFound
	}
	return s, nil
}

func (m *mockSuggestionRepository) ListByIncident(incidentID string) ([]*suggestion.RiskSuggestion, error) {
	return m.pending[incidentID], nil
}

func (m *mockSuggestionRepository) DeletePendingByIncident(incidentID string) error {
	m.deleteCalls++
	if m.deleteError != nil {
		return m.deleteError
	}
	m.pending[incidentID] = nil
	return nil
}

func (m *mockSuggestionRepository) CreateBatch(rows []*suggestion.RiskSuggestion) error {
	if m.createError != nil {
		return m.createError
	}
	m.createdBatch = rows
	for _, row := range rows {
		m.byID[row.ID] = row
		m.pending[row.IncidentID] = append(m.pending[row.IncidentID], row)
	}
	return nil
}

func (m *mockSuggestionRepository) UpdateStatus(id string, status suggestion.Status) error {
	s, ok := m.byID[id]
	if !ok {
		return suggestion.ErrNotFound
	}
	s.Status = status
	m.statusUpdates[id] = status
	return nil
}

func (m *mockSuggestionRepository) AcceptedCountsByRisk(riskIDs []string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, id := range riskIDs {
		if n := m.accepted[id]; n > 0 {
			counts[id] = n
		}
	}
	return counts, nil
}

type mockIncidentStore struct {
	incidents map[string]*incident.Incident
}

func (m *mockIncidentStore) GetByID(id string) (*incident.Incident, error) {
	inc, ok := m.incidents[id]
	if !ok {
		return nil, incident.ErrNotFound
	}
	return inc, nil
}

type mockRiskStore struct {
	risks map[string][]*risk.Risk
}

func (m *mockRiskStore) ListActiveByOrganization(orgID string) ([]*risk.Risk, error) {
	return m.risks[orgID], nil
}

type mockCompletionClient struct {
	response string
	err      error
	prompts  []string
}

func (m *mockCompletionClient) Complete(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockCompletionClient) ModelVersion() string { return "test-model-1" }

// ---- specs ----

var _ = Describe("SuggestionService", func() {
	var (
		service   *suggestion.Service
		repo      *mockSuggestionRepository
		incidents *mockIncidentStore
		risks     *mockRiskStore
		ai        *mockCompletionClient
		ctx       context.Context
	)

	orgA := "org-a"
	orgB := "org-b"

	member := &profile.Profile{ID: "u1", Role: profile.RoleUser, OrganizationID: &orgA}

	BeforeEach(func() {
		repo = newMockSuggestionRepository()
		incidents = &mockIncidentStore{incidents: map[string]*incident.Incident{
			"inc-1": {ID: "inc-1", OrganizationID: orgA, Title: "Payment outage", Description: "Gateway down"},
		}}
		risks = &mockRiskStore{risks: map[string][]*risk.Risk{
			orgA: {
				{ID: "r1", OrganizationID: orgA, Title: "Vendor outage", Status: risk.StatusOpen},
				{ID: "r2", OrganizationID: orgA, Title: "Fraud exposure", Status: risk.StatusMonitoring},
			},
		}}
		ai = &mockCompletionClient{response: `[
			{"risk_id":"r1","confidence_score":95,"reasoning":"direct match","keywords_matched":["outage"]},
			{"risk_id":"r2","confidence_score":69,"reasoning":"weak","keywords_matched":[]}
		]`}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx = context.Background()

		service = suggestion.NewService(repo, incidents, risks, ai, 70, logger)
	})

	Describe("Analyze", func() {
		It("stores only matches at or above the confidence threshold", func() {
			result, err := service.Analyze(ctx, member, "inc-1")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Suggestions).To(HaveLen(1))
			Expect(result.Suggestions[0].RiskID).To(Equal("r1"))
			Expect(result.Suggestions[0].ConfidenceScore).To(Equal(95))
			Expect(result.Suggestions[0].Status).To(Equal(suggestion.StatusPending))
			Expect(result.Suggestions[0].AIModelVersion).To(Equal("test-model-1"))
			Expect(result.ModelVersion).To(Equal("test-model-1"))
		})

		It("replaces the pending set on re-analysis", func() {
			_, err := service.Analyze(ctx, member, "inc-1")
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Analyze(ctx, member, "inc-1")
			Expect(err).ToNot(HaveOccurred())

			Expect(repo.deleteCalls).To(Equal(2))
			Expect(repo.pending["inc-1"]).To(HaveLen(1))
		})

		It("continues past a failed delete of prior pending suggestions", func() {
			repo.deleteError = errors.New("lock timeout")

			result, err := service.Analyze(ctx, member, "inc-1")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Suggestions).To(HaveLen(1))
			Expect(repo.createdBatch).To(HaveLen(1))
		})

		It("denies callers from another organization", func() {
			outsider := &profile.Profile{ID: "u2", Role: profile.RoleUser, OrganizationID: &orgB}

			_, err := service.Analyze(ctx, outsider, "inc-1")

			Expect(err).To(MatchError(internal.ErrOrganizationScope))
			Expect(ai.prompts).To(BeEmpty())
		})

		It("passes AI timeouts through untouched", func() {
			ai.err = internal.NewUpstreamTimeoutError("ai provider did not respond in time", context.DeadlineExceeded)

			_, err := service.Analyze(ctx, member, "inc-1")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUpstreamTimeout))
			Expect(repo.deleteCalls).To(BeZero())
		})

		It("surfaces unparseable AI output as a parse error", func() {
			ai.response = "sorry, I cannot help with that"

			_, err := service.Analyze(ctx, member, "inc-1")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeAIParseFailed))
		})

		It("skips the model call when there are no active risks", func() {
			risks.risks[orgA] = nil

			result, err := service.Analyze(ctx, member, "inc-1")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Suggestions).To(BeEmpty())
			Expect(ai.prompts).To(BeEmpty())
		})

		It("feeds acceptance history into the prompt", func() {
			repo.accepted["r1"] = 3

			result, err := service.Analyze(ctx, member, "inc-1")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.HistoricalContext).To(HaveLen(1))
			Expect(result.HistoricalContext[0].AcceptedCount).To(Equal(3))
			Expect(ai.prompts[0]).To(ContainSubstring("accepted 3 times"))
		})

		It("returns not found for unknown incidents", func() {
			_, err := service.Analyze(ctx, member, "ghost")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeIncidentNotFound))
		})
	})

	Describe("Decide", func() {
		BeforeEach(func() {
			_, err := service.Analyze(ctx, member, "inc-1")
			Expect(err).ToNot(HaveOccurred())
		})

		It("flips a pending suggestion to accepted", func() {
			id := repo.createdBatch[0].ID

			row, err := service.Decide(member, id, suggestion.StatusAccepted)

			Expect(err).ToNot(HaveOccurred())
			Expect(row.Status).To(Equal(suggestion.StatusAccepted))
		})

		It("refuses a second decision", func() {
			id := repo.createdBatch[0].ID

			_, err := service.Decide(member, id, suggestion.StatusAccepted)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Decide(member, id, suggestion.StatusRejected)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidStatus))
		})

		It("rejects decisions other than accepted or rejected", func() {
			id := repo.createdBatch[0].ID

			_, err := service.Decide(member, id, suggestion.StatusPending)

			Expect(err).To(HaveOccurred())
		})

		It("denies callers from another organization", func() {
			outsider := &profile.Profile{ID: "u2", Role: profile.RoleUser, OrganizationID: &orgB}
			id := repo.createdBatch[0].ID

			_, err := service.Decide(outsider, id, suggestion.StatusAccepted)

			Expect(err).To(MatchError(internal.ErrOrganizationScope))
		})
	})
})
