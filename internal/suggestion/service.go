package suggestion

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/authz"
	"github.com/minrisk/risk-management/internal/incident"
	"github.com/minrisk/risk-management/internal/llm"
	"github.com/minrisk/risk-management/internal/profile"
	"github.com/minrisk/risk-management/internal/risk"
)

// Repository defines the data access methods for risk suggestions
type Repository interface {
	GetByID(id string) (*RiskSuggestion, error)
	ListByIncident(incidentID string) ([]*RiskSuggestion, error)
	DeletePendingByIncident(incidentID string) error
	CreateBatch(rows []*RiskSuggestion) error
	UpdateStatus(id string, status Status) error
	AcceptedCountsByRisk(riskIDs []string) (map[string]int, error)
}

// IncidentStore loads the incident under analysis.
type IncidentStore interface {
	GetByID(id string) (*incident.Incident, error)
}

// RiskStore loads the candidate risks for matching.
type RiskStore interface {
	ListActiveByOrganization(orgID string) ([]*risk.Risk, error)
}

// AnalysisResult is the successful outcome of an analysis run.
type AnalysisResult struct {
	Suggestions       []*RiskSuggestion   `json:"suggestions"`
	HistoricalContext []HistoricalPattern `json:"historical_context"`
	CandidateRisks    int                 `json:"candidate_risks"`
	ModelVersion      string              `json:"model_version"`
}

// Service runs the AI analysis pipeline and manages suggestion lifecycle.
type Service struct {
	repo      Repository
	incidents IncidentStore
	risks     RiskStore
	ai        llm.CompletionClient
	threshold int
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	incidents IncidentStore,
	risks RiskStore,
	ai llm.CompletionClient,
	threshold int,
	logger *slog.Logger,
) *Service {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Service{
		repo:      repo,
		incidents: incidents,
		risks:     risks,
		ai:        ai,
		threshold: threshold,
		logger:    logger,
	}
}

// Analyze runs the full pipeline for one incident: load candidates, build
// the prompt, call the model, filter, then replace the incident's pending
// suggestion set. The delete/insert pair is deliberately not transactional;
// a failed delete is logged and the insert proceeds, and re-analysis heals
// any leftovers.
func (s *Service) Analyze(ctx context.Context, caller *profile.Profile, incidentID string) (*AnalysisResult, error) {
	inc, err := s.incidents.GetByID(incidentID)
	if err != nil {
		if errors.Is(err, incident.ErrNotFound) {
			return nil, internal.NewNotFoundError("incident not found", internal.ErrCodeIncidentNotFound)
		}
		return nil, internal.NewInternalError("failed to load incident", err)
	}

	if err := authz.CanAccessOrganization(caller, inc.OrganizationID); err != nil {
		s.logger.Warn("analysis denied",
			"caller_id", caller.ID,
			"incident_id", incidentID,
			"organization_id", inc.OrganizationID)
		return nil, err
	}

	candidates, err := s.risks.ListActiveByOrganization(inc.OrganizationID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load candidate risks", err)
	}

	history, err := s.loadHistory(candidates)
	if err != nil {
		// History only tunes the prompt; proceed without it.
		s.logger.Warn("failed to load acceptance history", "error", err)
		history = nil
	}

	if len(candidates) == 0 {
		s.logger.Info("no active risks to match against", "incident_id", incidentID)
		return &AnalysisResult{
			Suggestions:       []*RiskSuggestion{},
			HistoricalContext: history,
			ModelVersion:      s.ai.ModelVersion(),
		}, nil
	}

	prompt := buildPrompt(inc, candidates, history)

	raw, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	matches, err := parseMatches(raw)
	if err != nil {
		s.logger.Error("ai response unparseable",
			"incident_id", incidentID,
			"response_prefix", truncate(raw, 200))
		return nil, err
	}

	validIDs := make(map[string]struct{}, len(candidates))
	for _, r := range candidates {
		validIDs[r.ID] = struct{}{}
	}
	kept := filterMatches(matches, s.threshold, validIDs)

	s.logger.Info("analysis complete",
		"incident_id", incidentID,
		"raw_matches", len(matches),
		"kept", len(kept),
		"threshold", s.threshold)

	rows := s.toRows(incidentID, kept)

	if err := s.repo.DeletePendingByIncident(incidentID); err != nil {
		// Non-critical: stale pending rows are replaced on the next run.
		s.logger.Warn("failed to delete prior pending suggestions",
			"incident_id", incidentID, "error", err)
	}

	if len(rows) > 0 {
		if err := s.repo.CreateBatch(rows); err != nil {
			return nil, internal.NewInternalError("failed to store suggestions", err)
		}
	}

	return &AnalysisResult{
		Suggestions:       rows,
		HistoricalContext: history,
		CandidateRisks:    len(candidates),
		ModelVersion:      s.ai.ModelVersion(),
	}, nil
}

func (s *Service) toRows(incidentID string, matches []rawMatch) []*RiskSuggestion {
	now := time.Now()
	rows := make([]*RiskSuggestion, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, &RiskSuggestion{
			ID:              uuid.NewString(),
			IncidentID:      incidentID,
			RiskID:          m.RiskID,
			ConfidenceScore: m.ConfidenceScore,
			Reasoning:       m.Reasoning,
			KeywordsMatched: strings.Join(m.KeywordsMatched, ","),
			Status:          StatusPending,
			AIModelVersion:  s.ai.ModelVersion(),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return rows
}

func (s *Service) loadHistory(candidates []*risk.Risk) ([]HistoricalPattern, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, r := range candidates {
		ids = append(ids, r.ID)
	}

	counts, err := s.repo.AcceptedCountsByRisk(ids)
	if err != nil {
		return nil, err
	}

	var history []HistoricalPattern
	for _, r := range candidates {
		if n := counts[r.ID]; n > 0 {
			history = append(history, HistoricalPattern{
				RiskID:        r.ID,
				RiskTitle:     r.Title,
				AcceptedCount: n,
			})
		}
	}
	return history, nil
}

// ListForIncident returns the stored suggestions for an incident, org-gated.
func (s *Service) ListForIncident(caller *profile.Profile, incidentID string) ([]*RiskSuggestion, error) {
	inc, err := s.incidents.GetByID(incidentID)
	if err != nil {
		if errors.Is(err, incident.ErrNotFound) {
			return nil, internal.NewNotFoundError("incident not found", internal.ErrCodeIncidentNotFound)
		}
		return nil, internal.NewInternalError("failed to load incident", err)
	}
	if err := authz.CanAccessOrganization(caller, inc.OrganizationID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByIncident(incidentID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list suggestions", err)
	}
	return rows, nil
}

// Decide flips a pending suggestion to accepted or rejected.
func (s *Service) Decide(caller *profile.Profile, suggestionID string, decision Status) (*RiskSuggestion, error) {
	if decision != StatusAccepted && decision != StatusRejected {
		return nil, internal.NewValidationError("decision must be accepted or rejected", internal.ErrCodeInvalidStatus)
	}

	row, err := s.repo.GetByID(suggestionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("suggestion not found", internal.ErrCodeRiskNotFound)
		}
		return nil, internal.NewInternalError("failed to load suggestion", err)
	}

	inc, err := s.incidents.GetByID(row.IncidentID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load incident", err)
	}
	if err := authz.CanAccessOrganization(caller, inc.OrganizationID); err != nil {
		return nil, err
	}

	if row.Status != StatusPending {
		return nil, internal.NewValidationError("suggestion has already been decided", internal.ErrCodeInvalidStatus)
	}

	if err := s.repo.UpdateStatus(suggestionID, decision); err != nil {
		return nil, internal.NewInternalError("failed to update suggestion", err)
	}
	row.Status = decision
	row.UpdatedAt = time.Now()

	s.logger.Info("suggestion decided",
		"suggestion_id", suggestionID,
		"decision", decision,
		"actor_id", caller.ID)

	return row, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
