package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/minrisk/risk-management/internal/suggestion"
)

// SuggestionRepository implements suggestion.Repository using GORM
type SuggestionRepository struct {
	db *gorm.DB
}

func NewSuggestionRepository(db *gorm.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

func (r *SuggestionRepository) GetByID(id string) (*suggestion.RiskSuggestion, error) {
	var row suggestion.RiskSuggestion
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, suggestion.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *SuggestionRepository) ListByIncident(incidentID string) ([]*suggestion.RiskSuggestion, error) {
	var rows []*suggestion.RiskSuggestion
	err := r.db.
		Where("incident_id = ?", incidentID).
		Order("confidence_score DESC").
		Find(&rows).Error
	return rows, err
}

// DeletePendingByIncident clears the replaceable pending set. Accepted and
// rejected rows are history and stay put.
func (r *SuggestionRepository) DeletePendingByIncident(incidentID string) error {
	return r.db.
		Where("incident_id = ? AND status = ?", incidentID, suggestion.StatusPending).
		Delete(&suggestion.RiskSuggestion{}).Error
}

func (r *SuggestionRepository) CreateBatch(rows []*suggestion.RiskSuggestion) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Create(&rows).Error
}

func (r *SuggestionRepository) UpdateStatus(id string, status suggestion.Status) error {
	result := r.db.Model(&suggestion.RiskSuggestion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return suggestion.ErrNotFound
	}
	return nil
}

// AcceptedCountsByRisk returns, per risk ID, how many suggestions against it
// were accepted. Risks with zero acceptances are absent from the map.
func (r *SuggestionRepository) AcceptedCountsByRisk(riskIDs []string) (map[string]int, error) {
	if len(riskIDs) == 0 {
		return map[string]int{}, nil
	}

	type countRow struct {
		RiskID string
		N      int
	}
	var rows []countRow
	err := r.db.Model(&suggestion.RiskSuggestion{}).
		Select("risk_id, COUNT(*) AS n").
		Where("risk_id IN ? AND status = ?", riskIDs, suggestion.StatusAccepted).
		Group("risk_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.RiskID] = row.N
	}
	return counts, nil
}
