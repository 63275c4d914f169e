package evidence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/disputedesk/disputedesk-backend/pkg/db/models"
)

// Repository exposes evidence file metadata persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an evidence repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists an evidence file record.
func (r *Repository) Create(ctx context.Context, file *models.EvidenceFile) (*models.EvidenceFile, error) {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return nil, err
	}
	return file, nil
}

// List returns the user's evidence for a dispute in upload order.
func (r *Repository) List(ctx context.Context, userID, disputeID string) ([]models.EvidenceFile, error) {
	var rows []models.EvidenceFile
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND dispute_id = ?", userID, disputeID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByIDForUser retrieves one evidence record scoped to its owner.
func (r *Repository) FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.EvidenceFile, error) {
	var row models.EvidenceFile
	err := r.db.WithContext(ctx).
		First(&row, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Delete removes an evidence record scoped to its owner.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, userID string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.EvidenceFile{}).Error
}
