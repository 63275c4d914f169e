package packets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/disputedesk/disputedesk-backend/pkg/db/models"
)

// Repository exposes generated packet persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a packet repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a packet record.
func (r *Repository) Create(ctx context.Context, packet *models.PdfPacket) (*models.PdfPacket, error) {
	if err := r.db.WithContext(ctx).Create(packet).Error; err != nil {
		return nil, err
	}
	return packet, nil
}

// GetLatest returns the most recently generated packet for the dispute.
func (r *Repository) GetLatest(ctx context.Context, userID, disputeID string) (*models.PdfPacket, error) {
	var row models.PdfPacket
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND dispute_id = ?", userID, disputeID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByIDForUser retrieves one packet scoped to its owner.
func (r *Repository) FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.PdfPacket, error) {
	var row models.PdfPacket
	err := r.db.WithContext(ctx).
		First(&row, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
