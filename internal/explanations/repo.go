package explanations

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/disputedesk/disputedesk-backend/pkg/db/models"
)

// Repository exposes dispute explanation persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an explanation repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get retrieves the user's explanation for a dispute.
func (r *Repository) Get(ctx context.Context, userID, disputeID string) (*models.DisputeExplanation, error) {
	var row models.DisputeExplanation
	err := r.db.WithContext(ctx).
		First(&row, "user_id = ? AND dispute_id = ?", userID, disputeID).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert writes the explanation, replacing any previous body for the same
// (user, dispute) pair in one statement. Concurrent writers cannot create a
// second row because the conflict resolves inside the database.
func (r *Repository) Upsert(ctx context.Context, row *models.DisputeExplanation) (*models.DisputeExplanation, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "dispute_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, row.UserID, row.DisputeID)
}
