package models

import (
	"time"

	"github.com/google/uuid"
)

// DisputeExplanation holds the merchant's narrative for one dispute. The
// unique index on (user_id, dispute_id) is the serialization point for
// concurrent upserts.
type DisputeExplanation struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    string    `gorm:"column:user_id;not null;uniqueIndex:uq_dispute_explanations_user_dispute"`
	DisputeID string    `gorm:"column:dispute_id;not null;uniqueIndex:uq_dispute_explanations_user_dispute"`
	Body      string    `gorm:"column:body;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
