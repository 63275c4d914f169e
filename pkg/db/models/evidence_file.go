package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/disputedesk/disputedesk-backend/pkg/enums"
)

// EvidenceFile captures metadata for one uploaded evidence blob. The bytes
// live on disk at StoredPath; only the metadata row is owned by the
// database. Every query against this table filters by UserID.
type EvidenceFile struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	UserID     string             `gorm:"column:user_id;not null;index:idx_evidence_files_user_dispute"`
	DisputeID  string             `gorm:"column:dispute_id;not null;index:idx_evidence_files_user_dispute"`
	Kind       enums.EvidenceKind `gorm:"column:kind;type:evidence_kind;not null"`
	FileName   string             `gorm:"column:file_name;not null"`
	StoredPath string             `gorm:"column:stored_path;not null"`
	SizeBytes  int64              `gorm:"column:size_bytes;not null"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}
