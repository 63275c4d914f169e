package models

import (
	"time"

	"github.com/google/uuid"
)

// PdfPacket records one generated evidence packet. Rows are immutable;
// regeneration inserts a new row and "latest" is resolved by created_at.
type PdfPacket struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID     string    `gorm:"column:user_id;not null;index:idx_pdf_packets_user_dispute"`
	DisputeID  string    `gorm:"column:dispute_id;not null;index:idx_pdf_packets_user_dispute"`
	FileName   string    `gorm:"column:file_name;not null"`
	StoredPath string    `gorm:"column:stored_path;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
