package entity

import (
	"time"

	"github.com/lib/pq"
)

// NotificationLog records a broadcast sent for a batch.
type NotificationLog struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	OwnerID        uint          `gorm:"not null;index" json:"owner_id"`
	BatchID        string        `gorm:"type:varchar(64);not null" json:"batch_id"`
	Title          string        `gorm:"not null" json:"title"`
	Comment        string        `json:"comment"`
	PostIDs        pq.Int64Array `gorm:"type:bigint[]" json:"post_ids"`
	RecipientScope string        `gorm:"type:varchar(16);not null" json:"recipient_scope"`
	SentAt         time.Time     `gorm:"not null" json:"sent_at"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}
