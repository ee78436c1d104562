package entity

import "time"

// UsageRecord counts price-check batches an owner consumed in one period.
type UsageRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uint      `gorm:"not null;uniqueIndex:idx_usage_owner_period" json:"owner_id"`
	Period      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_usage_owner_period" json:"period"`
	UsageLimit  int       `gorm:"not null" json:"limit"`
	Used        int       `gorm:"not null;default:0" json:"used"`
	LastBatchID string    `gorm:"type:varchar(64);not null;default:''" json:"last_batch_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}

// Remaining returns the number of batches still allowed in the period.
func (u *UsageRecord) Remaining() int {
	if u.Used >= u.UsageLimit {
		return 0
	}
	return u.UsageLimit - u.Used
}
