package entity

import "time"

// User is the owner of posts. Only the fields the monitor needs are mapped.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `json:"username"`
	TelegramID int64     `json:"telegram_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
