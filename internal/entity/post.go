package entity

import (
	"time"

	"gorm.io/datatypes"
)

// PostStatus is the lifecycle state of a post.
type PostStatus string

const (
	PostStatusOpen    PostStatus = "open"
	PostStatusSuccess PostStatus = "success"
	PostStatusLoss    PostStatus = "loss"
)

// Direction is the side implied by a post's thresholds relative to its initial price.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// PriceCheck is one OHLC snapshot stored in a post's history.
type PriceCheck struct {
	Date   string   `json:"date"`
	Open   *float64 `json:"open,omitempty"`
	High   *float64 `json:"high,omitempty"`
	Low    *float64 `json:"low,omitempty"`
	Close  float64  `json:"close"`
	Volume *int64   `json:"volume,omitempty"`
}

// Post is a tracked trading call.
type Post struct {
	ID                    uint                            `gorm:"primaryKey" json:"id"`
	OwnerID               uint                            `gorm:"not null;index" json:"owner_id"`
	Symbol                string                          `gorm:"not null" json:"symbol"`
	Exchange              string                          `json:"exchange"`
	CompanyName           string                          `json:"company_name"`
	Country               string                          `json:"country"`
	InitialPrice          float64                         `gorm:"not null" json:"initial_price"`
	TargetPrice           *float64                        `json:"target_price"`
	StopLossPrice         *float64                        `json:"stop_loss_price"`
	CurrentPrice          float64                         `json:"current_price"`
	LastPriceCheck        *time.Time                      `json:"last_price_check"`
	Status                PostStatus                      `gorm:"type:varchar(16);not null;default:'open'" json:"status"`
	TargetReached         bool                            `gorm:"not null;default:false" json:"target_reached"`
	TargetReachedDate     *time.Time                      `json:"target_reached_date"`
	StopLossTriggered     bool                            `gorm:"not null;default:false" json:"stop_loss_triggered"`
	StopLossTriggeredDate *time.Time                      `json:"stop_loss_triggered_date"`
	Closed                bool                            `gorm:"not null;default:false" json:"closed"`
	ClosedDate            *time.Time                      `json:"closed_date"`
	PriceChecks           datatypes.JSONSlice[PriceCheck] `gorm:"type:jsonb" json:"price_checks"`
	Version               int64                           `gorm:"not null;default:0" json:"version"`
	CreatedAt             time.Time                       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time                       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Post model.
func (Post) TableName() string {
	return "posts"
}

// Direction infers whether the call expects the price to rise or fall.
// The target decides when present, otherwise the stop-loss side does. Defaults to up.
func (p *Post) Direction() Direction {
	if p.TargetPrice != nil && *p.TargetPrice != p.InitialPrice {
		if *p.TargetPrice > p.InitialPrice {
			return DirectionUp
		}
		return DirectionDown
	}
	if p.StopLossPrice != nil && *p.StopLossPrice > p.InitialPrice {
		return DirectionDown
	}
	return DirectionUp
}

// Resolved reports whether a threshold has already fired.
func (p *Post) Resolved() bool {
	return p.TargetReached || p.StopLossTriggered
}

// LatestPriceCheck returns the newest history entry, or nil for an empty history.
func (p *Post) LatestPriceCheck() *PriceCheck {
	if len(p.PriceChecks) == 0 {
		return nil
	}
	last := p.PriceChecks[len(p.PriceChecks)-1]
	return &last
}

// HasPriceCheck reports whether the history already holds an entry for date.
func (p *Post) HasPriceCheck(date string) bool {
	for _, pc := range p.PriceChecks {
		if pc.Date == date {
			return true
		}
	}
	return false
}
