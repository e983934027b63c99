package model

import (
	"time"
)

// PayoutRecordModel 奖励发放记录
type PayoutRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventId       string    `json:"event_id" gorm:"uniqueIndex;not null"`
	PlanAddress   string    `json:"plan_address" gorm:"index;not null"`
	ClientId      uint64    `json:"client_id" gorm:"index;not null"`
	ClientAddress string    `json:"client_address"`
	Notifier      string    `json:"notifier"`
	Amount        string    `json:"amount" gorm:"type:text;not null"`
	PaidAt        time.Time `json:"paid_at"`
}

// TableName 自定义表名
func (PayoutRecordModel) TableName() string {
	return "payout_record"
}
