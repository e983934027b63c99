package model

import (
	"time"
)

// EventModel 计划事件流水
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventId     string    `json:"event_id" gorm:"uniqueIndex;not null"`
	BatchId     string    `json:"batch_id" gorm:"index;not null"` // 同一次操作产生的事件共享批次号
	Seq         int       `json:"seq"`                            // 批次内顺序
	PlanAddress string    `json:"plan_address" gorm:"index;not null"`
	EventType   string    `json:"event_type" gorm:"index;not null"`
	Caller      string    `json:"caller"`
	Address     string    `json:"address"`
	ClientId    uint64    `json:"client_id"`
	Amount      string    `json:"amount" gorm:"type:text"` // 十进制字符串
	Points      uint64    `json:"points"`
	RuleIndex   int       `json:"rule_index"`
	Flag        bool      `json:"flag"`
	Name        string    `json:"name"`
	Stage       string    `json:"stage"`
	OccurredAt  time.Time `json:"occurred_at" gorm:"index"`
}

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}
