package model

import (
	"time"
)

// PlanModel 计划状态快照
type PlanModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Address        string     `json:"address" gorm:"uniqueIndex;not null"`
	CreatorAddress string     `json:"creator_address" gorm:"index;not null"`
	Name           string     `json:"name"`
	Lifecycle      string     `json:"lifecycle"`
	Stage          string     `json:"stage"`
	Active         bool       `json:"active"`
	Balance        string     `json:"balance" gorm:"type:text"`
	TotalRewarded  string     `json:"total_rewarded" gorm:"type:text"`
	FounderCount   int        `json:"founder_count"`
	RuleCount      int        `json:"rule_count"`
	NotifierCount  int        `json:"notifier_count"`
	ClientCount    int        `json:"client_count"`
	SignDeadline   *time.Time `json:"sign_deadline"`
	SnapshotAt     time.Time  `json:"snapshot_at"`
}

// TableName 自定义表名
func (PlanModel) TableName() string {
	return "plan"
}

// EntityModel 实体档案快照
type EntityModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Address      string    `json:"address" gorm:"uniqueIndex;not null"`
	Active       bool      `json:"active"`
	RunningPlans uint64    `json:"running_plans"`
	SnapshotAt   time.Time `json:"snapshot_at"`
}

// TableName 自定义表名
func (EntityModel) TableName() string {
	return "entity"
}

// ClientModel 客户档案快照
type ClientModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientId   uint64    `json:"client_id" gorm:"uniqueIndex;not null"`
	Address    string    `json:"address" gorm:"index;not null"`
	Active     bool      `json:"active"`
	Rewards    string    `json:"rewards" gorm:"type:text"`
	SnapshotAt time.Time `json:"snapshot_at"`
}

// TableName 自定义表名
func (ClientModel) TableName() string {
	return "client"
}

// All 需要自动迁移的模型
func All() []interface{} {
	return []interface{}{
		&EventModel{},
		&PayoutRecordModel{},
		&RefundRecordModel{},
		&PlanModel{},
		&EntityModel{},
		&ClientModel{},
	}
}
