package model

import (
	"time"
)

// RefundRecordModel 签署超时退款记录
type RefundRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EventId        string       `json:"event_id" gorm:"uniqueIndex;not null"`
	PlanAddress    string       `json:"plan_address" gorm:"index;not null"`
	FounderAddress string       `json:"founder_address" gorm:"index;not null"`
	Amount         string       `json:"amount" gorm:"type:text;not null"`
	RequestedBy    string       `json:"requested_by"`
	Status         RefundStatus `json:"status" gorm:"default:'pending'"`
	RefundedAt     time.Time    `json:"refunded_at"`
}

// RefundStatus 退款状态，pending 表示等待钱包层完成转账
type RefundStatus string

const (
	RefundStatusPending RefundStatus = "pending" // 待处理
	RefundStatusSuccess RefundStatus = "success" // 成功
	RefundStatusFailed  RefundStatus = "failed"  // 失败
)

// TableName 自定义表名
func (RefundRecordModel) TableName() string {
	return "refund_record"
}
