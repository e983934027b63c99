package event

import (
	"github.com/blues/rewardcenter/internal/logger"
	"github.com/blues/rewardcenter/internal/model"
	"github.com/blues/rewardcenter/internal/rewards"
	"gorm.io/gorm"
)

// RefundProcessor 签署超时退款处理器
type RefundProcessor struct{}

// NewRefundProcessor 创建退款事件处理器
func NewRefundProcessor() *RefundProcessor {
	return &RefundProcessor{}
}

// GetEventTypes 处理的事件类型
func (p *RefundProcessor) GetEventTypes() []rewards.EventKind {
	return []rewards.EventKind{rewards.EventFounderRefunded}
}

// Process 写入待转账的退款记录
func (p *RefundProcessor) Process(tx *gorm.DB, record *model.EventModel, e rewards.Event) error {
	refund := model.RefundRecordModel{
		EventId:        record.EventId,
		PlanAddress:    record.PlanAddress,
		FounderAddress: record.Address,
		Amount:         record.Amount,
		RequestedBy:    record.Caller,
		Status:         model.RefundStatusPending,
		RefundedAt:     e.Time,
	}
	if err := tx.Create(&refund).Error; err != nil {
		logger.Error("Failed to create refund record: %v", err)
		return err
	}

	logger.Info("Processed refund: %s wei to %s for plan %s",
		refund.Amount, refund.FounderAddress, refund.PlanAddress)
	return nil
}
