package event

import (
	"github.com/blues/rewardcenter/internal/model"
	"github.com/blues/rewardcenter/internal/rewards"
	"gorm.io/gorm"
)

// PayoutProcessor 奖励发放处理器
type PayoutProcessor struct{}

// NewPayoutProcessor 创建奖励发放处理器
func NewPayoutProcessor() *PayoutProcessor {
	return &PayoutProcessor{}
}

// GetEventTypes 处理的事件类型
func (p *PayoutProcessor) GetEventTypes() []rewards.EventKind {
	return []rewards.EventKind{rewards.EventRewardPaid}
}

// Process 写入发放记录
func (p *PayoutProcessor) Process(tx *gorm.DB, record *model.EventModel, e rewards.Event) error {
	return tx.Create(&model.PayoutRecordModel{
		EventId:       record.EventId,
		PlanAddress:   record.PlanAddress,
		ClientId:      record.ClientId,
		ClientAddress: record.Address,
		Notifier:      record.Caller,
		Amount:        record.Amount,
		PaidAt:        e.Time,
	}).Error
}
