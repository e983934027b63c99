package logic

import (
	"fmt"

	"github.com/blues/rewardcenter/internal/model"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// EventLogic 事件流水查询
type EventLogic struct {
	db     *gorm.DB
	center *rewards.Center
}

// NewEventLogic 创建事件业务逻辑
func NewEventLogic(db *gorm.DB, center *rewards.Center) *EventLogic {
	return &EventLogic{db: db, center: center}
}

// PlanStats 计划统计
type PlanStats struct {
	PlanAddress     string `json:"plan_address"`
	Stage           string `json:"stage"`
	Balance         string `json:"balance"`
	TotalRewarded   string `json:"total_rewarded"`
	EventCount      int64  `json:"event_count"`
	PayoutCount     int64  `json:"payout_count"`
	RewardedClients int64  `json:"rewarded_clients"`
	RefundCount     int64  `json:"refund_count"`
	PointsScored    uint64 `json:"points_scored"`
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// GetPlanEvents 分页获取计划事件
func (e *EventLogic) GetPlanEvents(plan common.Address, eventType string, page, pageSize int) ([]model.EventModel, int64, error) {
	var events []model.EventModel
	var total int64

	query := e.db.Model(&model.EventModel{}).Where("plan_address = ?", plan.Hex())
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事件总数失败: %w", err)
	}

	page, pageSize = normalizePage(page, pageSize)
	if err := query.Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("获取事件列表失败: %w", err)
	}

	return events, total, nil
}

// GetPlanPayouts 分页获取计划奖励发放记录
func (e *EventLogic) GetPlanPayouts(plan common.Address, page, pageSize int) ([]model.PayoutRecordModel, int64, error) {
	var payouts []model.PayoutRecordModel
	var total int64

	query := e.db.Model(&model.PayoutRecordModel{}).Where("plan_address = ?", plan.Hex())
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取发放记录总数失败: %w", err)
	}

	page, pageSize = normalizePage(page, pageSize)
	if err := query.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&payouts).Error; err != nil {
		return nil, 0, fmt.Errorf("获取发放记录失败: %w", err)
	}

	return payouts, total, nil
}

// GetPlanRefunds 获取计划退款记录
func (e *EventLogic) GetPlanRefunds(plan common.Address) ([]model.RefundRecordModel, error) {
	var refunds []model.RefundRecordModel
	if err := e.db.Where("plan_address = ?", plan.Hex()).
		Order("id ASC").
		Find(&refunds).Error; err != nil {
		return nil, fmt.Errorf("获取退款记录失败: %w", err)
	}
	return refunds, nil
}

// GetPlanStats 汇总计划状态与流水统计
func (e *EventLogic) GetPlanStats(plan common.Address) (*PlanStats, error) {
	p, err := e.center.Plan(plan)
	if err != nil {
		return nil, err
	}
	profile, err := e.center.LookupPlan(plan)
	if err != nil {
		return nil, err
	}

	stats := &PlanStats{
		PlanAddress:   plan.Hex(),
		Stage:         p.Stage().String(),
		Balance:       p.Balance().String(),
		TotalRewarded: profile.TotalRewarded.String(),
	}
	addr := plan.Hex()

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.EventModel{}).Where("plan_address = ?", addr).Count(&stats.EventCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.PayoutRecordModel{}).Where("plan_address = ?", addr).Count(&stats.PayoutCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.PayoutRecordModel{}).Where("plan_address = ?", addr).
			Distinct("client_id").Count(&stats.RewardedClients).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.RefundRecordModel{}).Where("plan_address = ?", addr).Count(&stats.RefundCount).Error; err != nil {
			return err
		}
		return tx.Model(&model.EventModel{}).
			Where("plan_address = ? AND event_type = ?", addr, string(rewards.EventPointsScored)).
			Select("COALESCE(SUM(points), 0)").
			Scan(&stats.PointsScored).Error
	})
	if err != nil {
		return nil, fmt.Errorf("获取计划统计信息失败: %w", err)
	}

	return stats, nil
}
