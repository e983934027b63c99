package logic

import (
	"fmt"
	"time"

	"github.com/blues/rewardcenter/internal/model"
	"github.com/blues/rewardcenter/internal/rewards"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotLogic 档案快照持久化
type SnapshotLogic struct {
	db *gorm.DB
}

// NewSnapshotLogic 创建快照逻辑
func NewSnapshotLogic(db *gorm.DB) *SnapshotLogic {
	return &SnapshotLogic{db: db}
}

func upsert(db *gorm.DB, key string, columns []string, value interface{}) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: key}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(value).Error
}

// SavePlan 写入计划快照
func (s *SnapshotLogic) SavePlan(snap rewards.Snapshot, profile rewards.PlanProfile, at time.Time) error {
	row := model.PlanModel{
		Address:        snap.Address.Hex(),
		CreatorAddress: snap.Creator.Hex(),
		Name:           snap.Name,
		Lifecycle:      snap.Lifecycle.String(),
		Stage:          snap.Stage.String(),
		Active:         profile.Active,
		Balance:        snap.Balance.String(),
		TotalRewarded:  profile.TotalRewarded.String(),
		FounderCount:   len(snap.Founders),
		RuleCount:      len(snap.Rules),
		NotifierCount:  len(snap.Notifiers),
		ClientCount:    len(snap.Clients),
		SnapshotAt:     at,
	}
	if !snap.SignDeadline.IsZero() {
		deadline := snap.SignDeadline
		row.SignDeadline = &deadline
	}
	err := upsert(s.db, "address", []string{
		"name", "lifecycle", "stage", "active", "balance", "total_rewarded",
		"founder_count", "rule_count", "notifier_count", "client_count",
		"sign_deadline", "snapshot_at", "updated_at",
	}, &row)
	if err != nil {
		return fmt.Errorf("保存计划快照失败: %w", err)
	}
	return nil
}

// SaveEntity 写入实体快照
func (s *SnapshotLogic) SaveEntity(e rewards.EntityProfile, at time.Time) error {
	row := model.EntityModel{
		Address:      e.Address.Hex(),
		Active:       e.Active,
		RunningPlans: e.RunningPlans,
		SnapshotAt:   at,
	}
	if err := upsert(s.db, "address", []string{"active", "running_plans", "snapshot_at", "updated_at"}, &row); err != nil {
		return fmt.Errorf("保存实体快照失败: %w", err)
	}
	return nil
}

// SaveClient 写入客户快照
func (s *SnapshotLogic) SaveClient(c rewards.ClientProfile, at time.Time) error {
	row := model.ClientModel{
		ClientId:   uint64(c.ID),
		Address:    c.Address.Hex(),
		Active:     c.Active,
		Rewards:    c.Rewards.String(),
		SnapshotAt: at,
	}
	if err := upsert(s.db, "client_id", []string{"address", "active", "rewards", "snapshot_at", "updated_at"}, &row); err != nil {
		return fmt.Errorf("保存客户快照失败: %w", err)
	}
	return nil
}

// GetPlanSnapshot 读取计划快照
func (s *SnapshotLogic) GetPlanSnapshot(address string) (*model.PlanModel, error) {
	var row model.PlanModel
	if err := s.db.Where("address = ?", address).First(&row).Error; err != nil {
		return nil, fmt.Errorf("获取计划快照失败: %w", err)
	}
	return &row, nil
}
