package logic

import (
	"math/big"
	"time"

	"github.com/blues/rewardcenter/internal/logger"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/ethereum/go-ethereum/common"
)

// PlanLogic 计划业务逻辑
type PlanLogic struct {
	center *rewards.Center
}

// NewPlanLogic 创建计划业务逻辑
func NewPlanLogic(center *rewards.Center) *PlanLogic {
	return &PlanLogic{center: center}
}

// CreatePlan 创建计划
func (l *PlanLogic) CreatePlan(caller common.Address, nonRefundable time.Duration, name string, pledge *big.Int) (rewards.Snapshot, error) {
	plan, err := l.center.CreatePlan(caller, nonRefundable, name, pledge)
	if err != nil {
		return rewards.Snapshot{}, err
	}
	logger.Info("Created plan %s (%s) by %s", plan.Address().Hex(), name, caller.Hex())
	return plan.Snapshot(), nil
}

// GetPlan 获取计划快照
func (l *PlanLogic) GetPlan(addr common.Address) (rewards.Snapshot, error) {
	plan, err := l.center.Plan(addr)
	if err != nil {
		return rewards.Snapshot{}, err
	}
	return plan.Snapshot(), nil
}

// GetPlanProfile 获取注册中心中的计划档案
func (l *PlanLogic) GetPlanProfile(addr common.Address) (rewards.PlanProfile, error) {
	return l.center.LookupPlan(addr)
}

// GetClient 获取计划内的客户账户
func (l *PlanLogic) GetClient(addr common.Address, id rewards.ClientID) (rewards.ClientAccount, error) {
	plan, err := l.center.Plan(addr)
	if err != nil {
		return rewards.ClientAccount{}, err
	}
	return plan.Client(id)
}

// GetRoles 获取调用方在计划中的角色
func (l *PlanLogic) GetRoles(addr, caller common.Address) (rewards.Roles, error) {
	return l.center.RolesInPlan(addr, caller)
}

// AddFounder 添加创始人
func (l *PlanLogic) AddFounder(addr, caller, founder common.Address, pledge *big.Int) error {
	return l.withPlan(addr, func(p *rewards.Plan) error {
		return p.AddFounder(caller, founder, pledge)
	})
}

// LeavePlan 创始人退出
func (l *PlanLogic) LeavePlan(addr, caller common.Address) error {
	return l.withPlan(addr, func(p *rewards.Plan) error {
		return p.LeavePlan(caller)
	})
}

// AddRule 添加兑换规则，返回插入下标
func (l *PlanLogic) AddRule(addr, caller common.Address, threshold uint64, reward *big.Int) (int, error) {
	var index int
	err := l.withPlan(addr, func(p *rewards.Plan) error {
		var err error
		index, err = p.AddRule(caller, threshold, reward)
		return err
	})
	return index, err
}

// RemoveRule 删除兑换规则
func (l *PlanLogic) RemoveRule(addr, caller common.Address, index int) error {
	return l.withPlan(addr, func(p *rewards.Plan) error {
		return p.RemoveRule(caller, index)
	})
}

// AddNotifier 授权通知者
func (l *PlanLogic) AddNotifier(addr, caller, notifier common.Address) error {
	return l.withPlan(addr, func(p *rewards.Plan) error {
		return p.AddNotifier(caller, notifier)
	})
}

// RevokeNotifier 撤销通知者
func (l *PlanLogic) RevokeNotifier(addr, caller, notifier common.Address) error {
	return l.withPlan(addr, func(p *rewards.Plan) error {
		return p.RevokeNotifier(caller, notifier)
	})
}

// BeginSigning 进入签署阶段
func (l *PlanLogic) BeginSigning(addr, caller common.Address) (time.Time, error) {
	var deadline time.Time
	err := l.withPlan(addr, func(p *rewards.Plan) error {
		if err := p.BeginSigningStage(caller); err != nil {
			return err
		}
		deadline = p.SignDeadline()
		return nil
	})
	return deadline, err
}

// Sign 创始人签署
func (l *PlanLogic) Sign(addr, caller common.Address, value *big.Int) (bool, error) {
	var allSigned bool
	err := l.withPlan(addr, func(p *rewards.Plan) error {
		var err error
		allSigned, err = p.Sign(caller, value)
		return err
	})
	if err == nil && allSigned {
		logger.Info("Plan %s activated, all founders signed", addr.Hex())
	}
	return allSigned, err
}

// Refund 签署超时退款
func (l *PlanLogic) Refund(addr, caller common.Address) ([]rewards.Refund, error) {
	var refunds []rewards.Refund
	err := l.withPlan(addr, func(p *rewards.Plan) error {
		var err error
		refunds, err = p.SignPeriodExpiredRefund(caller)
		return err
	})
	if err == nil {
		logger.Info("Plan %s signing expired, refunded %d founders", addr.Hex(), len(refunds))
	}
	return refunds, err
}

// SignUpClient 注册客户
func (l *PlanLogic) SignUpClient(addr, caller common.Address, id rewards.ClientID, client common.Address) error {
	return l.withPlan(addr, func(p *rewards.Plan) error {
		return p.SignUpClient(caller, id, client)
	})
}

// NotifyPoints 上报积分
func (l *PlanLogic) NotifyPoints(addr, caller common.Address, id rewards.ClientID, points uint64) (rewards.Redemption, error) {
	var res rewards.Redemption
	err := l.withPlan(addr, func(p *rewards.Plan) error {
		var err error
		res, err = p.NotifyPointsScored(caller, id, points)
		return err
	})
	if err == nil && res.Exhausted {
		logger.Info("Plan %s balance exhausted after paying client %d", addr.Hex(), id)
	}
	return res, err
}

// Awake 唤醒休眠计划
func (l *PlanLogic) Awake(addr, caller common.Address, resetPoints bool, value *big.Int) error {
	return l.withPlan(addr, func(p *rewards.Plan) error {
		return p.Awake(caller, resetPoints, value)
	})
}

func (l *PlanLogic) withPlan(addr common.Address, fn func(p *rewards.Plan) error) error {
	plan, err := l.center.Plan(addr)
	if err != nil {
		return err
	}
	return fn(plan)
}
