package logic

import (
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/ethereum/go-ethereum/common"
)

// RegistryLogic 注册中心查询
type RegistryLogic struct {
	center *rewards.Center
}

// NewRegistryLogic 创建注册中心查询逻辑
func NewRegistryLogic(center *rewards.Center) *RegistryLogic {
	return &RegistryLogic{center: center}
}

// GetEntity 获取实体档案
func (l *RegistryLogic) GetEntity(addr common.Address) (rewards.EntityProfile, error) {
	return l.center.LookupEntity(addr)
}

// GetRelatedPlans 获取地址参与的计划档案，按关联顺序
func (l *RegistryLogic) GetRelatedPlans(addr common.Address) ([]rewards.PlanProfile, error) {
	addrs := l.center.RelatedPlans(addr)
	out := make([]rewards.PlanProfile, 0, len(addrs))
	for _, a := range addrs {
		p, err := l.center.LookupPlan(a)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// GetClient 获取客户档案
func (l *RegistryLogic) GetClient(id rewards.ClientID) (rewards.ClientProfile, error) {
	return l.center.LookupClient(id)
}

// GetClientByAddress 按地址获取客户档案
func (l *RegistryLogic) GetClientByAddress(addr common.Address) (rewards.ClientProfile, error) {
	id, err := l.center.ClientIDByAddress(addr)
	if err != nil {
		return rewards.ClientProfile{}, err
	}
	return l.center.LookupClient(id)
}
