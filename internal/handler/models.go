package handler

import (
	"time"

	"github.com/blues/rewardcenter/internal/rewards"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return p
}

// 请求模型，金额均为十进制字符串

// CreatePlanRequest 创建计划
type CreatePlanRequest struct {
	Name                     string `json:"name" binding:"required"`
	NonRefundableDurationSec int64  `json:"nonRefundableDurationSec" binding:"required,min=1,max=9223372036"`
	Value                    string `json:"value"`
}

// AddFounderRequest 添加创始人
type AddFounderRequest struct {
	Founder string `json:"founder" binding:"required"`
	Pledge  string `json:"pledge"`
}

// AddRuleRequest 添加兑换规则
type AddRuleRequest struct {
	Threshold uint64 `json:"threshold" binding:"required,min=1"`
	Reward    string `json:"reward" binding:"required"`
}

// AddNotifierRequest 添加通知者
type AddNotifierRequest struct {
	Notifier string `json:"notifier" binding:"required"`
}

// ValueRequest 携带转账金额的请求
type ValueRequest struct {
	Value string `json:"value"`
}

// SignUpClientRequest 注册客户
type SignUpClientRequest struct {
	ClientId uint64 `json:"clientId" binding:"required,min=1"`
	Address  string `json:"address" binding:"required"`
}

// NotifyPointsRequest 上报积分
type NotifyPointsRequest struct {
	ClientId uint64 `json:"clientId" binding:"required,min=1"`
	Points   uint64 `json:"points" binding:"required,min=1"`
}

// AwakeRequest 唤醒计划
type AwakeRequest struct {
	ResetPoints bool   `json:"resetPoints"`
	Value       string `json:"value" binding:"required"`
}

// 响应模型

// FounderResponse 创始人
type FounderResponse struct {
	Address   string `json:"address"`
	Pledged   string `json:"pledged"`
	Deposited string `json:"deposited"`
	Signed    bool   `json:"signed"`
}

// RuleResponse 兑换规则
type RuleResponse struct {
	Index     int    `json:"index"`
	Threshold uint64 `json:"threshold"`
	Reward    string `json:"reward"`
}

// NotifierResponse 通知者
type NotifierResponse struct {
	Address string `json:"address"`
	AddedBy string `json:"addedBy"`
	Active  bool   `json:"active"`
}

// ClientAccountResponse 计划内客户账户
type ClientAccountResponse struct {
	ClientId uint64 `json:"clientId"`
	Address  string `json:"address"`
	Points   uint64 `json:"points"`
	Active   bool   `json:"active"`
}

// PlanResponse 计划详情
type PlanResponse struct {
	Address       string     `json:"address"`
	Name          string     `json:"name"`
	Creator       string     `json:"creator"`
	Lifecycle     string     `json:"lifecycle"`
	Stage         string     `json:"stage"`
	Balance       string     `json:"balance"`
	Active        bool       `json:"active"`
	TotalRewarded string     `json:"totalRewarded"`
	CreatedAt     time.Time  `json:"createdAt"`
	SignDeadline  *time.Time `json:"signDeadline,omitempty"`
	FounderCount  int        `json:"founderCount"`
	RuleCount     int        `json:"ruleCount"`
	NotifierCount int        `json:"notifierCount"`
	ClientCount   int        `json:"clientCount"`
}

// RolesResponse 角色
type RolesResponse struct {
	IsClient   bool `json:"isClient"`
	IsFounder  bool `json:"isFounder"`
	IsNotifier bool `json:"isNotifier"`
}

// PayoutResponse 单条规则兑付
type PayoutResponse struct {
	Threshold uint64 `json:"threshold"`
	Count     uint64 `json:"count"`
	Amount    string `json:"amount"`
	Points    uint64 `json:"points"`
	Partial   bool   `json:"partial"`
}

// RedemptionResponse 积分上报结果
type RedemptionResponse struct {
	Paid      string           `json:"paid"`
	Consumed  uint64           `json:"consumed"`
	Points    uint64           `json:"points"`
	Balance   string           `json:"balance"`
	Exhausted bool             `json:"exhausted"`
	Payouts   []PayoutResponse `json:"payouts"`
}

// RefundResponse 退款
type RefundResponse struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// EntityResponse 实体档案
type EntityResponse struct {
	Address      string `json:"address"`
	Active       bool   `json:"active"`
	RunningPlans uint64 `json:"runningPlans"`
}

// PlanProfileResponse 计划档案
type PlanProfileResponse struct {
	Address       string `json:"address"`
	Creator       string `json:"creator"`
	Name          string `json:"name"`
	Active        bool   `json:"active"`
	TotalRewarded string `json:"totalRewarded"`
}

// ClientProfileResponse 客户档案
type ClientProfileResponse struct {
	ClientId uint64 `json:"clientId"`
	Address  string `json:"address"`
	Active   bool   `json:"active"`
	Rewards  string `json:"rewards"`
}

func toPlanResponse(s rewards.Snapshot, p rewards.PlanProfile) PlanResponse {
	resp := PlanResponse{
		Address:       s.Address.Hex(),
		Name:          s.Name,
		Creator:       s.Creator.Hex(),
		Lifecycle:     s.Lifecycle.String(),
		Stage:         s.Stage.String(),
		Balance:       s.Balance.String(),
		Active:        p.Active,
		TotalRewarded: p.TotalRewarded.String(),
		CreatedAt:     s.CreatedAt,
		FounderCount:  len(s.Founders),
		RuleCount:     len(s.Rules),
		NotifierCount: len(s.Notifiers),
		ClientCount:   len(s.Clients),
	}
	if !s.SignDeadline.IsZero() {
		deadline := s.SignDeadline
		resp.SignDeadline = &deadline
	}
	return resp
}

func toFounders(in []rewards.Founder) []FounderResponse {
	out := make([]FounderResponse, len(in))
	for i, f := range in {
		out[i] = FounderResponse{
			Address:   f.Address.Hex(),
			Pledged:   f.Pledged.String(),
			Deposited: f.Deposited.String(),
			Signed:    f.Signed,
		}
	}
	return out
}

func toRules(in []rewards.Rule) []RuleResponse {
	out := make([]RuleResponse, len(in))
	for i, r := range in {
		out[i] = RuleResponse{Index: i, Threshold: r.Threshold, Reward: r.Reward.String()}
	}
	return out
}

func toNotifiers(in []rewards.Notifier) []NotifierResponse {
	out := make([]NotifierResponse, len(in))
	for i, n := range in {
		out[i] = NotifierResponse{Address: n.Address.Hex(), AddedBy: n.AddedBy.Hex(), Active: n.Active}
	}
	return out
}

func toClientAccount(a rewards.ClientAccount) ClientAccountResponse {
	return ClientAccountResponse{ClientId: uint64(a.ID), Address: a.Address.Hex(), Points: a.Points, Active: a.Active}
}

func toRedemption(r rewards.Redemption) RedemptionResponse {
	resp := RedemptionResponse{
		Paid:      r.Paid.String(),
		Consumed:  r.Consumed,
		Points:    r.Points,
		Balance:   r.Balance.String(),
		Exhausted: r.Exhausted,
		Payouts:   make([]PayoutResponse, len(r.Payouts)),
	}
	for i, p := range r.Payouts {
		resp.Payouts[i] = PayoutResponse{
			Threshold: p.Threshold,
			Count:     p.Count,
			Amount:    p.Amount.String(),
			Points:    p.Points,
			Partial:   p.Partial,
		}
	}
	return resp
}

func toPlanProfile(p rewards.PlanProfile) PlanProfileResponse {
	return PlanProfileResponse{
		Address:       p.Address.Hex(),
		Creator:       p.Creator.Hex(),
		Name:          p.Name,
		Active:        p.Active,
		TotalRewarded: p.TotalRewarded.String(),
	}
}

func toClientProfile(p rewards.ClientProfile) ClientProfileResponse {
	return ClientProfileResponse{
		ClientId: uint64(p.ID),
		Address:  p.Address.Hex(),
		Active:   p.Active,
		Rewards:  p.Rewards.String(),
	}
}
