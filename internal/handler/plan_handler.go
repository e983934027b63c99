package handler

import (
	"net/http"

	"github.com/blues/rewardcenter/internal/logic"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planLogic *logic.PlanLogic
}

func NewPlanHandler(planLogic *logic.PlanLogic) *PlanHandler {
	return &PlanHandler{planLogic: planLogic}
}

// target 解析路径中的计划地址与请求头中的调用方
func target(c *gin.Context) (plan, caller common.Address, ok bool) {
	plan, err := pathAddress(c, "address")
	if err != nil {
		respondError(c, err)
		return plan, caller, false
	}
	caller, err = callerAddress(c)
	if err != nil {
		respondError(c, err)
		return plan, caller, false
	}
	return plan, caller, true
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// CreatePlan 创建计划
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	caller, err := callerAddress(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req CreatePlanRequest
	if !bind(c, &req) {
		return
	}
	value, err := parseAmount("value", req.Value)
	if err != nil {
		respondError(c, err)
		return
	}

	nonRefundable, err := parseDurationSec("nonRefundableDurationSec", req.NonRefundableDurationSec)
	if err != nil {
		respondError(c, err)
		return
	}

	snap, err := h.planLogic.CreatePlan(caller, nonRefundable, req.Name, value)
	if err != nil {
		respondError(c, err)
		return
	}
	profile, err := h.planLogic.GetPlanProfile(snap.Address)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "计划创建成功", toPlanResponse(snap, profile))
}

// GetPlan 获取计划详情
func (h *PlanHandler) GetPlan(c *gin.Context) {
	addr, err := pathAddress(c, "address")
	if err != nil {
		respondError(c, err)
		return
	}
	snap, err := h.planLogic.GetPlan(addr)
	if err != nil {
		respondError(c, err)
		return
	}
	profile, err := h.planLogic.GetPlanProfile(addr)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", toPlanResponse(snap, profile))
}

// GetFounders 获取创始人列表
func (h *PlanHandler) GetFounders(c *gin.Context) {
	h.withSnapshot(c, func(s rewards.Snapshot) interface{} { return toFounders(s.Founders) })
}

// GetRules 获取兑换规则
func (h *PlanHandler) GetRules(c *gin.Context) {
	h.withSnapshot(c, func(s rewards.Snapshot) interface{} { return toRules(s.Rules) })
}

// GetNotifiers 获取通知者列表
func (h *PlanHandler) GetNotifiers(c *gin.Context) {
	h.withSnapshot(c, func(s rewards.Snapshot) interface{} { return toNotifiers(s.Notifiers) })
}

func (h *PlanHandler) withSnapshot(c *gin.Context, view func(rewards.Snapshot) interface{}) {
	addr, err := pathAddress(c, "address")
	if err != nil {
		respondError(c, err)
		return
	}
	snap, err := h.planLogic.GetPlan(addr)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", view(snap))
}

// GetClient 获取计划内客户账户
func (h *PlanHandler) GetClient(c *gin.Context) {
	addr, err := pathAddress(c, "address")
	if err != nil {
		respondError(c, err)
		return
	}
	id, err := pathUint(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	acc, err := h.planLogic.GetClient(addr, rewards.ClientID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", toClientAccount(acc))
}

// GetRoles 获取地址在计划中的角色
func (h *PlanHandler) GetRoles(c *gin.Context) {
	addr, err := pathAddress(c, "address")
	if err != nil {
		respondError(c, err)
		return
	}
	caller, err := pathAddress(c, "caller")
	if err != nil {
		respondError(c, err)
		return
	}
	roles, err := h.planLogic.GetRoles(addr, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", RolesResponse{
		IsClient:   roles.IsClient,
		IsFounder:  roles.IsFounder,
		IsNotifier: roles.IsNotifier,
	})
}

// AddFounder 添加创始人
func (h *PlanHandler) AddFounder(c *gin.Context) {
	plan, caller, ok := target(c)
	if !ok {
		return
	}
	var req AddFounderRequest
	if !bind(c, &req) {
		return
	}
	founder, err := parseAddress("founder", req.Founder)
	if err != nil {
		respondError(c, err)
		return
	}
	pledge, err := parseAmount("pledge", req.Pledge)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.planLogic.AddFounder(plan, caller, founder, pledge); err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "创始人添加成功", nil)
}

// LeavePlan 创始人退出计划
func (h *PlanHandler) LeavePlan(c *gin.Context) {
	plan, caller, ok := target(c)
	if !ok {
		return
	}
	if err := h.planLogic.LeavePlan(plan, caller); err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "已退出计划", nil)
}

// AddRule 添加兑换规则
func (h *PlanHandler) AddRule(c *gin.Context) {
	plan, caller, ok := target(c)
	if !ok {
		return
	}
	var req AddRuleRequest
	if !bind(c, &req) {
		return
	}
	reward, err := parseAmount("reward", req.Reward)
	if err != nil {
		respondError(c, err)
		return
	}
	index, err := h.planLogic.AddRule(plan, caller, req.Threshold, reward)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "规则添加成功", RuleResponse{
		Index:     index,
		Threshold: req.Threshold,
		Reward:    reward.String(),
	})
}

// RemoveRule 删除兑换规则
func (h *PlanHandler) RemoveRule(c *gin.Context) {
	plan, caller, ok := target(c)
	if !ok {
		return
	}
	index, err := pathUint(c, "index")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.planLogic.RemoveRule(plan, caller, int(index)); err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "规则删除成功", nil)
}

// AddNotifier 授权通知者
func (h *PlanHandler) AddNotifier(c *gin.Context) {
	plan, caller, ok := target(c)
	if !ok {
		return
	}
	var req AddNotifierRequest
	if !bind(c, &req) {
		return
	}
	notifier, err := parseAddress("notifier", req.Notifier)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.planLogic.AddNotifier(plan, caller, notifier); err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "通知者添加成功", nil)
}

// RevokeNotifier 撤销通知者
func (h *PlanHandler) RevokeNotifier(c *gin.Context) {
	plan, caller, ok := target(c)
	if !ok {
		return
	}
	notifier, err := pathAddress(c, "notifier")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.planLogic.RevokeNotifier(plan, caller, notifier); err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "通知者已撤销", nil)
}

// BeginSigning 进入签署阶段
func (h *PlanHandler) BeginSigning(c *gin.Context) {
	plan, caller, ok := target(c)
	if !ok {
		return
	}
	deadline, err := h.planLogic.BeginSigning(plan, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "已进入签署阶段", gin.H{"signDeadline": deadline})
}

// Sign 创始人签署
func (h *PlanHandler) Sign(c *gin.Context) {
	plan, caller, ok := target(c)
	if !ok {
		return
	}
	var req ValueRequest
	if !bind(c, &req) {
		return
	}
	value, err := parseAmount("value", req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	allSigned, err := h.planLogic.Sign(plan, caller, value)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "签署成功", gin.H{"allSigned": allSigned})
}

// Refund 签署超时退款
func (h *PlanHandler) Refund(c *gin.Context) {
	plan, caller, ok := target(c)
	if !ok {
		return
	}
	refunds, err := h.planLogic.Refund(plan, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]RefundResponse, len(refunds))
	for i, r := range refunds {
		out[i] = RefundResponse{Address: r.Address.Hex(), Amount: r.Amount.String()}
	}
	SuccessResponse(c, http.StatusOK, "退款成功", out)
}

// SignUpClient 注册客户
func (h *PlanHandler) SignUpClient(c *gin.Context) {
	plan, caller, ok := target(c)
	if !ok {
		return
	}
	var req SignUpClientRequest
	if !bind(c, &req) {
		return
	}
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.planLogic.SignUpClient(plan, caller, rewards.ClientID(req.ClientId), addr); err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "客户注册成功", nil)
}

// NotifyPoints 上报积分
func (h *PlanHandler) NotifyPoints(c *gin.Context) {
	plan, caller, ok := target(c)
	if !ok {
		return
	}
	var req NotifyPointsRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.planLogic.NotifyPoints(plan, caller, rewards.ClientID(req.ClientId), req.Points)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "积分上报成功", toRedemption(res))
}

// Awake 唤醒休眠计划
func (h *PlanHandler) Awake(c *gin.Context) {
	plan, caller, ok := target(c)
	if !ok {
		return
	}
	var req AwakeRequest
	if !bind(c, &req) {
		return
	}
	value, err := parseAmount("value", req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.planLogic.Awake(plan, caller, req.ResetPoints, value); err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "计划已唤醒", nil)
}
