package handler

import (
	"net/http"

	"github.com/blues/rewardcenter/internal/logic"
	"github.com/blues/rewardcenter/internal/rewards"
	"github.com/gin-gonic/gin"
)

// RegistryHandler 中心登记簿查询
type RegistryHandler struct {
	registryLogic *logic.RegistryLogic
}

func NewRegistryHandler(registryLogic *logic.RegistryLogic) *RegistryHandler {
	return &RegistryHandler{registryLogic: registryLogic}
}

// GetEntity 获取实体档案
func (h *RegistryHandler) GetEntity(c *gin.Context) {
	addr, err := pathAddress(c, "address")
	if err != nil {
		respondError(c, err)
		return
	}
	entity, err := h.registryLogic.GetEntity(addr)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", EntityResponse{
		Address:      entity.Address.Hex(),
		Active:       entity.Active,
		RunningPlans: entity.RunningPlans,
	})
}

// GetRelatedPlans 获取地址关联的计划
func (h *RegistryHandler) GetRelatedPlans(c *gin.Context) {
	addr, err := pathAddress(c, "address")
	if err != nil {
		respondError(c, err)
		return
	}
	plans, err := h.registryLogic.GetRelatedPlans(addr)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]PlanProfileResponse, len(plans))
	for i, p := range plans {
		out[i] = toPlanProfile(p)
	}
	SuccessResponse(c, http.StatusOK, "ok", out)
}

// GetClient 按客户编号获取客户档案
func (h *RegistryHandler) GetClient(c *gin.Context) {
	id, err := pathUint(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	client, err := h.registryLogic.GetClient(rewards.ClientID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", toClientProfile(client))
}

// GetClientByAddress 按地址获取客户档案
func (h *RegistryHandler) GetClientByAddress(c *gin.Context) {
	addr, err := pathAddress(c, "address")
	if err != nil {
		respondError(c, err)
		return
	}
	client, err := h.registryLogic.GetClientByAddress(addr)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", toClientProfile(client))
}
