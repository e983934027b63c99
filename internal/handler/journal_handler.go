package handler

import (
	"net/http"

	"github.com/blues/rewardcenter/internal/logic"
	"github.com/gin-gonic/gin"
)

// JournalHandler 事件流水查询
type JournalHandler struct {
	eventLogic *logic.EventLogic
}

func NewJournalHandler(eventLogic *logic.EventLogic) *JournalHandler {
	return &JournalHandler{eventLogic: eventLogic}
}

// GetPlanStats 获取计划统计
func (h *JournalHandler) GetPlanStats(c *gin.Context) {
	addr, err := pathAddress(c, "address")
	if err != nil {
		respondError(c, err)
		return
	}
	stats, err := h.eventLogic.GetPlanStats(addr)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", stats)
}

// GetPlanEvents 分页获取计划事件，可按 event_type 过滤
func (h *JournalHandler) GetPlanEvents(c *gin.Context) {
	addr, err := pathAddress(c, "address")
	if err != nil {
		respondError(c, err)
		return
	}
	page, pageSize := pageParams(c)
	events, total, err := h.eventLogic.GetPlanEvents(addr, c.Query("event_type"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"list":       events,
		"pagination": newPagination(page, pageSize, total),
	})
}

// GetPlanPayouts 分页获取奖励发放记录
func (h *JournalHandler) GetPlanPayouts(c *gin.Context) {
	addr, err := pathAddress(c, "address")
	if err != nil {
		respondError(c, err)
		return
	}
	page, pageSize := pageParams(c)
	payouts, total, err := h.eventLogic.GetPlanPayouts(addr, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"list":       payouts,
		"pagination": newPagination(page, pageSize, total),
	})
}

// GetPlanRefunds 获取退款记录
func (h *JournalHandler) GetPlanRefunds(c *gin.Context) {
	addr, err := pathAddress(c, "address")
	if err != nil {
		respondError(c, err)
		return
	}
	refunds, err := h.eventLogic.GetPlanRefunds(addr)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", refunds)
}
