package handler

import (
	"net/http"
	"strconv"

	"carbon-chat-go/internal/middleware"
	"carbon-chat-go/internal/service"

	"github.com/gin-gonic/gin"
)

// FootprintHandler 暴露计算器与会话足迹记录。
type FootprintHandler struct {
	footprintService service.FootprintService
}

// NewFootprintHandler 创建一个新的 FootprintHandler 实例。
func NewFootprintHandler(footprintService service.FootprintService) *FootprintHandler {
	return &FootprintHandler{footprintService: footprintService}
}

// Activities 列出全部活动及其因子。
func (h *FootprintHandler) Activities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": h.footprintService.Activities()})
}

// Estimate 计算单项活动的排放量，参数为 activity 与 quantity。
func (h *FootprintHandler) Estimate(c *gin.Context) {
	quantity, err := strconv.ParseFloat(c.Query("quantity"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "quantity must be a number", "data": nil})
		return
	}
	estimate, err := h.footprintService.Estimate(c.Query("activity"), quantity)
	if err != nil {
		respondError(c, err, "Failed to estimate footprint")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": estimate})
}

// Records 返回当前会话的足迹记录汇总。
func (h *FootprintHandler) Records(c *gin.Context) {
	summary, err := h.footprintService.Records(c.Request.Context(), c.GetString(middleware.SessionIDKey))
	if err != nil {
		respondError(c, err, "Failed to retrieve footprint records")
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": summary})
}
