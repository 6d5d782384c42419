package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/error/code"
	"github.com/banuch/logbook/internal/error/response"
)

// HealthCheckController 健康检查控制器
type HealthCheckController struct {
	DB *gorm.DB
}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController(db *gorm.DB) *HealthCheckController {
	return &HealthCheckController{DB: db}
}

// Ping 健康检查端点，同时探测数据库连通性
func (h *HealthCheckController) Ping(c *gin.Context) {
	dbStatus := "up"
	if sqlDB, err := h.DB.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}

	if dbStatus == "down" {
		response.FailWithMessage(c, code.ErrDatabase, "数据库不可用", gin.H{
			"status":   "degraded",
			"database": dbStatus,
		})
		return
	}

	response.Success(c, gin.H{
		"status":   "healthy",
		"database": dbStatus,
	})
}
