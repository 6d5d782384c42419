package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/banuch/logbook/internal/app/middleware"
	"github.com/banuch/logbook/internal/domain/services"
	"github.com/banuch/logbook/internal/domain/services/container"
	"github.com/banuch/logbook/internal/error/code"
	"github.com/banuch/logbook/internal/error/response"
)

// InterfaceReportController 定义报表控制器接口
type InterfaceReportController interface {
	GetDailySummary()
	GetMonthlySummary()
}

// ReportController 处理日报与月报请求
type ReportController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewReportController 创建一个新的报表控制器
func NewReportController(ctx *gin.Context, container *container.ServiceContainer) *ReportController {
	return &ReportController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleReportFunc 返回一个处理报表请求的Gin处理函数
func HandleReportFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewReportController(ctx, container)

		switch method {
		case "getDailySummary":
			controller.GetDailySummary()
		case "getMonthlySummary":
			controller.GetMonthlySummary()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetDailySummary 获取日汇总
// @Summary      获取日汇总
// @Description  某日期各站的严重度计数与事件类别分布，默认当天
// @Tags         Report
// @Produce      json
// @Param        date query string false "日期，默认当天" example:"2026-08-28"
// @Param        substation_id query int false "变电站ID，仅管理员有效" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /reports/daily [get]
// @Security     BearerAuth
func (c *ReportController) GetDailySummary() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	date := c.Ctx.DefaultQuery("date", time.Now().Format("2006-01-02"))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		response.ParamError(c.Ctx, "无效的date参数，格式应为YYYY-MM-DD")
		return
	}

	var substationID *uint
	if raw := c.Ctx.Query("substation_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.ParamError(c.Ctx, "无效的substation_id参数")
			return
		}
		sid := uint(id)
		substationID = &sid
	}

	reportService := c.Container.GetService("report").(services.InterfaceReportService)
	report, err := reportService.GetDailySummary(p, date, substationID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询日汇总失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, report)
}

// GetMonthlySummary 获取月汇总
// @Summary      获取月汇总
// @Description  某月各站的条目计数、严重度分布和活跃天数，默认当月
// @Tags         Report
// @Produce      json
// @Param        year query int false "年份，默认当年" example:"2026"
// @Param        month query int false "月份，默认当月" example:"8"
// @Param        substation_id query int false "变电站ID，仅管理员有效" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /reports/monthly [get]
// @Security     BearerAuth
func (c *ReportController) GetMonthlySummary() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	now := time.Now()
	year, err := strconv.Atoi(c.Ctx.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		response.ParamError(c.Ctx, "无效的year参数")
		return
	}
	month, err := strconv.Atoi(c.Ctx.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		response.ParamError(c.Ctx, "无效的month参数")
		return
	}

	var substationID *uint
	if raw := c.Ctx.Query("substation_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.ParamError(c.Ctx, "无效的substation_id参数")
			return
		}
		sid := uint(id)
		substationID = &sid
	}

	reportService := c.Container.GetService("report").(services.InterfaceReportService)
	rows, err := reportService.GetMonthlySummary(p, year, month, substationID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询月汇总失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"year":       year,
		"month":      month,
		"substations": rows,
	})
}
