package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/domain/services"
	"github.com/banuch/logbook/internal/domain/services/container"
	"github.com/banuch/logbook/internal/error/code"
	"github.com/banuch/logbook/internal/error/response"
)

// InterfaceSubstationController 定义变电站控制器接口
type InterfaceSubstationController interface {
	GetSubstations()
	GetSubstation()
	CreateSubstation()
	UpdateSubstation()
	ToggleSubstationStatus()
}

// SubstationController 处理变电站相关的请求
type SubstationController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewSubstationController 创建一个新的变电站控制器
func NewSubstationController(ctx *gin.Context, container *container.ServiceContainer) *SubstationController {
	return &SubstationController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleSubstationFunc 返回一个处理变电站请求的Gin处理函数
func HandleSubstationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewSubstationController(ctx, container)

		switch method {
		case "getSubstations":
			controller.GetSubstations()
		case "getSubstation":
			controller.GetSubstation()
		case "createSubstation":
			controller.CreateSubstation()
		case "updateSubstation":
			controller.UpdateSubstation()
		case "toggleSubstationStatus":
			controller.ToggleSubstationStatus()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetSubstations 获取变电站列表
// @Summary      获取变电站列表
// @Description  获取全部变电站，按名称排序
// @Tags         Substation
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /substations [get]
// @Security     BearerAuth
func (c *SubstationController) GetSubstations() {
	substationService := c.Container.GetService("substation").(services.InterfaceSubstationService)

	substations, err := substationService.GetAllSubstations()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询变电站列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, substations)
}

// GetSubstation 获取单个变电站详情
// @Summary      获取变电站详情
// @Tags         Substation
// @Produce      json
// @Param        id path int true "变电站ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /substations/{id} [get]
// @Security     BearerAuth
func (c *SubstationController) GetSubstation() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	substationService := c.Container.GetService("substation").(services.InterfaceSubstationService)
	substation, err := substationService.GetSubstationByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			response.Fail(c.Ctx, code.ErrSubstationNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询变电站失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, substation)
}

// CreateSubstationRequest 表示创建变电站的请求体
type CreateSubstationRequest struct {
	SubstationCode    string `json:"substation_code" binding:"required" example:"SS-KPHLI-01"`
	SubstationName    string `json:"substation_name" binding:"required" example:"Kapurthala 132kV"`
	Location          string `json:"location" example:"Kapurthala"`
	VoltageLevel      string `json:"voltage_level" example:"132/11 kV"`
	InstalledCapacity string `json:"installed_capacity" example:"2x20 MVA"`
	ContactInfo       string `json:"contact_info" example:"0181-2780000"`
	Password          string `json:"password" binding:"required,min=6" example:"Station@123"`
}

// CreateSubstation 创建新变电站
// @Summary      创建变电站
// @Tags         Substation
// @Accept       json
// @Produce      json
// @Param        request body CreateSubstationRequest true "变电站信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /substations [post]
// @Security     BearerAuth
func (c *SubstationController) CreateSubstation() {
	var req CreateSubstationRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	substation := &models.Substation{
		SubstationCode:    req.SubstationCode,
		SubstationName:    req.SubstationName,
		Location:          req.Location,
		VoltageLevel:      req.VoltageLevel,
		InstalledCapacity: req.InstalledCapacity,
		ContactInfo:       req.ContactInfo,
	}

	substationService := c.Container.GetService("substation").(services.InterfaceSubstationService)
	if err := substationService.CreateSubstation(substation, req.Password); err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			response.Fail(c.Ctx, code.ErrSubstationAlreadyExist, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建变电站失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功创建变电站", substation)
}

// UpdateSubstationRequest 表示更新变电站的请求体
type UpdateSubstationRequest struct {
	SubstationName    string `json:"substation_name" example:"Kapurthala 132kV GSS"`
	Location          string `json:"location" example:"Kapurthala"`
	VoltageLevel      string `json:"voltage_level" example:"132/11 kV"`
	InstalledCapacity string `json:"installed_capacity" example:"3x20 MVA"`
	ContactInfo       string `json:"contact_info" example:"0181-2780001"`
	Password          string `json:"password" example:"NewStation@456"` // 为空表示不修改密码
}

// UpdateSubstation 更新变电站信息
// @Summary      更新变电站
// @Tags         Substation
// @Accept       json
// @Produce      json
// @Param        id path int true "变电站ID" example:"1"
// @Param        request body UpdateSubstationRequest true "更新的变电站信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /substations/{id} [put]
// @Security     BearerAuth
func (c *SubstationController) UpdateSubstation() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateSubstationRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.SubstationName != "" {
		updates["substation_name"] = req.SubstationName
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.VoltageLevel != "" {
		updates["voltage_level"] = req.VoltageLevel
	}
	if req.InstalledCapacity != "" {
		updates["installed_capacity"] = req.InstalledCapacity
	}
	if req.ContactInfo != "" {
		updates["contact_info"] = req.ContactInfo
	}

	substationService := c.Container.GetService("substation").(services.InterfaceSubstationService)
	substation, err := substationService.UpdateSubstation(uint(id), updates, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			response.Fail(c.Ctx, code.ErrSubstationNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新变电站失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功更新变电站", substation)
}

// ToggleSubstationStatus 切换变电站启用状态
// @Summary      启用/停用变电站
// @Description  停用后该站账户无法登录，历史条目不受影响
// @Tags         Substation
// @Produce      json
// @Param        id path int true "变电站ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /substations/{id}/toggle-status [patch]
// @Security     BearerAuth
func (c *SubstationController) ToggleSubstationStatus() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	substationService := c.Container.GetService("substation").(services.InterfaceSubstationService)
	if err := substationService.ToggleSubstationStatus(uint(id)); err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			response.Fail(c.Ctx, code.ErrSubstationNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "切换变电站状态失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功切换变电站状态", nil)
}
