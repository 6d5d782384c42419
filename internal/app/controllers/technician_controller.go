package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/banuch/logbook/internal/app/middleware"
	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/domain/services"
	"github.com/banuch/logbook/internal/domain/services/container"
	"github.com/banuch/logbook/internal/error/code"
	"github.com/banuch/logbook/internal/error/response"
)

// InterfaceTechnicianController 定义技术员控制器接口
type InterfaceTechnicianController interface {
	GetTechnicians()
	CreateTechnician()
	UpdateTechnician()
	DeleteTechnician()
}

// TechnicianController 处理技术员花名册相关的请求
type TechnicianController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewTechnicianController 创建一个新的技术员控制器
func NewTechnicianController(ctx *gin.Context, container *container.ServiceContainer) *TechnicianController {
	return &TechnicianController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleTechnicianFunc 返回一个处理技术员请求的Gin处理函数
func HandleTechnicianFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewTechnicianController(ctx, container)

		switch method {
		case "getTechnicians":
			controller.GetTechnicians()
		case "createTechnician":
			controller.CreateTechnician()
		case "updateTechnician":
			controller.UpdateTechnician()
		case "deleteTechnician":
			controller.DeleteTechnician()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// resolveSubstationID 确定操作的目标变电站
// 受限主体固定为本站；管理员从请求参数中取
func (c *TechnicianController) resolveSubstationID(requested *uint) (uint, bool) {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return 0, false
	}
	if p.Scoped() {
		return p.SubstationID, true
	}
	if requested == nil {
		response.Fail(c.Ctx, code.ErrSubstationRequired, nil)
		return 0, false
	}
	return *requested, true
}

// GetTechnicians 获取变电站的技术员列表
// @Summary      获取技术员列表
// @Description  获取某变电站的在职技术员，变电站与工程师只能查看本站
// @Tags         Technician
// @Produce      json
// @Param        substation_id path int true "变电站ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /technicians/{substation_id} [get]
// @Security     BearerAuth
func (c *TechnicianController) GetTechnicians() {
	var requested *uint
	if raw := c.Ctx.Param("substation_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.ParamError(c.Ctx, "无效的substation_id参数")
			return
		}
		sid := uint(id)
		requested = &sid
	}

	substationID, ok := c.resolveSubstationID(requested)
	if !ok {
		return
	}

	technicianService := c.Container.GetService("technician").(services.InterfaceTechnicianService)
	technicians, err := technicianService.GetTechniciansBySubstation(substationID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询技术员列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, technicians)
}

// CreateTechnicianRequest 表示创建技术员的请求体
type CreateTechnicianRequest struct {
	Name          string `json:"name" binding:"required" example:"Harjit Singh"`
	EmployeeID    string `json:"employee_id" binding:"required" example:"T-1024"`
	ContactNumber string `json:"contact_number" example:"9876501234"`
	Email         string `json:"email" example:"harjit.singh@example.com"`
	Designation   string `json:"designation" example:"Junior Engineer"`
	SubstationID  *uint  `json:"substation_id" example:"1"` // 仅管理员需要提供
}

// CreateTechnician 创建新技术员
// @Summary      创建技术员
// @Tags         Technician
// @Accept       json
// @Produce      json
// @Param        request body CreateTechnicianRequest true "技术员信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /technicians [post]
// @Security     BearerAuth
func (c *TechnicianController) CreateTechnician() {
	var req CreateTechnicianRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	substationID, ok := c.resolveSubstationID(req.SubstationID)
	if !ok {
		return
	}

	technician := &models.Technician{
		SubstationID:  substationID,
		Name:          req.Name,
		EmployeeID:    req.EmployeeID,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Designation:   req.Designation,
	}

	technicianService := c.Container.GetService("technician").(services.InterfaceTechnicianService)
	if err := technicianService.CreateTechnician(technician); err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			response.Fail(c.Ctx, code.ErrTechnicianAlreadyExist, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建技术员失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功创建技术员", technician)
}

// UpdateTechnicianRequest 表示更新技术员的请求体
type UpdateTechnicianRequest struct {
	Name          string `json:"name" example:"Harjit Singh"`
	ContactNumber string `json:"contact_number" example:"9876505678"`
	Email         string `json:"email" example:"harjit.singh@example.com"`
	Designation   string `json:"designation" example:"Assistant Engineer"`
}

// UpdateTechnician 更新技术员信息
// @Summary      更新技术员
// @Description  工号和所属变电站创建后不可修改
// @Tags         Technician
// @Accept       json
// @Produce      json
// @Param        id path int true "技术员ID" example:"3"
// @Param        request body UpdateTechnicianRequest true "更新的技术员信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /technicians/{id} [put]
// @Security     BearerAuth
func (c *TechnicianController) UpdateTechnician() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateTechnicianRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	if !c.canAccessTechnician(uint(id)) {
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.ContactNumber != "" {
		updates["contact_number"] = req.ContactNumber
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Designation != "" {
		updates["designation"] = req.Designation
	}

	technicianService := c.Container.GetService("technician").(services.InterfaceTechnicianService)
	technician, err := technicianService.UpdateTechnician(uint(id), updates)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			response.Fail(c.Ctx, code.ErrTechnicianNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新技术员失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功更新技术员", technician)
}

// DeleteTechnician 删除技术员
// @Summary      删除技术员
// @Description  软删除，历史条目中的关联保留
// @Tags         Technician
// @Produce      json
// @Param        id path int true "技术员ID" example:"3"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /technicians/{id} [delete]
// @Security     BearerAuth
func (c *TechnicianController) DeleteTechnician() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	if !c.canAccessTechnician(uint(id)) {
		return
	}

	technicianService := c.Container.GetService("technician").(services.InterfaceTechnicianService)
	if err := technicianService.DeleteTechnician(uint(id)); err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			response.Fail(c.Ctx, code.ErrTechnicianNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除技术员失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功删除技术员", nil)
}

// canAccessTechnician 校验技术员属于当前主体可操作的变电站
func (c *TechnicianController) canAccessTechnician(id uint) bool {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return false
	}
	if !p.Scoped() {
		return true
	}

	technicianService := c.Container.GetService("technician").(services.InterfaceTechnicianService)
	technician, err := technicianService.GetTechnicianByID(id)
	if err != nil {
		response.Fail(c.Ctx, code.ErrTechnicianNotFound, nil)
		return false
	}
	if technician.SubstationID != p.SubstationID {
		// 越站访问按不存在处理
		response.Fail(c.Ctx, code.ErrTechnicianNotFound, nil)
		return false
	}
	return true
}
