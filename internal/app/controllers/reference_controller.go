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

// InterfaceReferenceController 定义基础数据控制器接口
type InterfaceReferenceController interface {
	GetEquipmentTypes()
	CreateEquipmentType()
	DeleteEquipmentType()
	GetEventCategories()
	CreateEventCategory()
	DeleteEventCategory()
}

// ReferenceController 处理设备类型与事件类别相关的请求
type ReferenceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewReferenceController 创建一个新的基础数据控制器
func NewReferenceController(ctx *gin.Context, container *container.ServiceContainer) *ReferenceController {
	return &ReferenceController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleReferenceFunc 返回一个处理基础数据请求的Gin处理函数
func HandleReferenceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewReferenceController(ctx, container)

		switch method {
		case "getEquipmentTypes":
			controller.GetEquipmentTypes()
		case "createEquipmentType":
			controller.CreateEquipmentType()
		case "deleteEquipmentType":
			controller.DeleteEquipmentType()
		case "getEventCategories":
			controller.GetEventCategories()
		case "createEventCategory":
			controller.CreateEventCategory()
		case "deleteEventCategory":
			controller.DeleteEventCategory()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// CreateReferenceRequest 表示创建基础数据项的请求体
type CreateReferenceRequest struct {
	Name        string `json:"name" binding:"required" example:"Power Transformer"`
	Description string `json:"description" example:"132/11 kV power transformer"`
}

// creatorID 当前主体的用户ID，变电站账户没有对应的用户行
func (c *ReferenceController) creatorID() *uint {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok || p.Kind == services.PrincipalSubstation {
		return nil
	}
	id := p.ID
	return &id
}

// GetEquipmentTypes 获取设备类型列表
// @Summary      获取设备类型列表
// @Tags         Reference
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /equipment-types [get]
// @Security     BearerAuth
func (c *ReferenceController) GetEquipmentTypes() {
	referenceService := c.Container.GetService("reference").(services.InterfaceReferenceService)

	equipmentTypes, err := referenceService.GetEquipmentTypes()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询设备类型失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, equipmentTypes)
}

// CreateEquipmentType 创建设备类型
// @Summary      创建设备类型
// @Tags         Reference
// @Accept       json
// @Produce      json
// @Param        request body CreateReferenceRequest true "设备类型信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /equipment-types [post]
// @Security     BearerAuth
func (c *ReferenceController) CreateEquipmentType() {
	var req CreateReferenceRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	equipment := &models.EquipmentType{
		EquipmentName: req.Name,
		Description:   req.Description,
		CreatedBy:     c.creatorID(),
	}

	referenceService := c.Container.GetService("reference").(services.InterfaceReferenceService)
	if err := referenceService.CreateEquipmentType(equipment); err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			response.Fail(c.Ctx, code.ErrReferenceAlreadyExist, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建设备类型失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功创建设备类型", equipment)
}

// DeleteEquipmentType 删除设备类型
// @Summary      删除设备类型
// @Description  软删除，历史条目的引用保留
// @Tags         Reference
// @Produce      json
// @Param        id path int true "设备类型ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /equipment-types/{id} [delete]
// @Security     BearerAuth
func (c *ReferenceController) DeleteEquipmentType() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	referenceService := c.Container.GetService("reference").(services.InterfaceReferenceService)
	if err := referenceService.DeleteEquipmentType(uint(id)); err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			response.Fail(c.Ctx, code.ErrReferenceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除设备类型失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功删除设备类型", nil)
}

// GetEventCategories 获取事件类别列表
// @Summary      获取事件类别列表
// @Tags         Reference
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /event-categories [get]
// @Security     BearerAuth
func (c *ReferenceController) GetEventCategories() {
	referenceService := c.Container.GetService("reference").(services.InterfaceReferenceService)

	categories, err := referenceService.GetEventCategories()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询事件类别失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, categories)
}

// CreateEventCategory 创建事件类别
// @Summary      创建事件类别
// @Tags         Reference
// @Accept       json
// @Produce      json
// @Param        request body CreateReferenceRequest true "事件类别信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /event-categories [post]
// @Security     BearerAuth
func (c *ReferenceController) CreateEventCategory() {
	var req CreateReferenceRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	category := &models.EventCategory{
		CategoryName: req.Name,
		Description:  req.Description,
		CreatedBy:    c.creatorID(),
	}

	referenceService := c.Container.GetService("reference").(services.InterfaceReferenceService)
	if err := referenceService.CreateEventCategory(category); err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			response.Fail(c.Ctx, code.ErrReferenceAlreadyExist, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建事件类别失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功创建事件类别", category)
}

// DeleteEventCategory 删除事件类别
// @Summary      删除事件类别
// @Description  软删除，历史条目的引用保留
// @Tags         Reference
// @Produce      json
// @Param        id path int true "事件类别ID" example:"1"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /event-categories/{id} [delete]
// @Security     BearerAuth
func (c *ReferenceController) DeleteEventCategory() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	referenceService := c.Container.GetService("reference").(services.InterfaceReferenceService)
	if err := referenceService.DeleteEventCategory(uint(id)); err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			response.Fail(c.Ctx, code.ErrReferenceNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除事件类别失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功删除事件类别", nil)
}
