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

// InterfaceUserController 定义职员账户控制器接口
type InterfaceUserController interface {
	GetUsers()
	CreateUser()
	UpdateUser()
	ToggleUserStatus()
}

// UserController 处理管理员与工程师账户相关的请求
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController 创建一个新的职员账户控制器
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleUserFunc 返回一个处理职员账户请求的Gin处理函数
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)

		switch method {
		case "getUsers":
			controller.GetUsers()
		case "createUser":
			controller.CreateUser()
		case "updateUser":
			controller.UpdateUser()
		case "toggleUserStatus":
			controller.ToggleUserStatus()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetUsers 获取职员账户列表
// @Summary      获取职员列表
// @Description  获取全部管理员与工程师账户，含所属变电站
// @Tags         User
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /users [get]
// @Security     BearerAuth
func (c *UserController) GetUsers() {
	userService := c.Container.GetService("user").(services.InterfaceUserService)

	users, err := userService.GetAllUsers()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询职员列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, users)
}

// CreateUserRequest 表示创建职员账户的请求体
type CreateUserRequest struct {
	Username     string `json:"username" binding:"required" example:"er_sharma"`
	Password     string `json:"password" binding:"required,min=6" example:"Engineer@123"`
	FullName     string `json:"full_name" binding:"required" example:"R.K. Sharma"`
	Email        string `json:"email" binding:"required,email" example:"rk.sharma@example.com"`
	Phone        string `json:"phone" example:"9876543210"`
	EmployeeID   string `json:"employee_id" example:"PSPCL-4521"`
	Role         string `json:"role" binding:"required,oneof=admin engineer" example:"engineer"`
	SubstationID *uint  `json:"substation_id" example:"1"` // 工程师必填，管理员忽略
}

// CreateUser 创建新职员账户
// @Summary      创建职员账户
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "职员信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /users [post]
// @Security     BearerAuth
func (c *UserController) CreateUser() {
	var req CreateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	// 工程师必须绑定变电站
	if req.Role == string(models.RoleEngineer) && req.SubstationID == nil {
		response.Fail(c.Ctx, code.ErrSubstationRequired, nil)
		return
	}

	user := &models.User{
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		EmployeeID:   req.EmployeeID,
		Role:         models.UserRole(req.Role),
		SubstationID: req.SubstationID,
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	if err := userService.CreateUser(user, req.Password); err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			response.Fail(c.Ctx, code.ErrUserAlreadyExist, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建职员失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功创建职员", user)
}

// UpdateUserRequest 表示更新职员账户的请求体
type UpdateUserRequest struct {
	FullName     string `json:"full_name" example:"R.K. Sharma"`
	Email        string `json:"email" example:"rk.sharma@example.com"`
	Phone        string `json:"phone" example:"9876543211"`
	SubstationID *uint  `json:"substation_id" example:"2"`
	Password     string `json:"password" example:"NewEngineer@456"` // 为空表示不修改密码
}

// UpdateUser 更新职员账户信息
// @Summary      更新职员账户
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        id path int true "职员ID" example:"2"
// @Param        request body UpdateUserRequest true "更新的职员信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [put]
// @Security     BearerAuth
func (c *UserController) UpdateUser() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req UpdateUserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	updates := make(map[string]interface{})
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.SubstationID != nil {
		updates["substation_id"] = *req.SubstationID
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.UpdateUser(uint(id), updates, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			response.Fail(c.Ctx, code.ErrUserNotFound, nil)
			return
		}
		if errors.Is(err, services.ErrDuplicate) {
			response.Fail(c.Ctx, code.ErrUserAlreadyExist, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新职员失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功更新职员", user)
}

// ToggleUserStatus 切换职员启用状态
// @Summary      启用/停用职员账户
// @Tags         User
// @Produce      json
// @Param        id path int true "职员ID" example:"2"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id}/toggle-status [patch]
// @Security     BearerAuth
func (c *UserController) ToggleUserStatus() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	if err := userService.ToggleUserStatus(uint(id)); err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			response.Fail(c.Ctx, code.ErrUserNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "切换职员状态失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功切换职员状态", nil)
}
