package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/banuch/logbook/internal/app/middleware"
	"github.com/banuch/logbook/internal/domain/services"
	"github.com/banuch/logbook/internal/domain/services/container"
	"github.com/banuch/logbook/internal/error/code"
	"github.com/banuch/logbook/internal/error/response"
)

// InterfaceAuthController 定义认证控制器接口
type InterfaceAuthController interface {
	Login()
	SubstationLogin()
	Verify()
	Logout()
}

// AuthController 处理身份验证请求
type AuthController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAuthController 创建一个新的认证控制器
func NewAuthController(ctx *gin.Context, container *container.ServiceContainer) *AuthController {
	return &AuthController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 表示职员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"Admin@123"`
}

// SubstationLoginRequest 表示变电站账户登录请求
type SubstationLoginRequest struct {
	SubstationCode string `json:"substation_code" binding:"required" example:"SS-KPHLI-01"`
	Password       string `json:"password" binding:"required" example:"Station@123"`
}

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Success bool        `json:"success" example:"false"`
	Code    int         `json:"code" example:"100004"`
	Message string      `json:"message" example:"令牌无效"`
	Data    interface{} `json:"data"`
}

// HandleAuthFunc 返回一个处理认证请求的Gin处理函数
func HandleAuthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAuthController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "substationLogin":
			controller.SubstationLogin()
		case "verify":
			controller.Verify()
		case "logout":
			controller.Logout()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// Login 处理管理员/工程师登录
// @Summary      职员登录
// @Description  管理员或工程师使用用户名密码登录，返回JWT令牌
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "登录请求参数"
// @Success      200  {object}  map[string]interface{}  "登录成功，返回token"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      401  {object}  ErrorResponse  "用户名或密码错误"
// @Router       /auth/login [post]
func (c *AuthController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	result, err := jwtService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Fail(c.Ctx, code.ErrUserPasswordIncorrect, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "登录失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, result)
}

// SubstationLogin 处理变电站账户登录
// @Summary      变电站登录
// @Description  变电站账户使用站点编码和密码登录，返回JWT令牌
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body SubstationLoginRequest true "登录请求参数"
// @Success      200  {object}  map[string]interface{}  "登录成功，返回token"
// @Failure      400  {object}  ErrorResponse  "请求参数错误"
// @Failure      401  {object}  ErrorResponse  "站点编码或密码错误"
// @Router       /auth/substation-login [post]
func (c *AuthController) SubstationLogin() {
	var req SubstationLoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	result, err := jwtService.SubstationLogin(req.SubstationCode, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Fail(c.Ctx, code.ErrUserPasswordIncorrect, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "登录失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, result)
}

// Verify 校验当前令牌并返回其主体信息
// @Summary      令牌校验
// @Description  校验Authorization头中的JWT令牌是否有效
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/verify [get]
// @Security     BearerAuth
func (c *AuthController) Verify() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	data := gin.H{
		"id":   p.ID,
		"role": string(p.Role()),
	}
	if p.Scoped() {
		data["substation_id"] = p.SubstationID
	}
	response.Success(c.Ctx, data)
}

// Logout 登出
// 令牌是无状态的，登出只是语义上的确认，由客户端丢弃令牌
// @Summary      登出
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/logout [post]
// @Security     BearerAuth
func (c *AuthController) Logout() {
	response.SuccessWithMessage(c.Ctx, "已登出", nil)
}
