package controllers

import (
	"errors"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/banuch/logbook/internal/app/middleware"
	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/domain/services"
	"github.com/banuch/logbook/internal/domain/services/container"
	"github.com/banuch/logbook/internal/error/code"
	"github.com/banuch/logbook/internal/error/response"
)

// InterfaceAdminController 定义系统管理控制器接口
type InterfaceAdminController interface {
	GetEmailConfig()
	UpdateEmailConfig()
	SendTestEmail()
	RunBackup()
	GetBackupHistory()
	DownloadBackup()
}

// AdminController 处理邮件配置与备份管理请求
type AdminController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAdminController 创建一个新的系统管理控制器
func NewAdminController(ctx *gin.Context, container *container.ServiceContainer) *AdminController {
	return &AdminController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAdminFunc 返回一个处理系统管理请求的Gin处理函数
func HandleAdminFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAdminController(ctx, container)

		switch method {
		case "getEmailConfig":
			controller.GetEmailConfig()
		case "updateEmailConfig":
			controller.UpdateEmailConfig()
		case "sendTestEmail":
			controller.SendTestEmail()
		case "runBackup":
			controller.RunBackup()
		case "getBackupHistory":
			controller.GetBackupHistory()
		case "downloadBackup":
			controller.DownloadBackup()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// GetEmailConfig 获取SMTP配置
// @Summary      获取邮件配置
// @Description  返回当前激活的SMTP配置，密码不回显
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /email-config [get]
// @Security     BearerAuth
func (c *AdminController) GetEmailConfig() {
	emailService := c.Container.GetService("email").(services.InterfaceEmailService)

	cfg, err := emailService.GetEmailConfig()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询邮件配置失败: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, cfg)
}

// UpdateEmailConfig 更新SMTP配置
// @Summary      更新邮件配置
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body services.EmailConfigInput true "SMTP配置"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /email-config [post]
// @Security     BearerAuth
func (c *AdminController) UpdateEmailConfig() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	var req services.EmailConfigInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	emailService := c.Container.GetService("email").(services.InterfaceEmailService)
	if err := emailService.UpdateEmailConfig(p.ID, &req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "更新邮件配置失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功更新邮件配置", nil)
}

// TestEmailRequest 表示测试邮件请求
type TestEmailRequest struct {
	To string `json:"to" binding:"required,email" example:"ops@example.com"`
}

// SendTestEmail 发送测试邮件
// @Summary      发送测试邮件
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body TestEmailRequest true "收件人"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse  "发送失败"
// @Router       /email-config/test [post]
// @Security     BearerAuth
func (c *AdminController) SendTestEmail() {
	var req TestEmailRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	emailService := c.Container.GetService("email").(services.InterfaceEmailService)
	if err := emailService.SendTestEmail(req.To); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrEmailSendFailed, "测试邮件发送失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "测试邮件已发送", nil)
}

// RunBackup 手动触发数据库备份
// @Summary      手动备份
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  ErrorResponse
// @Router       /backup/manual [post]
// @Security     BearerAuth
func (c *AdminController) RunBackup() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	createdBy := p.ID
	backupService := c.Container.GetService("backup").(services.InterfaceBackupService)
	record, err := backupService.RunBackup(models.BackupTypeManual, &createdBy)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBackupFailed, "备份失败: "+err.Error(), nil)
		return
	}
	if record.Status == models.BackupStatusFailed {
		response.FailWithMessage(c.Ctx, code.ErrBackupFailed, "备份失败: "+record.ErrorMessage, record)
		return
	}

	response.SuccessWithMessage(c.Ctx, "备份完成", record)
}

// GetBackupHistory 获取备份历史
// @Summary      获取备份历史
// @Tags         Admin
// @Produce      json
// @Param        limit query int false "返回条数，默认为50" example:"50"
// @Success      200  {object}  map[string]interface{}
// @Router       /backup/history [get]
// @Security     BearerAuth
func (c *AdminController) GetBackupHistory() {
	limit, _ := strconv.Atoi(c.Ctx.DefaultQuery("limit", "50"))

	backupService := c.Container.GetService("backup").(services.InterfaceBackupService)
	records, err := backupService.GetBackupHistory(limit)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询备份历史失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, records)
}

// DownloadBackup 下载备份文件
// @Summary      下载备份文件
// @Tags         Admin
// @Produce      application/octet-stream
// @Param        filename path string true "备份文件名" example:"backup-2026-08-28.sql.gz"
// @Success      200  {file}  binary
// @Failure      404  {object}  ErrorResponse
// @Router       /backup/download/{filename} [get]
// @Security     BearerAuth
func (c *AdminController) DownloadBackup() {
	filename := c.Ctx.Param("filename")
	if filename == "" {
		response.ParamError(c.Ctx, "缺少文件名参数")
		return
	}

	backupService := c.Container.GetService("backup").(services.InterfaceBackupService)
	path, err := backupService.ResolveBackupFile(filename)
	if err != nil {
		if errors.Is(err, services.ErrBackupNotFound) {
			response.Fail(c.Ctx, code.ErrBackupNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "下载备份失败: "+err.Error(), nil)
		return
	}

	c.Ctx.Header("Content-Type", "application/octet-stream")
	c.Ctx.FileAttachment(path, filepath.Base(path))
}
