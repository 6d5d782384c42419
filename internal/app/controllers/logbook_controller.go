package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/banuch/logbook/internal/app/middleware"
	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/domain/services"
	"github.com/banuch/logbook/internal/domain/services/container"
	"github.com/banuch/logbook/internal/error/code"
	"github.com/banuch/logbook/internal/error/response"
	"github.com/banuch/logbook/internal/infrastructure/config"
	"github.com/banuch/logbook/pkg/utils"
)

// InterfaceLogbookController 定义日志条目控制器接口
type InterfaceLogbookController interface {
	SearchEntries()
	GetEntry()
	CreateEntry()
	UpdateEntry()
	DeleteEntry()
	ExportExcel()
	ExportPDF()
}

// LogbookController 处理日志条目相关的请求
type LogbookController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewLogbookController 创建一个新的日志条目控制器
func NewLogbookController(ctx *gin.Context, container *container.ServiceContainer) *LogbookController {
	return &LogbookController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleLogbookFunc 返回一个处理日志条目请求的Gin处理函数
func HandleLogbookFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewLogbookController(ctx, container)

		switch method {
		case "searchEntries":
			controller.SearchEntries()
		case "getEntry":
			controller.GetEntry()
		case "createEntry":
			controller.CreateEntry()
		case "updateEntry":
			controller.UpdateEntry()
		case "deleteEntry":
			controller.DeleteEntry()
		case "exportExcel":
			controller.ExportExcel()
		case "exportPDF":
			controller.ExportPDF()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// maxAttachmentSize 附件大小上限
const maxAttachmentSize = 5 << 20

// allowedAttachmentExts 允许的附件扩展名
var allowedAttachmentExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// entryDatetimeFormats 支持的事件时间格式
var entryDatetimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseEntryDatetime 解析表单中的事件时间
func parseEntryDatetime(raw string) (time.Time, error) {
	for _, layout := range entryDatetimeFormats {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("无法解析的时间格式: " + raw)
}

// parseOptionalUint 解析可选的表单数字字段
func parseOptionalUint(raw string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, err
	}
	id := uint(value)
	return &id, nil
}

// parseOptionalFloat 解析可选的表单读数字段
func parseOptionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// parseTechnicianIDs 解析technician_ids表单字段，JSON数组字符串
func parseTechnicianIDs(raw string) ([]uint, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, errors.New("technician_ids必须是数字数组")
	}
	return ids, nil
}

// parseParameters 从表单收集电气参数
func parseParameters(ctx *gin.Context) (models.ElectricalParameters, bool, error) {
	params := models.ElectricalParameters{}
	present := false

	fields := []struct {
		name   string
		target **float64
	}{
		{"voltage_kv", &params.VoltageKV},
		{"current_a", &params.CurrentA},
		{"power_mw", &params.PowerMW},
		{"frequency_hz", &params.FrequencyHz},
		{"power_factor", &params.PowerFactor},
		{"energy_mwh", &params.EnergyMWH},
	}
	for _, field := range fields {
		if _, exists := ctx.GetPostForm(field.name); exists {
			present = true
		}
		value, err := parseOptionalFloat(ctx.PostForm(field.name))
		if err != nil {
			return params, present, errors.New("无效的读数: " + field.name)
		}
		*field.target = value
	}
	return params, present, nil
}

// saveAttachment 校验并保存上传的附件，返回存储文件名
func (c *LogbookController) saveAttachment(file *multipart.FileHeader) (string, error) {
	if file.Size > maxAttachmentSize {
		return "", errors.New("附件大小超过5MB限制")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAttachmentExts[ext] {
		return "", errors.New("不支持的附件类型: " + ext)
	}

	cfg := c.Container.GetService("config").(*config.Config)
	filename := utils.AttachmentFileName(file.Filename)
	if err := c.Ctx.SaveUploadedFile(file, filepath.Join(cfg.UploadDir, filename)); err != nil {
		return "", err
	}
	return filename, nil
}

// buildFilter 从查询参数构造检索条件
func buildFilter(ctx *gin.Context) (services.EntryFilter, error) {
	filter := services.EntryFilter{
		StartDate:  ctx.Query("start_date"),
		EndDate:    ctx.Query("end_date"),
		SearchText: ctx.Query("search"),
		Severity:   ctx.Query("severity"),
	}

	var err error
	if filter.SubstationID, err = parseOptionalUint(ctx.Query("substation_id")); err != nil {
		return filter, errors.New("无效的substation_id参数")
	}
	if filter.TechnicianID, err = parseOptionalUint(ctx.Query("technician_id")); err != nil {
		return filter, errors.New("无效的technician_id参数")
	}
	if filter.CategoryID, err = parseOptionalUint(ctx.Query("category_id")); err != nil {
		return filter, errors.New("无效的category_id参数")
	}

	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	return filter, nil
}

// SearchEntries 多条件检索日志条目
// @Summary      检索日志条目
// @Description  支持日期范围、全文检索、技术员、类别、严重度过滤，受限主体只能检索本站
// @Tags         Logbook
// @Produce      json
// @Param        substation_id query int false "变电站ID，仅管理员有效" example:"1"
// @Param        start_date query string false "起始日期(含)" example:"2026-08-01"
// @Param        end_date query string false "结束日期(含)" example:"2026-08-31"
// @Param        search query string false "全文检索关键词" example:"transformer trip"
// @Param        technician_id query int false "技术员ID" example:"3"
// @Param        category_id query int false "事件类别ID" example:"2"
// @Param        severity query string false "严重度" Enums(Normal,Warning,Critical)
// @Param        page query int false "页码，默认为1" example:"1"
// @Param        limit query int false "每页条数，默认为50" example:"50"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /logbook/entries [get]
// @Security     BearerAuth
func (c *LogbookController) SearchEntries() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	filter, err := buildFilter(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	logbookService := c.Container.GetService("logbook").(services.InterfaceLogbookService)
	entries, pagination, err := logbookService.SearchEntries(p, filter)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "检索日志条目失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"entries":    entries,
		"pagination": pagination,
	})
}

// GetEntry 获取单条日志条目详情
// @Summary      获取日志条目详情
// @Description  返回聚合后的条目，含技术员、电气参数和评论数
// @Tags         Logbook
// @Produce      json
// @Param        id path int true "条目ID" example:"10"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /logbook/entries/{id} [get]
// @Security     BearerAuth
func (c *LogbookController) GetEntry() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	logbookService := c.Container.GetService("logbook").(services.InterfaceLogbookService)
	entry, err := logbookService.GetEntry(p, uint(id))
	if err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			response.Fail(c.Ctx, code.ErrEntryNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询日志条目失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, entry)
}

// CreateEntry 创建日志条目
// @Summary      创建日志条目
// @Description  multipart表单提交，可携带附件、技术员列表和电气参数
// @Tags         Logbook
// @Accept       multipart/form-data
// @Produce      json
// @Param        entry_datetime formData string true "事件时间" example:"2026-08-28T14:30"
// @Param        message formData string true "条目内容"
// @Param        severity formData string false "严重度" Enums(Normal,Warning,Critical)
// @Param        event_category_id formData int false "事件类别ID"
// @Param        equipment_id formData int false "设备类型ID"
// @Param        technician_ids formData string false "技术员ID数组，JSON格式" example:"[1,3]"
// @Param        voltage_kv formData number false "电压读数"
// @Param        current_a formData number false "电流读数"
// @Param        power_mw formData number false "功率读数"
// @Param        frequency_hz formData number false "频率读数"
// @Param        power_factor formData number false "功率因数"
// @Param        energy_mwh formData number false "电量读数"
// @Param        send_email_notification formData boolean false "是否发送邮件通知"
// @Param        substation_id formData int false "目标变电站ID，仅管理员需要"
// @Param        attachment formData file false "附件文件"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /logbook/entries [post]
// @Security     BearerAuth
func (c *LogbookController) CreateEntry() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	message := strings.TrimSpace(c.Ctx.PostForm("message"))
	if message == "" {
		response.ParamError(c.Ctx, "条目内容不能为空")
		return
	}

	entryDatetime, err := parseEntryDatetime(c.Ctx.PostForm("entry_datetime"))
	if err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	technicianIDs, err := parseTechnicianIDs(c.Ctx.PostForm("technician_ids"))
	if err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	params, _, err := parseParameters(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	input := &services.CreateEntryInput{
		EntryDatetime: entryDatetime,
		Severity:      models.Severity(c.Ctx.DefaultPostForm("severity", string(models.SeverityNormal))),
		Message:       message,
		TechnicianIDs: technicianIDs,
		Parameters:    params,
		Notify:        c.Ctx.PostForm("send_email_notification") == "true",
	}

	if input.EventCategoryID, err = parseOptionalUint(c.Ctx.PostForm("event_category_id")); err != nil {
		response.ParamError(c.Ctx, "无效的event_category_id参数")
		return
	}
	if input.EquipmentID, err = parseOptionalUint(c.Ctx.PostForm("equipment_id")); err != nil {
		response.ParamError(c.Ctx, "无效的equipment_id参数")
		return
	}
	if input.SubstationID, err = parseOptionalUint(c.Ctx.PostForm("substation_id")); err != nil {
		response.ParamError(c.Ctx, "无效的substation_id参数")
		return
	}

	if file, err := c.Ctx.FormFile("attachment"); err == nil {
		filename, err := c.saveAttachment(file)
		if err != nil {
			response.FailWithMessage(c.Ctx, code.ErrAttachmentInvalid, err.Error(), nil)
			return
		}
		input.AttachmentPath = filename
	}

	logbookService := c.Container.GetService("logbook").(services.InterfaceLogbookService)
	id, err := logbookService.CreateEntry(p, input)
	if err != nil {
		if errors.Is(err, services.ErrSubstationRequired) {
			response.Fail(c.Ctx, code.ErrSubstationRequired, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建日志条目失败: "+err.Error(), nil)
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功创建日志条目", gin.H{"id": id})
}

// UpdateEntry 编辑日志条目
// @Summary      编辑日志条目
// @Description  仅限创建后24小时内；technician_ids和电气参数为整体替换语义
// @Tags         Logbook
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path int true "条目ID" example:"10"
// @Param        entry_datetime formData string true "事件时间"
// @Param        message formData string true "条目内容"
// @Param        severity formData string false "严重度" Enums(Normal,Warning,Critical)
// @Param        event_category_id formData int false "事件类别ID"
// @Param        equipment_id formData int false "设备类型ID"
// @Param        technician_ids formData string false "技术员ID数组，缺省表示不修改"
// @Param        attachment formData file false "新附件，缺省表示保留原附件"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse  "超出编辑窗口"
// @Failure      404  {object}  ErrorResponse
// @Router       /logbook/entries/{id} [put]
// @Security     BearerAuth
func (c *LogbookController) UpdateEntry() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	message := strings.TrimSpace(c.Ctx.PostForm("message"))
	if message == "" {
		response.ParamError(c.Ctx, "条目内容不能为空")
		return
	}

	entryDatetime, err := parseEntryDatetime(c.Ctx.PostForm("entry_datetime"))
	if err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}

	input := &services.UpdateEntryInput{
		EntryDatetime: entryDatetime,
		Severity:      models.Severity(c.Ctx.DefaultPostForm("severity", string(models.SeverityNormal))),
		Message:       message,
	}

	if input.EventCategoryID, err = parseOptionalUint(c.Ctx.PostForm("event_category_id")); err != nil {
		response.ParamError(c.Ctx, "无效的event_category_id参数")
		return
	}
	if input.EquipmentID, err = parseOptionalUint(c.Ctx.PostForm("equipment_id")); err != nil {
		response.ParamError(c.Ctx, "无效的equipment_id参数")
		return
	}

	// technician_ids字段存在才视为替换请求
	if raw, exists := c.Ctx.GetPostForm("technician_ids"); exists {
		ids, err := parseTechnicianIDs(raw)
		if err != nil {
			response.ParamError(c.Ctx, err.Error())
			return
		}
		if ids == nil {
			ids = []uint{}
		}
		input.TechnicianIDs = &ids
	}

	// 任一读数字段存在即视为替换电气参数
	params, present, err := parseParameters(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, err.Error())
		return
	}
	if present {
		input.Parameters = &params
	}

	if file, err := c.Ctx.FormFile("attachment"); err == nil {
		filename, err := c.saveAttachment(file)
		if err != nil {
			response.FailWithMessage(c.Ctx, code.ErrAttachmentInvalid, err.Error(), nil)
			return
		}
		input.AttachmentPath = filename
	}

	logbookService := c.Container.GetService("logbook").(services.InterfaceLogbookService)
	if err := logbookService.UpdateEntry(p, uint(id), input); err != nil {
		switch {
		case errors.Is(err, services.ErrEntryNotFound):
			response.Fail(c.Ctx, code.ErrEntryNotFound, nil)
		case errors.Is(err, services.ErrEditWindowExpired):
			response.Fail(c.Ctx, code.ErrEditWindowExpired, nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "编辑日志条目失败: "+err.Error(), nil)
		}
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功编辑日志条目", nil)
}

// DeleteEntry 删除日志条目
// @Summary      删除日志条目
// @Description  仅限创建后24小时内，关联的技术员、参数和评论一并删除
// @Tags         Logbook
// @Produce      json
// @Param        id path int true "条目ID" example:"10"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse  "超出编辑窗口"
// @Failure      404  {object}  ErrorResponse
// @Router       /logbook/entries/{id} [delete]
// @Security     BearerAuth
func (c *LogbookController) DeleteEntry() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	logbookService := c.Container.GetService("logbook").(services.InterfaceLogbookService)
	if err := logbookService.DeleteEntry(p, uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrEntryNotFound):
			response.Fail(c.Ctx, code.ErrEntryNotFound, nil)
		case errors.Is(err, services.ErrEditWindowExpired):
			response.Fail(c.Ctx, code.ErrEditWindowExpired, nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除日志条目失败: "+err.Error(), nil)
		}
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功删除日志条目", nil)
}

// ExportRequest 导出接口的检索条件，语义与列表检索一致
type ExportRequest struct {
	SubstationID *uint  `json:"substation_id" example:"1"`
	StartDate    string `json:"start_date" example:"2026-08-01"`
	EndDate      string `json:"end_date" example:"2026-08-31"`
	Search       string `json:"search" example:"transformer"`
	TechnicianID *uint  `json:"technician_id" example:"3"`
	CategoryID   *uint  `json:"category_id" example:"2"`
	Severity     string `json:"severity" example:"Critical"`
}

// bindExportFilter 解析POST请求体中的导出条件，空请求体等价于无条件
func bindExportFilter(ctx *gin.Context) (services.EntryFilter, bool) {
	var req ExportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ParamError(ctx, "无效的请求参数: "+err.Error())
		return services.EntryFilter{}, false
	}
	return services.EntryFilter{
		SubstationID: req.SubstationID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		SearchText:   req.Search,
		TechnicianID: req.TechnicianID,
		CategoryID:   req.CategoryID,
		Severity:     req.Severity,
	}, true
}

// ExportExcel 导出检索结果为Excel
// @Summary      导出Excel
// @Description  按请求体中的过滤条件导出，最多200条
// @Tags         Logbook
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        data body ExportRequest false "导出条件"
// @Success      200  {file}  binary
// @Failure      400  {object}  ErrorResponse
// @Router       /reports/export-excel [post]
// @Security     BearerAuth
func (c *LogbookController) ExportExcel() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	filter, ok := bindExportFilter(c.Ctx)
	if !ok {
		return
	}

	exportService := c.Container.GetService("export").(services.InterfaceExportService)
	buf, filename, err := exportService.ExportEntriesExcel(p, filter)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "导出Excel失败: "+err.Error(), nil)
		return
	}

	c.Ctx.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Ctx.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportPDF 导出检索结果为PDF
// @Summary      导出PDF
// @Description  按请求体中的过滤条件导出，最多200条
// @Tags         Logbook
// @Accept       json
// @Produce      application/pdf
// @Param        data body ExportRequest false "导出条件"
// @Success      200  {file}  binary
// @Failure      400  {object}  ErrorResponse
// @Router       /reports/export-pdf [post]
// @Security     BearerAuth
func (c *LogbookController) ExportPDF() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	filter, ok := bindExportFilter(c.Ctx)
	if !ok {
		return
	}

	exportService := c.Container.GetService("export").(services.InterfaceExportService)
	buf, filename, err := exportService.ExportEntriesPDF(p, filter)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "导出PDF失败: "+err.Error(), nil)
		return
	}

	c.Ctx.Header("Content-Type", "application/pdf")
	c.Ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Ctx.Data(200, "application/pdf", buf.Bytes())
}
