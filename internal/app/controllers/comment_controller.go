package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/banuch/logbook/internal/app/middleware"
	"github.com/banuch/logbook/internal/domain/services"
	"github.com/banuch/logbook/internal/domain/services/container"
	"github.com/banuch/logbook/internal/error/code"
	"github.com/banuch/logbook/internal/error/response"
)

// InterfaceCommentController 定义评论控制器接口
type InterfaceCommentController interface {
	GetComments()
	CreateComment()
	UpdateComment()
	DeleteComment()
}

// CommentController 处理工程师评论相关的请求
type CommentController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewCommentController 创建一个新的评论控制器
func NewCommentController(ctx *gin.Context, container *container.ServiceContainer) *CommentController {
	return &CommentController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleCommentFunc 返回一个处理评论请求的Gin处理函数
func HandleCommentFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewCommentController(ctx, container)

		switch method {
		case "getComments":
			controller.GetComments()
		case "createComment":
			controller.CreateComment()
		case "updateComment":
			controller.UpdateComment()
		case "deleteComment":
			controller.DeleteComment()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// CommentRequest 表示创建或修改评论的请求体
type CommentRequest struct {
	CommentText string `json:"comment_text" binding:"required" example:"已安排明日巡检确认"`
}

// GetComments 获取条目的评论列表
// @Summary      获取评论列表
// @Tags         Comment
// @Produce      json
// @Param        id path int true "条目ID" example:"10"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /logbook/entries/{id}/comments [get]
// @Security     BearerAuth
func (c *CommentController) GetComments() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	logID, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	commentService := c.Container.GetService("comment").(services.InterfaceCommentService)
	comments, err := commentService.GetCommentsByEntry(p, uint(logID))
	if err != nil {
		if errors.Is(err, services.ErrEntryNotFound) {
			response.Fail(c.Ctx, code.ErrEntryNotFound, nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询评论失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, comments)
}

// CreateComment 在条目下新增评论
// @Summary      新增评论
// @Description  仅工程师可评论
// @Tags         Comment
// @Accept       json
// @Produce      json
// @Param        id path int true "条目ID" example:"10"
// @Param        request body CommentRequest true "评论内容"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /logbook/entries/{id}/comments [post]
// @Security     BearerAuth
func (c *CommentController) CreateComment() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	logID, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req CommentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	commentService := c.Container.GetService("comment").(services.InterfaceCommentService)
	id, err := commentService.CreateComment(p, uint(logID), req.CommentText)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEntryNotFound):
			response.Fail(c.Ctx, code.ErrEntryNotFound, nil)
		case errors.Is(err, services.ErrPermissionDenied):
			response.Fail(c.Ctx, code.ErrPermissionDenied, nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "新增评论失败: "+err.Error(), nil)
		}
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功新增评论", gin.H{"id": id})
}

// UpdateComment 修改自己的评论
// @Summary      修改评论
// @Tags         Comment
// @Accept       json
// @Produce      json
// @Param        comment_id path int true "评论ID" example:"5"
// @Param        request body CommentRequest true "评论内容"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse  "只能修改自己的评论"
// @Failure      404  {object}  ErrorResponse
// @Router       /logbook/comments/{comment_id} [put]
// @Security     BearerAuth
func (c *CommentController) UpdateComment() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	commentID, err := strconv.ParseUint(c.Ctx.Param("comment_id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	var req CommentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}

	commentService := c.Container.GetService("comment").(services.InterfaceCommentService)
	if err := commentService.UpdateComment(p, uint(commentID), req.CommentText); err != nil {
		switch {
		case errors.Is(err, services.ErrCommentNotFound):
			response.Fail(c.Ctx, code.ErrCommentNotFound, nil)
		case errors.Is(err, services.ErrCommentNotOwned):
			response.Fail(c.Ctx, code.ErrCommentNotOwned, nil)
		case errors.Is(err, services.ErrPermissionDenied):
			response.Fail(c.Ctx, code.ErrPermissionDenied, nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "修改评论失败: "+err.Error(), nil)
		}
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功修改评论", nil)
}

// DeleteComment 删除自己的评论
// @Summary      删除评论
// @Tags         Comment
// @Produce      json
// @Param        comment_id path int true "评论ID" example:"5"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse  "只能删除自己的评论"
// @Failure      404  {object}  ErrorResponse
// @Router       /logbook/comments/{comment_id} [delete]
// @Security     BearerAuth
func (c *CommentController) DeleteComment() {
	p, ok := middleware.GetPrincipal(c.Ctx)
	if !ok {
		response.Unauthorized(c.Ctx)
		return
	}

	commentID, err := strconv.ParseUint(c.Ctx.Param("comment_id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的ID参数")
		return
	}

	commentService := c.Container.GetService("comment").(services.InterfaceCommentService)
	if err := commentService.DeleteComment(p, uint(commentID)); err != nil {
		switch {
		case errors.Is(err, services.ErrCommentNotFound):
			response.Fail(c.Ctx, code.ErrCommentNotFound, nil)
		case errors.Is(err, services.ErrCommentNotOwned):
			response.Fail(c.Ctx, code.ErrCommentNotOwned, nil)
		case errors.Is(err, services.ErrPermissionDenied):
			response.Fail(c.Ctx, code.ErrPermissionDenied, nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "删除评论失败: "+err.Error(), nil)
		}
		return
	}

	response.SuccessWithMessage(c.Ctx, "成功删除评论", nil)
}
