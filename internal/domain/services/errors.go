package services

import "errors"

// 服务层哨兵错误，控制器据此映射错误码
var (
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	// ErrRecordNotFound 通用的记录不存在
	ErrRecordNotFound = errors.New("记录不存在")
	// ErrDuplicate 唯一性冲突（编码、用户名、工号等）
	ErrDuplicate = errors.New("唯一性冲突")
	// ErrEntryNotFound 日志条目不存在
	ErrEntryNotFound = errors.New("日志条目不存在")
	// ErrEditWindowExpired 超出创建后24小时的编辑窗口
	ErrEditWindowExpired = errors.New("超出24小时编辑窗口")
	// ErrSubstationRequired 管理员发布日志必须指定变电站
	ErrSubstationRequired = errors.New("缺少目标变电站")
	// ErrCommentNotFound 评论不存在
	ErrCommentNotFound = errors.New("评论不存在")
	// ErrCommentNotOwned 只能操作本人的评论
	ErrCommentNotOwned = errors.New("只能操作自己的评论")
	// ErrBackupNotFound 备份文件不存在
	ErrBackupNotFound = errors.New("备份文件不存在")
	// ErrPermissionDenied 当前主体没有执行该操作的权限
	ErrPermissionDenied = errors.New("没有权限执行该操作")
)
