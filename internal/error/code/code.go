package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrPermissionDenied - 403: 权限不足.
	ErrPermissionDenied
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
)

// 账户相关错误码 (101xxx).
const (
	// ErrUserNotFound - 404: 用户不存在.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: 用户已存在.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: 用户密码错误.
	ErrUserPasswordIncorrect
)

// 变电站相关错误码 (102xxx).
const (
	// ErrSubstationNotFound - 404: 变电站不存在.
	ErrSubstationNotFound int = iota + 102000
	// ErrSubstationAlreadyExist - 400: 变电站编码已存在.
	ErrSubstationAlreadyExist
	// ErrSubstationRequired - 400: 缺少目标变电站.
	ErrSubstationRequired
)

// 技术员与基础数据错误码 (103xxx).
const (
	// ErrTechnicianNotFound - 404: 技术员不存在.
	ErrTechnicianNotFound int = iota + 103000
	// ErrTechnicianAlreadyExist - 400: 技术员工号已存在.
	ErrTechnicianAlreadyExist
	// ErrReferenceNotFound - 404: 基础数据不存在.
	ErrReferenceNotFound
	// ErrReferenceAlreadyExist - 400: 基础数据已存在.
	ErrReferenceAlreadyExist
)

// 日志条目相关错误码 (104xxx).
const (
	// ErrEntryNotFound - 404: 日志条目不存在.
	ErrEntryNotFound int = iota + 104000
	// ErrEditWindowExpired - 403: 超出24小时编辑窗口.
	ErrEditWindowExpired
	// ErrCommentNotFound - 404: 评论不存在.
	ErrCommentNotFound
	// ErrCommentNotOwned - 403: 只能操作自己的评论.
	ErrCommentNotOwned
	// ErrAttachmentInvalid - 400: 附件不合法.
	ErrAttachmentInvalid
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)

// 邮件相关错误码 (106xxx).
const (
	// ErrEmailConfigNotFound - 404: 邮件配置不存在.
	ErrEmailConfigNotFound int = iota + 106000
	// ErrEmailSendFailed - 500: 邮件发送失败.
	ErrEmailSendFailed
)

// 备份相关错误码 (109xxx).
const (
	// ErrBackupFailed - 500: 备份失败.
	ErrBackupFailed int = iota + 109000
	// ErrBackupNotFound - 404: 备份文件不存在.
	ErrBackupNotFound
)

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
