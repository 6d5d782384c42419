package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:          "成功",
	ErrUnknown:          "未知错误",
	ErrBind:             "请求参数绑定错误",
	ErrValidation:       "请求参数验证错误",
	ErrTokenInvalid:     "无效的认证令牌",
	ErrPermissionDenied: "没有权限执行该操作",
	ErrTooManyRequests:  "请求频率过高",

	// 账户相关错误码
	ErrUserNotFound:          "用户不存在",
	ErrUserAlreadyExist:      "用户名、邮箱或工号已存在",
	ErrUserPasswordIncorrect: "用户名或密码错误",

	// 变电站相关错误码
	ErrSubstationNotFound:     "变电站不存在",
	ErrSubstationAlreadyExist: "变电站编码已存在",
	ErrSubstationRequired:     "管理员创建日志必须指定目标变电站",

	// 技术员与基础数据错误码
	ErrTechnicianNotFound:     "技术员不存在",
	ErrTechnicianAlreadyExist: "该变电站下工号已存在",
	ErrReferenceNotFound:      "基础数据不存在",
	ErrReferenceAlreadyExist:  "名称已存在",

	// 日志条目相关错误码
	ErrEntryNotFound:     "日志条目不存在",
	ErrEditWindowExpired: "日志条目仅可在创建后24小时内修改或删除",
	ErrCommentNotFound:   "评论不存在",
	ErrCommentNotOwned:   "只能修改或删除自己的评论",
	ErrAttachmentInvalid: "附件不合法",

	// 数据库相关错误码
	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",

	// 邮件相关错误码
	ErrEmailConfigNotFound: "邮件配置不存在",
	ErrEmailSendFailed:     "邮件发送失败",

	// 备份相关错误码
	ErrBackupFailed:   "备份失败",
	ErrBackupNotFound: "备份文件不存在",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:          StatusOK,
	ErrUnknown:          StatusInternalServerError,
	ErrBind:             StatusBadRequest,
	ErrValidation:       StatusBadRequest,
	ErrTokenInvalid:     StatusUnauthorized,
	ErrPermissionDenied: StatusForbidden,
	ErrTooManyRequests:  StatusTooManyRequests,

	// 账户相关错误码
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,

	// 变电站相关错误码
	ErrSubstationNotFound:     StatusNotFound,
	ErrSubstationAlreadyExist: StatusBadRequest,
	ErrSubstationRequired:     StatusBadRequest,

	// 技术员与基础数据错误码
	ErrTechnicianNotFound:     StatusNotFound,
	ErrTechnicianAlreadyExist: StatusBadRequest,
	ErrReferenceNotFound:      StatusNotFound,
	ErrReferenceAlreadyExist:  StatusBadRequest,

	// 日志条目相关错误码
	ErrEntryNotFound:     StatusNotFound,
	ErrEditWindowExpired: StatusForbidden,
	ErrCommentNotFound:   StatusNotFound,
	ErrCommentNotOwned:   StatusForbidden,
	ErrAttachmentInvalid: StatusBadRequest,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,

	// 邮件相关错误码
	ErrEmailConfigNotFound: StatusNotFound,
	ErrEmailSendFailed:     StatusInternalServerError,

	// 备份相关错误码
	ErrBackupFailed:   StatusInternalServerError,
	ErrBackupNotFound: StatusNotFound,
}
