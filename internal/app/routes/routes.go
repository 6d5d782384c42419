package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/app/controllers"
	"github.com/banuch/logbook/internal/app/middleware"
	"github.com/banuch/logbook/internal/domain/services/container"
	"github.com/banuch/logbook/internal/infrastructure/config"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *container.ServiceContainer) {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// 附件静态访问
	r.Static("/uploads", cfg.UploadDir)

	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg)
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg, db)

	// 注册路由
	registerRoutes(r, db, serviceContainer)
	return r, serviceContainer
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	db *gorm.DB,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group("/api")

	// 设置响应头为JSON并指定字符集，文件下载接口自行覆盖
	api.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Next()
	})

	// 注册公共路由
	registerPublicRoutes(api, db, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
	// 注册仅管理员可用的路由
	registerAdminRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	db *gorm.DB,
	container *container.ServiceContainer,
) {
	// 添加IP限流中间件 - 每秒允许10个请求，最多突发20个请求
	api.Use(middleware.IPRateLimiter(10, 20))

	// 健康检查路由
	healthController := controllers.NewHealthCheckController(db)
	api.GET("/ping", healthController.Ping)
	api.GET("/health", healthController.Ping) // 兼容Docker健康检查

	// 认证路由，登录接口单独收紧限流
	authGroup := api.Group("/auth")
	authGroup.POST("/login", middleware.LoginRateLimiter(), controllers.HandleAuthFunc(container, "login"))
	authGroup.POST("/substation-login", middleware.LoginRateLimiter(), controllers.HandleAuthFunc(container, "substationLogin"))
}

// registerAuthenticatedRoutes 注册任意已登录主体可用的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	auth := api.Group("/")
	auth.Use(middleware.Authentication())

	// 添加通用限流中间件 - 每秒30个请求，最多突发50个请求
	auth.Use(middleware.IPRateLimiter(30, 50))

	// 认证辅助路由
	auth.GET("/auth/verify", controllers.HandleAuthFunc(container, "verify"))
	auth.POST("/auth/logout", controllers.HandleAuthFunc(container, "logout"))

	// 日志条目路由
	entryGroup := auth.Group("/logbook/entries")
	entryGroup.GET("", controllers.HandleLogbookFunc(container, "searchEntries"))
	entryGroup.GET("/:id", controllers.HandleLogbookFunc(container, "getEntry"))
	entryGroup.POST("", controllers.HandleLogbookFunc(container, "createEntry"))
	entryGroup.PUT("/:id", controllers.HandleLogbookFunc(container, "updateEntry"))
	entryGroup.DELETE("/:id", controllers.HandleLogbookFunc(container, "deleteEntry"))

	// 评论读取对全部主体开放
	entryGroup.GET("/:id/comments", controllers.HandleCommentFunc(container, "getComments"))

	// 技术员花名册路由
	technicianGroup := auth.Group("/technicians")
	technicianGroup.GET("/:substation_id", controllers.HandleTechnicianFunc(container, "getTechnicians"))
	technicianGroup.POST("", controllers.HandleTechnicianFunc(container, "createTechnician"))
	technicianGroup.PUT("/:id", controllers.HandleTechnicianFunc(container, "updateTechnician"))
	technicianGroup.DELETE("/:id", controllers.HandleTechnicianFunc(container, "deleteTechnician"))

	// 基础数据路由，读取对全部主体开放
	auth.GET("/equipment", controllers.HandleReferenceFunc(container, "getEquipmentTypes"))
	auth.GET("/categories", controllers.HandleReferenceFunc(container, "getEventCategories"))

	// 报表与导出路由
	reportGroup := auth.Group("/reports")
	reportGroup.GET("/daily-summary", controllers.HandleReportFunc(container, "getDailySummary"))
	reportGroup.GET("/monthly-summary", controllers.HandleReportFunc(container, "getMonthlySummary"))
	reportGroup.POST("/export-excel", controllers.HandleLogbookFunc(container, "exportExcel"))
	reportGroup.POST("/export-pdf", controllers.HandleLogbookFunc(container, "exportPDF"))

	// 评论写路由仅对工程师开放
	engineer := api.Group("/")
	engineer.Use(middleware.AuthenticateEngineer())
	engineer.POST("/logbook/entries/:id/comments", controllers.HandleCommentFunc(container, "createComment"))
	engineer.PUT("/logbook/comments/:comment_id", controllers.HandleCommentFunc(container, "updateComment"))
	engineer.DELETE("/logbook/comments/:comment_id", controllers.HandleCommentFunc(container, "deleteComment"))
}

// registerAdminRoutes 注册仅管理员可用的路由
func registerAdminRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	admin := api.Group("/")
	admin.Use(middleware.AuthenticateAdmin())
	admin.Use(middleware.IPRateLimiter(30, 50))

	// 变电站路由
	substationGroup := admin.Group("/substations")
	substationGroup.GET("", controllers.HandleSubstationFunc(container, "getSubstations"))
	substationGroup.GET("/:id", controllers.HandleSubstationFunc(container, "getSubstation"))
	substationGroup.POST("", controllers.HandleSubstationFunc(container, "createSubstation"))
	substationGroup.PUT("/:id", controllers.HandleSubstationFunc(container, "updateSubstation"))
	substationGroup.PATCH("/:id/toggle-status", controllers.HandleSubstationFunc(container, "toggleSubstationStatus"))

	// 职员账户路由
	userGroup := admin.Group("/users")
	userGroup.GET("", controllers.HandleUserFunc(container, "getUsers"))
	userGroup.POST("", controllers.HandleUserFunc(container, "createUser"))
	userGroup.PUT("/:id", controllers.HandleUserFunc(container, "updateUser"))
	userGroup.PATCH("/:id/toggle-status", controllers.HandleUserFunc(container, "toggleUserStatus"))

	// 基础数据写路由
	admin.POST("/equipment", controllers.HandleReferenceFunc(container, "createEquipmentType"))
	admin.DELETE("/equipment/:id", controllers.HandleReferenceFunc(container, "deleteEquipmentType"))
	admin.POST("/categories", controllers.HandleReferenceFunc(container, "createEventCategory"))
	admin.DELETE("/categories/:id", controllers.HandleReferenceFunc(container, "deleteEventCategory"))

	// 邮件配置路由
	emailGroup := admin.Group("/email-config")
	emailGroup.GET("", controllers.HandleAdminFunc(container, "getEmailConfig"))
	emailGroup.POST("", controllers.HandleAdminFunc(container, "updateEmailConfig"))
	emailGroup.POST("/test", controllers.HandleAdminFunc(container, "sendTestEmail"))

	// 备份路由
	backupGroup := admin.Group("/backup")
	backupGroup.POST("/manual", controllers.HandleAdminFunc(container, "runBackup"))
	backupGroup.GET("/history", controllers.HandleAdminFunc(container, "getBackupHistory"))
	backupGroup.GET("/download/:filename", controllers.HandleAdminFunc(container, "downloadBackup"))
}
