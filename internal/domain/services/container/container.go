package container

import (
	"sync"

	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/services"
	"github.com/banuch/logbook/internal/infrastructure/config"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config

	// 基础服务
	jwtService services.InterfaceJWTService

	// 业务服务
	substationService services.InterfaceSubstationService
	userService       services.InterfaceUserService
	technicianService services.InterfaceTechnicianService
	referenceService  services.InterfaceReferenceService
	logbookService    services.InterfaceLogbookService
	commentService    services.InterfaceCommentService
	reportService     services.InterfaceReportService
	exportService     services.InterfaceExportService

	// 基础设施服务
	emailService  services.InterfaceEmailService
	backupService services.InterfaceBackupService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config, c.db)

	// 邮件服务先初始化，日志服务的通知依赖它
	c.emailService = services.NewEmailService(c.db, c.config)

	// 初始化业务服务
	c.substationService = services.NewSubstationService(c.db, c.config)
	c.userService = services.NewUserService(c.db, c.config)
	c.technicianService = services.NewTechnicianService(c.db, c.config)
	c.referenceService = services.NewReferenceService(c.db, c.config)
	c.logbookService = services.NewLogbookService(c.db, c.config, c.emailService)
	c.commentService = services.NewCommentService(c.db)
	c.reportService = services.NewReportService(c.db)
	c.exportService = services.NewExportService(c.logbookService)

	// 初始化备份服务
	c.backupService = services.NewBackupService(c.db, c.config)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "substation":
		return c.substationService
	case "user":
		return c.userService
	case "technician":
		return c.technicianService
	case "reference":
		return c.referenceService
	case "logbook":
		return c.logbookService
	case "comment":
		return c.commentService
	case "report":
		return c.reportService
	case "export":
		return c.exportService
	case "email":
		return c.emailService
	case "backup":
		return c.backupService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
