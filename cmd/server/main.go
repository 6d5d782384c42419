// @title           Substation Logbook API
// @version         1.0
// @description     Multi-tenant digital logbook service for electrical substations

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer: ` prefix
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/app/routes"
	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/domain/services"
	"github.com/banuch/logbook/internal/infrastructure/config"
	"github.com/banuch/logbook/internal/infrastructure/database"
	Logger "github.com/banuch/logbook/pkg/logger"
)

func main() {
	// 设置最大处理器数量，提高并发性能
	runtime.GOMAXPROCS(runtime.NumCPU())

	// 初始化日志配置
	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("初始化日志配置失败: %v\n", err)
		os.Exit(1)
	}

	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		Logger.Warning("无法加载.env文件: %v", err)
		// 即使加载失败也继续执行，可能环境变量已经通过其他方式设置
	} else {
		Logger.Info("成功加载.env文件")
	}

	// 获取配置
	cfg := config.GetConfig()

	// 创建优化的数据库连接池
	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		log.Fatalf("无法创建数据库连接池: %v", err)
	}
	db := pool.GetDB()

	// 迁移表结构、视图和全文索引
	if err := autoMigrate(db); err != nil {
		log.Fatalf("自动迁移失败: %v", err)
	}

	// 确保系统中有管理员账户
	ensureAdminExists(db, cfg)

	// 确保附件与备份目录存在
	ensureDirectories(cfg)

	// 初始化路由和服务容器
	r, serviceContainer := routes.SetupRouter(db, cfg)

	// 启动自动备份调度
	backupService := serviceContainer.GetService("backup").(services.InterfaceBackupService)
	if err := backupService.StartScheduler(); err != nil {
		Logger.Error("启动备份调度失败: %v", err)
	}
	defer backupService.StopScheduler()

	port := cfg.ServerPort
	printSystemInfo(pool)

	// 监听所有接口(0.0.0.0)而不是只监听localhost
	Logger.Info("服务器启动在: http://0.0.0.0:%s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		Logger.Error("启动服务器失败: %v", err)
		os.Exit(1)
	}
}

// autoMigrate 自动迁移所有模型（只添加新列和新表）
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Substation{},
		&models.User{},
		&models.Technician{},
		&models.EquipmentType{},
		&models.EventCategory{},
		&models.LogEntry{},
		&models.LogTechnician{},
		&models.ElectricalParameters{},
		&models.Comment{},
		&models.EmailConfig{},
		&models.BackupRecord{},
	)
	if err != nil {
		return err
	}

	// 重建日汇总视图
	if err := db.Exec(models.DropDailySummaryViewSQL).Error; err != nil {
		log.Printf("删除旧视图失败: %v", err)
	}
	if err := db.Exec(models.DailySummaryViewSQL).Error; err != nil {
		return fmt.Errorf("创建日汇总视图失败: %w", err)
	}

	// message列的全文索引，仅MySQL支持，重复创建的报错可忽略
	if db.Dialector.Name() == "mysql" {
		if err := db.Exec("CREATE FULLTEXT INDEX idx_logbook_message ON logbook_entries(message)").Error; err != nil {
			log.Printf("创建全文索引失败(可能已存在): %v", err)
		}
	}

	fmt.Println("Database migration completed")
	return nil
}

// ensureAdminExists 确保系统中有管理员账户
func ensureAdminExists(db *gorm.DB, cfg *config.Config) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)

	if count == 0 {
		// 如果没有管理员，创建默认管理员
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("生成密码哈希失败: %v", err)
		}

		admin := models.User{
			Username:     "admin",
			PasswordHash: string(hashedPassword),
			FullName:     "System Administrator",
			Email:        "admin@localhost",
			Role:         models.RoleAdmin,
			IsActive:     true,
		}

		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("创建默认管理员失败: %v", err)
		}

		log.Println("已创建默认管理员账户")
	}
}

// ensureDirectories 创建附件与备份目录
func ensureDirectories(cfg *config.Config) {
	for _, dir := range []string{cfg.UploadDir, cfg.BackupDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("创建目录失败: %s: %v", dir, err)
		}
	}
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool) {
	// 打印数据库连接池信息
	stats, err := pool.Stats()
	if err == nil {
		log.Printf("数据库连接池状态: %+v", stats)
	}

	log.Printf("系统CPU核心数: %d", runtime.NumCPU())
	log.Printf("当前Go协程数: %d", runtime.NumGoroutine())
}
