package services

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/infrastructure/config"
	Logger "github.com/banuch/logbook/pkg/logger"
)

// InterfaceBackupService defines the backup service interface
type InterfaceBackupService interface {
	RunBackup(backupType models.BackupType, createdBy *uint) (*models.BackupRecord, error)
	GetBackupHistory(limit int) ([]BackupHistoryRow, error)
	ResolveBackupFile(filename string) (string, error)
	StartScheduler() error
	StopScheduler()
}

// BackupService mysqldump备份与保留策略
type BackupService struct {
	DB     *gorm.DB
	Config *config.Config

	cron    *cron.Cron
	running sync.Mutex // 同一时刻最多一个备份在跑
}

// NewBackupService 创建一个新的备份服务
func NewBackupService(db *gorm.DB, cfg *config.Config) InterfaceBackupService {
	return &BackupService{DB: db, Config: cfg}
}

// 1 RunBackup 执行一次数据库备份
// 失败同样落备份历史表，供管理页排查
func (s *BackupService) RunBackup(backupType models.BackupType, createdBy *uint) (*models.BackupRecord, error) {
	if !s.running.TryLock() {
		return nil, fmt.Errorf("已有备份任务在执行")
	}
	defer s.running.Unlock()

	if err := os.MkdirAll(s.Config.BackupDir, 0755); err != nil {
		return nil, fmt.Errorf("创建备份目录失败: %w", err)
	}

	filename := fmt.Sprintf("backup-%s.sql", time.Now().Format("2006-01-02-150405"))
	fullPath := filepath.Join(s.Config.BackupDir, filename)

	record := models.BackupRecord{
		BackupFilename: filename,
		BackupPath:     fullPath,
		BackupType:     backupType,
		Status:         models.BackupStatusSuccess,
		CreatedBy:      createdBy,
	}

	if err := s.dump(fullPath); err != nil {
		Logger.Error("数据库备份失败: %v", err)
		record.Status = models.BackupStatusFailed
		record.ErrorMessage = err.Error()
		os.Remove(fullPath)
	} else if info, statErr := os.Stat(fullPath); statErr == nil {
		record.BackupSizeMB = float64(info.Size()) / (1024 * 1024)
	}

	if err := s.DB.Create(&record).Error; err != nil {
		return nil, err
	}

	if record.Status == models.BackupStatusSuccess {
		Logger.Info("数据库备份完成: %s (%.2f MB)", filename, record.BackupSizeMB)
		s.pruneOldBackups()
	}
	return &record, nil
}

// dump 调用mysqldump导出数据库
func (s *BackupService) dump(fullPath string) error {
	outFile, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("创建备份文件失败: %w", err)
	}
	defer outFile.Close()

	cmd := exec.Command("mysqldump",
		"-h", s.Config.DBHost,
		"-P", s.Config.DBPort,
		"-u", s.Config.DBUser,
		"--single-transaction",
		"--routines",
		"--triggers",
		s.Config.DBName,
	)
	// 密码走环境变量，避免出现在进程列表里
	cmd.Env = append(os.Environ(), "MYSQL_PWD="+s.Config.DBPassword)
	cmd.Stdout = outFile

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mysqldump执行失败: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// pruneOldBackups 删除超过保留期的备份文件及其历史行
func (s *BackupService) pruneOldBackups() {
	cutoff := time.Now().AddDate(0, 0, -s.Config.BackupRetentionDays)

	var expired []models.BackupRecord
	if err := s.DB.Where("created_at < ?", cutoff).Find(&expired).Error; err != nil {
		Logger.Error("查询过期备份失败: %v", err)
		return
	}

	for _, record := range expired {
		if record.BackupPath != "" {
			if err := os.Remove(record.BackupPath); err != nil && !os.IsNotExist(err) {
				Logger.Warning("删除过期备份文件失败: %s: %v", record.BackupPath, err)
			}
		}
		if err := s.DB.Delete(&models.BackupRecord{}, record.ID).Error; err != nil {
			Logger.Error("删除过期备份记录失败: id=%d: %v", record.ID, err)
		}
	}

	if len(expired) > 0 {
		Logger.Info("已清理%d个过期备份", len(expired))
	}
}

// BackupHistoryRow 备份历史行，附带触发者姓名（自动备份为空）
type BackupHistoryRow struct {
	ID             uint                `json:"id"`
	BackupFilename string              `json:"backup_filename"`
	BackupSizeMB   float64             `json:"backup_size_mb"`
	BackupType     models.BackupType   `json:"backup_type"`
	Status         models.BackupStatus `json:"status"`
	ErrorMessage   string              `json:"error_message"`
	CreatedBy      *uint               `json:"created_by"`
	CreatedByName  string              `json:"created_by_name"`
	CreatedAt      time.Time           `json:"created_at"`
}

// 2 GetBackupHistory 获取最近的备份历史
func (s *BackupService) GetBackupHistory(limit int) ([]BackupHistoryRow, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var records []BackupHistoryRow
	err := s.DB.Table("backup_history b").
		Select("b.id, b.backup_filename, b.backup_size_mb, b.backup_type, b.status, b.error_message, b.created_by, b.created_at, u.full_name AS created_by_name").
		Joins("LEFT JOIN users u ON b.created_by = u.id").
		Order("b.created_at DESC").Limit(limit).
		Scan(&records).Error
	return records, err
}

// 3 ResolveBackupFile 把备份文件名解析为可下载的文件路径
// 只认备份历史表中成功的记录，带路径分隔符的文件名直接拒绝
func (s *BackupService) ResolveBackupFile(filename string) (string, error) {
	if filename == "" || filepath.Base(filename) != filename {
		return "", ErrBackupNotFound
	}

	var record models.BackupRecord
	if err := s.DB.Where("backup_filename = ?", filename).First(&record).Error; err != nil {
		return "", ErrBackupNotFound
	}
	if record.Status != models.BackupStatusSuccess {
		return "", ErrBackupNotFound
	}
	if _, err := os.Stat(record.BackupPath); err != nil {
		return "", ErrBackupNotFound
	}
	return record.BackupPath, nil
}

// 4 StartScheduler 启动自动备份调度
func (s *BackupService) StartScheduler() error {
	if s.cron != nil {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(s.Config.BackupSchedule, func() {
		if _, err := s.RunBackup(models.BackupTypeAutomatic, nil); err != nil {
			Logger.Error("定时备份失败: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("备份调度表达式无效: %q: %w", s.Config.BackupSchedule, err)
	}

	c.Start()
	s.cron = c
	Logger.Info("自动备份已启动: %s, 保留%d天", s.Config.BackupSchedule, s.Config.BackupRetentionDays)
	return nil
}

// 5 StopScheduler 停止自动备份调度
func (s *BackupService) StopScheduler() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}
