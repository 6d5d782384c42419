package models

import "time"

// BackupType 备份类型
type BackupType string

const (
	BackupTypeManual    BackupType = "manual"
	BackupTypeAutomatic BackupType = "automatic"
)

// BackupStatus 备份状态
type BackupStatus string

const (
	BackupStatusSuccess BackupStatus = "success"
	BackupStatusFailed  BackupStatus = "failed"
)

// BackupRecord 备份审计行，只追加，由保留策略清理
type BackupRecord struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	BackupFilename string       `gorm:"type:varchar(200);not null" json:"backup_filename"`
	BackupPath     string       `gorm:"type:varchar(500)" json:"backup_path"`
	BackupSizeMB   float64      `gorm:"type:decimal(10,2)" json:"backup_size_mb"`
	BackupType     BackupType   `gorm:"type:varchar(20);not null" json:"backup_type"`
	Status         BackupStatus `gorm:"type:varchar(20);not null" json:"status"`
	ErrorMessage   string       `gorm:"type:text" json:"error_message"`
	CreatedBy      *uint        `json:"created_by"`
	CreatedAt      time.Time    `json:"created_at"`
}

// TableName 指定表名
func (BackupRecord) TableName() string {
	return "backup_history"
}
