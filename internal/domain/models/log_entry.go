package models

import "time"

// Severity 条目严重等级
type Severity string

const (
	SeverityNormal   Severity = "Normal"
	SeverityWarning  Severity = "Warning"
	SeverityCritical Severity = "Critical"
)

// PostedByType 条目发布者类型
type PostedByType string

const (
	// PostedBySubstation 变电站账户以自身身份发布
	PostedBySubstation PostedByType = "substation"
	// PostedByEngineer 工程师以自身身份发布
	PostedByEngineer PostedByType = "engineer"
	// PostedByTechnician 管理员代技术员发布，无具体作者
	PostedByTechnician PostedByType = "technician"
)

// LogEntry represents a logbook entry
// EntryDatetime 为操作员填写的事件时间；CreatedAt 为系统写入时间，
// 24小时编辑窗口以 CreatedAt 为基准
type LogEntry struct {
	ID                    uint         `gorm:"primaryKey" json:"id"`
	SubstationID          uint         `gorm:"not null;index" json:"substation_id"`
	EntryDatetime         time.Time    `gorm:"not null;index" json:"entry_datetime"`
	EventCategoryID       *uint        `json:"event_category_id"`
	EquipmentID           *uint        `json:"equipment_id"`
	Severity              Severity     `gorm:"type:varchar(20);not null;default:'Normal'" json:"severity"`
	Message               string       `gorm:"type:text;not null" json:"message"`
	AttachmentPath        string       `gorm:"type:varchar(255)" json:"attachment_path"`
	PostedByType          PostedByType `gorm:"type:varchar(20);not null" json:"posted_by_type"`
	PostedByID            *uint        `json:"posted_by_id"`
	SendEmailNotification bool         `gorm:"default:false" json:"send_email_notification"`
	EmailSent             bool         `gorm:"default:false" json:"email_sent"`
	EmailSentAt           *time.Time   `json:"email_sent_at"`
	IsEdited              bool         `gorm:"default:false" json:"is_edited"`
	LastEditedAt          *time.Time   `json:"last_edited_at"`
	CreatedAt             time.Time    `json:"created_at"`

	// Relations - 关联关系
	Substation    *Substation           `gorm:"foreignKey:SubstationID" json:"substation,omitempty"`
	EventCategory *EventCategory        `gorm:"foreignKey:EventCategoryID" json:"event_category,omitempty"`
	Equipment     *EquipmentType        `gorm:"foreignKey:EquipmentID" json:"equipment,omitempty"`
	Technicians   []Technician          `gorm:"many2many:log_technicians;" json:"technicians,omitempty"`
	Parameters    *ElectricalParameters `gorm:"foreignKey:LogID" json:"parameters,omitempty"`
	Comments      []Comment             `gorm:"foreignKey:LogID" json:"comments,omitempty"`
}

// TableName 指定表名
func (LogEntry) TableName() string {
	return "logbook_entries"
}

// LogTechnician 条目与技术员的关联行
type LogTechnician struct {
	LogID        uint `gorm:"primaryKey" json:"log_id"`
	TechnicianID uint `gorm:"primaryKey" json:"technician_id"`
}

// TableName 指定表名
func (LogTechnician) TableName() string {
	return "log_technicians"
}

// ElectricalParameters 条目的电气参数，与条目1:1，编辑时整体替换
type ElectricalParameters struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	LogID       uint     `gorm:"not null;uniqueIndex" json:"log_id"`
	VoltageKV   *float64 `gorm:"type:decimal(10,2)" json:"voltage_kv"`
	CurrentA    *float64 `gorm:"type:decimal(10,2)" json:"current_a"`
	PowerMW     *float64 `gorm:"type:decimal(10,2)" json:"power_mw"`
	FrequencyHz *float64 `gorm:"type:decimal(6,3)" json:"frequency_hz"`
	PowerFactor *float64 `gorm:"type:decimal(4,3)" json:"power_factor"`
	EnergyMWH   *float64 `gorm:"type:decimal(12,3)" json:"energy_mwh"`
}

// TableName 指定表名
func (ElectricalParameters) TableName() string {
	return "electrical_parameters"
}

// HasValue 是否至少携带一个电气读数
func (p *ElectricalParameters) HasValue() bool {
	return p.VoltageKV != nil || p.CurrentA != nil || p.PowerMW != nil ||
		p.FrequencyHz != nil || p.PowerFactor != nil || p.EnergyMWH != nil
}
