package models

// EmailConfig SMTP配置，同一时刻仅一条激活
type EmailConfig struct {
	BaseModel
	SMTPHost     string `gorm:"type:varchar(100);not null" json:"smtp_host"`
	SMTPPort     int    `gorm:"not null" json:"smtp_port"`
	SMTPSecure   bool   `gorm:"default:false" json:"smtp_secure"`
	SMTPUser     string `gorm:"type:varchar(100)" json:"smtp_user"`
	SMTPPassword string `gorm:"type:varchar(200)" json:"-"`
	FromEmail    string `gorm:"type:varchar(100)" json:"from_email"`
	FromName     string `gorm:"type:varchar(100)" json:"from_name"`
	UpdatedBy    *uint  `json:"updated_by"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}

// TableName 指定表名
func (EmailConfig) TableName() string {
	return "email_config"
}
