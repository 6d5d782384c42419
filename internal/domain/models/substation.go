package models

// Substation represents an electrical substation (also a login principal)
type Substation struct {
	BaseModel
	SubstationCode    string `gorm:"type:varchar(20);unique;not null" json:"substation_code"`
	SubstationName    string `gorm:"type:varchar(100);not null" json:"substation_name"`
	Location          string `gorm:"type:varchar(200)" json:"location"`
	VoltageLevel      string `gorm:"type:varchar(50)" json:"voltage_level"`
	InstalledCapacity string `gorm:"type:varchar(50)" json:"installed_capacity"`
	ContactInfo       string `gorm:"type:varchar(200)" json:"contact_info"`
	PasswordHash      string `gorm:"type:varchar(100);not null" json:"-"`
	IsActive          bool   `gorm:"default:true" json:"is_active"`

	// Relations - 关联关系
	Technicians []Technician `gorm:"foreignKey:SubstationID" json:"technicians,omitempty"`
	LogEntries  []LogEntry   `gorm:"foreignKey:SubstationID" json:"log_entries,omitempty"`
}
