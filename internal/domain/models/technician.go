package models

// Technician represents a substation technician
// 软删除：一旦被历史记录引用便不再物理删除
type Technician struct {
	BaseModel
	SubstationID  uint   `gorm:"not null;uniqueIndex:idx_substation_employee" json:"substation_id"`
	Name          string `gorm:"type:varchar(100);not null" json:"name"`
	EmployeeID    string `gorm:"type:varchar(50);not null;uniqueIndex:idx_substation_employee" json:"employee_id"`
	ContactNumber string `gorm:"type:varchar(20)" json:"contact_number"`
	Email         string `gorm:"type:varchar(100)" json:"email"`
	Designation   string `gorm:"type:varchar(100)" json:"designation"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`

	// Relations - 关联关系
	Substation *Substation `gorm:"foreignKey:SubstationID" json:"substation,omitempty"`
}
