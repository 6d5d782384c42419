package models

// EquipmentType 全局设备类型，软删除
type EquipmentType struct {
	BaseModel
	EquipmentName string `gorm:"type:varchar(100);unique;not null" json:"equipment_name"`
	Description   string `gorm:"type:varchar(500)" json:"description"`
	CreatedBy     *uint  `json:"created_by"`
	IsActive      bool   `gorm:"default:true" json:"is_active"`
}

// EventCategory 全局事件类别，软删除
type EventCategory struct {
	BaseModel
	CategoryName string `gorm:"type:varchar(100);unique;not null" json:"category_name"`
	Description  string `gorm:"type:varchar(500)" json:"description"`
	CreatedBy    *uint  `json:"created_by"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}
