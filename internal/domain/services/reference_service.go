package services

import (
	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/infrastructure/config"
)

// InterfaceReferenceService defines the reference data service interface
// 管理设备类型与事件类别两张全局查找表
type InterfaceReferenceService interface {
	GetEquipmentTypes() ([]models.EquipmentType, error)
	CreateEquipmentType(equipment *models.EquipmentType) error
	DeleteEquipmentType(id uint) error
	GetEventCategories() ([]models.EventCategory, error)
	CreateEventCategory(category *models.EventCategory) error
	DeleteEventCategory(id uint) error
}

// ReferenceService 提供基础数据相关的服务
type ReferenceService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewReferenceService 创建一个新的基础数据服务
func NewReferenceService(db *gorm.DB, cfg *config.Config) InterfaceReferenceService {
	return &ReferenceService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetEquipmentTypes 获取所有在用设备类型，按名称排序
func (s *ReferenceService) GetEquipmentTypes() ([]models.EquipmentType, error) {
	var equipment []models.EquipmentType
	if err := s.DB.Where("is_active = ?", true).Order("equipment_name").Find(&equipment).Error; err != nil {
		return nil, err
	}
	return equipment, nil
}

// 2 CreateEquipmentType 创建设备类型
func (s *ReferenceService) CreateEquipmentType(equipment *models.EquipmentType) error {
	var count int64
	if err := s.DB.Model(&models.EquipmentType{}).
		Where("equipment_name = ?", equipment.EquipmentName).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	equipment.IsActive = true
	return s.DB.Create(equipment).Error
}

// 3 DeleteEquipmentType 删除设备类型（软删除）
func (s *ReferenceService) DeleteEquipmentType(id uint) error {
	result := s.DB.Model(&models.EquipmentType{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// 4 GetEventCategories 获取所有在用事件类别，按名称排序
func (s *ReferenceService) GetEventCategories() ([]models.EventCategory, error) {
	var categories []models.EventCategory
	if err := s.DB.Where("is_active = ?", true).Order("category_name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// 5 CreateEventCategory 创建事件类别
func (s *ReferenceService) CreateEventCategory(category *models.EventCategory) error {
	var count int64
	if err := s.DB.Model(&models.EventCategory{}).
		Where("category_name = ?", category.CategoryName).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	category.IsActive = true
	return s.DB.Create(category).Error
}

// 6 DeleteEventCategory 删除事件类别（软删除）
func (s *ReferenceService) DeleteEventCategory(id uint) error {
	result := s.DB.Model(&models.EventCategory{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
