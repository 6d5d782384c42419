package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/infrastructure/config"
)

// InterfaceTechnicianService defines the technician service interface
type InterfaceTechnicianService interface {
	GetTechniciansBySubstation(substationID uint) ([]models.Technician, error)
	GetTechnicianByID(id uint) (*models.Technician, error)
	CreateTechnician(technician *models.Technician) error
	UpdateTechnician(id uint, updates map[string]interface{}) (*models.Technician, error)
	DeleteTechnician(id uint) error
}

// TechnicianService 提供技术员相关的服务
type TechnicianService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewTechnicianService 创建一个新的技术员服务
func NewTechnicianService(db *gorm.DB, cfg *config.Config) InterfaceTechnicianService {
	return &TechnicianService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetTechniciansBySubstation 获取某个变电站的在册技术员，按姓名排序
func (s *TechnicianService) GetTechniciansBySubstation(substationID uint) ([]models.Technician, error) {
	var technicians []models.Technician
	if err := s.DB.Where("substation_id = ? AND is_active = ?", substationID, true).
		Order("name").Find(&technicians).Error; err != nil {
		return nil, err
	}
	return technicians, nil
}

// 2 GetTechnicianByID 根据ID获取技术员
func (s *TechnicianService) GetTechnicianByID(id uint) (*models.Technician, error) {
	var technician models.Technician
	if err := s.DB.First(&technician, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &technician, nil
}

// 3 CreateTechnician 创建新技术员
// 工号在同一变电站内唯一，所属变电站创建后不再改变
func (s *TechnicianService) CreateTechnician(technician *models.Technician) error {
	var count int64
	if err := s.DB.Model(&models.Technician{}).
		Where("substation_id = ? AND employee_id = ?", technician.SubstationID, technician.EmployeeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	technician.IsActive = true
	return s.DB.Create(technician).Error
}

// 4 UpdateTechnician 更新技术员信息（不允许改变所属变电站和工号）
func (s *TechnicianService) UpdateTechnician(id uint, updates map[string]interface{}) (*models.Technician, error) {
	technician, err := s.GetTechnicianByID(id)
	if err != nil {
		return nil, err
	}

	delete(updates, "substation_id")
	delete(updates, "employee_id")

	if err := s.DB.Model(technician).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetTechnicianByID(id)
}

// 5 DeleteTechnician 删除技术员（软删除，历史记录仍可引用）
func (s *TechnicianService) DeleteTechnician(id uint) error {
	technician, err := s.GetTechnicianByID(id)
	if err != nil {
		return err
	}
	return s.DB.Model(technician).Update("is_active", false).Error
}
