package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/infrastructure/config"
	"github.com/banuch/logbook/pkg/utils"
)

// InterfaceSubstationService defines the substation service interface
type InterfaceSubstationService interface {
	GetAllSubstations() ([]models.Substation, error)
	GetSubstationByID(id uint) (*models.Substation, error)
	CreateSubstation(substation *models.Substation, password string) error
	UpdateSubstation(id uint, updates map[string]interface{}, password string) (*models.Substation, error)
	ToggleSubstationStatus(id uint) error
}

// SubstationService 提供变电站相关的服务
type SubstationService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewSubstationService 创建一个新的变电站服务
func NewSubstationService(db *gorm.DB, cfg *config.Config) InterfaceSubstationService {
	return &SubstationService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllSubstations 获取所有变电站，按名称排序
func (s *SubstationService) GetAllSubstations() ([]models.Substation, error) {
	var substations []models.Substation
	if err := s.DB.Order("substation_name").Find(&substations).Error; err != nil {
		return nil, err
	}
	return substations, nil
}

// 2 GetSubstationByID 根据ID获取变电站
func (s *SubstationService) GetSubstationByID(id uint) (*models.Substation, error) {
	var substation models.Substation
	if err := s.DB.First(&substation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &substation, nil
}

// 3 CreateSubstation 创建新变电站
func (s *SubstationService) CreateSubstation(substation *models.Substation, password string) error {
	// 验证编码唯一性
	var count int64
	if err := s.DB.Model(&models.Substation{}).Where("substation_code = ?", substation.SubstationCode).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	substation.PasswordHash = hashedPassword
	substation.IsActive = true

	return s.DB.Create(substation).Error
}

// 4 UpdateSubstation 更新变电站信息，password非空时重置密码
func (s *SubstationService) UpdateSubstation(id uint, updates map[string]interface{}, password string) (*models.Substation, error) {
	substation, err := s.GetSubstationByID(id)
	if err != nil {
		return nil, err
	}

	if password != "" {
		hashedPassword, err := utils.HashPassword(password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hashedPassword
	}

	if err := s.DB.Model(substation).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetSubstationByID(id)
}

// 5 ToggleSubstationStatus 启用/停用变电站
func (s *SubstationService) ToggleSubstationStatus(id uint) error {
	substation, err := s.GetSubstationByID(id)
	if err != nil {
		return err
	}
	return s.DB.Model(substation).Update("is_active", !substation.IsActive).Error
}
