package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/infrastructure/config"
	"github.com/banuch/logbook/pkg/utils"
)

// InterfaceUserService defines the user service interface
type InterfaceUserService interface {
	GetAllUsers() ([]models.User, error)
	GetUserByID(id uint) (*models.User, error)
	CreateUser(user *models.User, password string) error
	UpdateUser(id uint, updates map[string]interface{}, password string) (*models.User, error)
	ToggleUserStatus(id uint) error
}

// UserService 提供职员账户相关的服务
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewUserService 创建一个新的职员账户服务
func NewUserService(db *gorm.DB, cfg *config.Config) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllUsers 获取所有职员账户，带所属变电站
func (s *UserService) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Preload("Substation").Order("full_name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// 2 GetUserByID 根据ID获取职员账户
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

// 3 CreateUser 创建新职员账户
// 不变量：工程师必须绑定变电站，管理员不绑定
func (s *UserService) CreateUser(user *models.User, password string) error {
	// 验证用户名/邮箱/工号唯一性
	var count int64
	if err := s.DB.Model(&models.User{}).
		Where("username = ? OR email = ? OR (employee_id = ? AND employee_id != '')",
			user.Username, user.Email, user.EmployeeID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	// 管理员不携带变电站引用
	if user.Role == models.RoleAdmin {
		user.SubstationID = nil
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hashedPassword
	user.IsActive = true

	return s.DB.Create(user).Error
}

// 4 UpdateUser 更新职员账户信息，password非空时重置密码
func (s *UserService) UpdateUser(id uint, updates map[string]interface{}, password string) (*models.User, error) {
	user, err := s.GetUserByID(id)
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

	if err := s.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.GetUserByID(id)
}

// 5 ToggleUserStatus 启用/停用职员账户
func (s *UserService) ToggleUserStatus(id uint) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}
	return s.DB.Model(user).Update("is_active", !user.IsActive).Error
}
