package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/infrastructure/config"
	"github.com/banuch/logbook/pkg/utils"
)

// InterfaceJWTService 定义JWT服务接口
type InterfaceJWTService interface {
	GenerateToken(userID uint, role models.UserRole, substationID *uint) (string, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	ExtractClaims(tokenString string) (*JWTClaims, error)
	Login(username, password string) (*LoginResult, error)
	SubstationLogin(substationCode, password string) (*SubstationLoginResult, error)
}

// LoginResult 表示职员登录结果
type LoginResult struct {
	Token        string          `json:"token"`
	UserID       uint            `json:"user_id"`
	Username     string          `json:"username"`
	FullName     string          `json:"full_name"`
	Email        string          `json:"email"`
	Role         models.UserRole `json:"role"`
	SubstationID *uint           `json:"substation_id"`
}

// SubstationLoginResult 表示变电站账户登录结果
type SubstationLoginResult struct {
	Token          string `json:"token"`
	SubstationID   uint   `json:"substation_id"`
	SubstationCode string `json:"substation_code"`
	SubstationName string `json:"substation_name"`
	Role           string `json:"role"`
}

// JWTService 提供JWT相关服务
type JWTService struct {
	secretKey string
	issuer    string
	expiresIn time.Duration
	DB        *gorm.DB
}

// JWTClaims 定义JWT令牌的声明结构
type JWTClaims struct {
	UserID       uint            `json:"user_id"`
	Role         models.UserRole `json:"role"`
	SubstationID *uint           `json:"substation_id,omitempty"` // 变电站范围，管理员为空
	jwt.RegisteredClaims
}

// NewJWTService 创建一个新的JWT服务
func NewJWTService(cfg *config.Config, db *gorm.DB) InterfaceJWTService {
	expires := time.Duration(cfg.JWTExpiresIn) * time.Hour
	if expires <= 0 {
		expires = 24 * time.Hour
	}
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    "substation-logbook",
		expiresIn: expires,
		DB:        db,
	}
}

// GenerateToken 生成JWT令牌
func (s *JWTService) GenerateToken(userID uint, role models.UserRole, substationID *uint) (string, error) {
	expirationTime := time.Now().Add(s.expiresIn)

	claims := &JWTClaims{
		UserID:       userID,
		Role:         role,
		SubstationID: substationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken 验证JWT令牌
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
}

// ExtractClaims 从令牌中提取声明
func (s *JWTService) ExtractClaims(tokenString string) (*JWTClaims, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	jwtClaims := &JWTClaims{}

	// 提取用户ID
	if userID, ok := claims["user_id"].(float64); ok {
		jwtClaims.UserID = uint(userID)
	}

	// 提取角色
	if role, ok := claims["role"].(string); ok {
		jwtClaims.Role = models.UserRole(role)
	}

	// 提取变电站范围（如果存在）
	if substationID, ok := claims["substation_id"].(float64); ok {
		sid := uint(substationID)
		jwtClaims.SubstationID = &sid
	}

	return jwtClaims, nil
}

// Login 处理管理员/工程师登录请求
func (s *JWTService) Login(username, password string) (*LoginResult, error) {
	var user models.User
	if err := s.DB.Where("username = ? AND is_active = ?", username, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	// 记录最近登录时间，失败不影响登录
	now := time.Now()
	s.DB.Model(&user).Update("last_login", now)

	token, err := s.GenerateToken(user.ID, user.Role, user.SubstationID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:        token,
		UserID:       user.ID,
		Username:     user.Username,
		FullName:     user.FullName,
		Email:        user.Email,
		Role:         user.Role,
		SubstationID: user.SubstationID,
	}, nil
}

// SubstationLogin 处理变电站账户登录请求
func (s *JWTService) SubstationLogin(substationCode, password string) (*SubstationLoginResult, error) {
	var substation models.Substation
	if err := s.DB.Where("substation_code = ? AND is_active = ?", substationCode, true).First(&substation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, substation.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	// 变电站账户的范围就是其自身ID
	sid := substation.ID
	token, err := s.GenerateToken(substation.ID, models.RoleSubstation, &sid)
	if err != nil {
		return nil, err
	}

	return &SubstationLoginResult{
		Token:          token,
		SubstationID:   substation.ID,
		SubstationCode: substation.SubstationCode,
		SubstationName: substation.SubstationName,
		Role:           string(models.RoleSubstation),
	}, nil
}
