package models

import "time"

// UserRole 用户角色
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleEngineer UserRole = "engineer"
	// RoleSubstation 变电站账户登录后持有的角色，不对应users表中的行
	RoleSubstation UserRole = "substation"
)

// User represents admin and engineer accounts
// 管理员不绑定变电站；工程师必须绑定唯一一个变电站
type User struct {
	BaseModel
	Username     string     `gorm:"type:varchar(50);unique;not null" json:"username"`
	PasswordHash string     `gorm:"type:varchar(100);not null" json:"-"`
	FullName     string     `gorm:"type:varchar(100);not null" json:"full_name"`
	Email        string     `gorm:"type:varchar(100);unique;not null" json:"email"`
	Phone        string     `gorm:"type:varchar(20)" json:"phone"`
	EmployeeID   string     `gorm:"type:varchar(50);unique" json:"employee_id"`
	Role         UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	SubstationID *uint      `json:"substation_id"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`

	// Relations - 关联关系
	Substation *Substation `gorm:"foreignKey:SubstationID" json:"substation,omitempty"`
	Comments   []Comment   `gorm:"foreignKey:UserID" json:"comments,omitempty"`
}
