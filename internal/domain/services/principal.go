package services

import "github.com/banuch/logbook/internal/domain/models"

// PrincipalKind 请求主体类型，封闭集合
type PrincipalKind string

const (
	PrincipalAdmin      PrincipalKind = "admin"
	PrincipalEngineer   PrincipalKind = "engineer"
	PrincipalSubstation PrincipalKind = "substation"
)

// Principal 已认证的请求主体
// 工程师和变电站主体在构造时即绑定变电站，消除运行期的空值判断
type Principal struct {
	Kind         PrincipalKind
	ID           uint
	SubstationID uint // Kind为admin时无意义
}

// AdminPrincipal 管理员主体，不绑定变电站
func AdminPrincipal(id uint) Principal {
	return Principal{Kind: PrincipalAdmin, ID: id}
}

// EngineerPrincipal 工程师主体，永远携带所属变电站
func EngineerPrincipal(id, substationID uint) Principal {
	return Principal{Kind: PrincipalEngineer, ID: id, SubstationID: substationID}
}

// SubstationPrincipal 变电站账户主体，ID即变电站ID
func SubstationPrincipal(substationID uint) Principal {
	return Principal{Kind: PrincipalSubstation, ID: substationID, SubstationID: substationID}
}

// Scoped 是否被限定在单一变电站内
func (p Principal) Scoped() bool {
	return p.Kind != PrincipalAdmin
}

// Role 对应的用户角色字符串
func (p Principal) Role() models.UserRole {
	switch p.Kind {
	case PrincipalAdmin:
		return models.RoleAdmin
	case PrincipalEngineer:
		return models.RoleEngineer
	default:
		return models.RoleSubstation
	}
}
