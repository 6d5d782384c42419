package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/services"
	"github.com/banuch/logbook/internal/infrastructure/config"
)

var jwtService services.InterfaceJWTService

// PrincipalKey 上下文中存放请求主体的键
const PrincipalKey = "principal"

// InitAuthMiddleware 初始化认证中间件
func InitAuthMiddleware(cfg *config.Config, db *gorm.DB) {
	jwtService = services.NewJWTService(cfg, db)
}

// extractToken 从授权头中提取token
func extractToken(authHeader string) string {
	// 检查并移除 "Bearer " 前缀
	if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return authHeader
}

// abortUnauthorized 以统一格式返回401
func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"code":    401,
		"message": message,
		"data":    nil,
	})
	c.Abort()
}

// abortForbidden 以统一格式返回403
func abortForbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, gin.H{
		"success": false,
		"code":    403,
		"message": message,
		"data":    nil,
	})
	c.Abort()
}

// parseClaims 验证请求的令牌并返回claims
func parseClaims(c *gin.Context) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		abortUnauthorized(c, "Authorization header is required")
		return nil, false
	}

	tokenString := extractToken(authHeader)
	token, err := jwtService.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		abortUnauthorized(c, "Invalid or expired token")
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		abortUnauthorized(c, "Invalid token claims")
		return nil, false
	}
	return claims, true
}

// principalFromClaims 由claims构造请求主体
func principalFromClaims(claims jwt.MapClaims) (services.Principal, bool) {
	role, _ := claims["role"].(string)
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return services.Principal{}, false
	}

	switch role {
	case "admin":
		return services.AdminPrincipal(uint(userID)), true
	case "engineer":
		sid, ok := claims["substation_id"].(float64)
		if !ok {
			return services.Principal{}, false
		}
		return services.EngineerPrincipal(uint(userID), uint(sid)), true
	case "substation":
		sid, ok := claims["substation_id"].(float64)
		if !ok {
			return services.Principal{}, false
		}
		return services.SubstationPrincipal(uint(sid)), true
	default:
		return services.Principal{}, false
	}
}

// storePrincipal 把主体和基础身份信息写入上下文
func storePrincipal(c *gin.Context, claims jwt.MapClaims, p services.Principal) {
	c.Set("userID", claims["user_id"])
	c.Set("role", claims["role"])
	c.Set("claims", claims)
	c.Set(PrincipalKey, p)
}

// GetPrincipal 从上下文取出请求主体
func GetPrincipal(c *gin.Context) (services.Principal, bool) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return services.Principal{}, false
	}
	p, ok := value.(services.Principal)
	return p, ok
}

// AuthenticateAdmin 验证系统管理员权限
func AuthenticateAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseClaims(c)
		if !ok {
			return
		}

		// 检查是否是系统管理员
		if role, exists := claims["role"].(string); !exists || role != "admin" {
			abortForbidden(c, "Insufficient permissions: requires admin role")
			return
		}

		p, valid := principalFromClaims(claims)
		if !valid {
			abortUnauthorized(c, "Invalid token claims")
			return
		}
		storePrincipal(c, claims, p)
		c.Next()
	}
}

// AuthenticateEngineer 验证工程师权限，评论等写操作仅限工程师本人
func AuthenticateEngineer() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseClaims(c)
		if !ok {
			return
		}

		role, exists := claims["role"].(string)
		if !exists || role != "engineer" {
			abortForbidden(c, "Insufficient permissions: requires engineer role")
			return
		}

		p, valid := principalFromClaims(claims)
		if !valid {
			abortUnauthorized(c, "Invalid token claims")
			return
		}
		storePrincipal(c, claims, p)
		c.Next()
	}
}

// Authentication 通用的认证中间件，任意已登录主体均可通过
func Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseClaims(c)
		if !ok {
			return
		}

		p, valid := principalFromClaims(claims)
		if !valid {
			abortForbidden(c, "Insufficient permissions: requires valid role")
			return
		}
		storePrincipal(c, claims, p)
		c.Next()
	}
}
