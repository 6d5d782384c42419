package routes

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/infrastructure/config"
)

// newTestRouter 在内存数据库上装配完整路由
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.EmailConfig{}))

	r, _ := SetupRouter(db, &config.Config{
		JWTSecretKey: "route-table-test",
		UploadDir:    t.TempDir(),
		BackupDir:    t.TempDir(),
	})
	return r
}

func TestAPIRouteTable(t *testing.T) {
	r := newTestRouter(t)

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"POST /api/auth/login",
		"POST /api/auth/substation-login",
		"GET /api/auth/verify",

		"GET /api/logbook/entries",
		"POST /api/logbook/entries",
		"GET /api/logbook/entries/:id",
		"PUT /api/logbook/entries/:id",
		"DELETE /api/logbook/entries/:id",
		"GET /api/logbook/entries/:id/comments",
		"POST /api/logbook/entries/:id/comments",
		"PUT /api/logbook/comments/:comment_id",
		"DELETE /api/logbook/comments/:comment_id",

		"GET /api/technicians/:substation_id",
		"POST /api/technicians",
		"PUT /api/technicians/:id",
		"DELETE /api/technicians/:id",

		"GET /api/equipment",
		"POST /api/equipment",
		"DELETE /api/equipment/:id",
		"GET /api/categories",
		"POST /api/categories",
		"DELETE /api/categories/:id",

		"GET /api/reports/daily-summary",
		"GET /api/reports/monthly-summary",
		"POST /api/reports/export-pdf",
		"POST /api/reports/export-excel",

		"GET /api/email-config",
		"POST /api/email-config",
		"POST /api/email-config/test",

		"POST /api/backup/manual",
		"GET /api/backup/history",
		"GET /api/backup/download/:filename",
	}
	for _, want := range expected {
		assert.True(t, registered[want], "缺少路由 %s", want)
	}
}
