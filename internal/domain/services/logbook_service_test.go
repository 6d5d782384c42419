package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/infrastructure/config"
)

// newTestDB 打开内存数据库并完成迁移
// :memory: 数据库按连接隔离，必须限制连接池为单连接
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Substation{},
		&models.User{},
		&models.Technician{},
		&models.EquipmentType{},
		&models.EventCategory{},
		&models.LogEntry{},
		&models.LogTechnician{},
		&models.ElectricalParameters{},
		&models.Comment{},
		&models.EmailConfig{},
		&models.BackupRecord{},
	)
	require.NoError(t, err)

	require.NoError(t, db.Exec(models.DailySummaryViewSQL).Error)

	return db
}

func newTestLogbookService(db *gorm.DB) InterfaceLogbookService {
	return NewLogbookService(db, &config.Config{UploadDir: "uploads"}, nil)
}

func seedSubstation(t *testing.T, db *gorm.DB, code string) *models.Substation {
	t.Helper()

	substation := models.Substation{
		SubstationCode: code,
		SubstationName: "Substation " + code,
		PasswordHash:   "x",
		IsActive:       true,
	}
	require.NoError(t, db.Create(&substation).Error)
	return &substation
}

func seedEngineer(t *testing.T, db *gorm.DB, username string, substationID uint) *models.User {
	t.Helper()

	sid := substationID
	user := models.User{
		Username:     username,
		PasswordHash: "x",
		FullName:     "Engineer " + username,
		Email:        username + "@example.com",
		Role:         models.RoleEngineer,
		SubstationID: &sid,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedTechnician(t *testing.T, db *gorm.DB, substationID uint, name string) *models.Technician {
	t.Helper()

	tech := models.Technician{
		SubstationID: substationID,
		Name:         name,
		EmployeeID:   fmt.Sprintf("EMP-%d-%s", substationID, name),
		IsActive:     true,
	}
	require.NoError(t, db.Create(&tech).Error)
	return &tech
}

func uintPtr(v uint) *uint        { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCreateEntry_SubstationPrincipalRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)

	substation := seedSubstation(t, db, "SS-KPHLI-01")
	techA := seedTechnician(t, db, substation.ID, "Harpreet Singh")
	techB := seedTechnician(t, db, substation.ID, "Gurdeep Kaur")

	p := SubstationPrincipal(substation.ID)
	id, err := svc.CreateEntry(p, &CreateEntryInput{
		EntryDatetime: time.Date(2026, 3, 14, 6, 30, 0, 0, time.UTC),
		Severity:      models.SeverityWarning,
		Message:       "11kV feeder F2 tripped on earth fault, restored after patrolling",
		TechnicianIDs: []uint{techA.ID, techB.ID},
		Parameters:    models.ElectricalParameters{VoltageKV: floatPtr(11.2), CurrentA: floatPtr(340)},
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	detail, err := svc.GetEntry(p, id)
	require.NoError(t, err)
	assert.Equal(t, substation.ID, detail.SubstationID)
	assert.Equal(t, "SS-KPHLI-01", detail.SubstationCode)
	assert.Equal(t, string(models.SeverityWarning), detail.Severity)
	assert.Equal(t, string(models.PostedBySubstation), detail.PostedByType)
	assert.Nil(t, detail.PostedByID)
	assert.Contains(t, detail.Technicians, "Harpreet Singh")
	assert.Contains(t, detail.Technicians, "Gurdeep Kaur")
	require.NotNil(t, detail.VoltageKV)
	assert.InDelta(t, 11.2, *detail.VoltageKV, 0.001)
	require.NotNil(t, detail.CurrentA)
	assert.InDelta(t, 340, *detail.CurrentA, 0.001)
	assert.Nil(t, detail.PowerMW)

	var links int64
	require.NoError(t, db.Model(&models.LogTechnician{}).Where("log_id = ?", id).Count(&links).Error)
	assert.EqualValues(t, 2, links)
}

func TestCreateEntry_SeverityDefaultsToNormal(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)
	substation := seedSubstation(t, db, "SS-01")

	p := SubstationPrincipal(substation.ID)
	id, err := svc.CreateEntry(p, &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "daily routine inspection completed",
	})
	require.NoError(t, err)

	var entry models.LogEntry
	require.NoError(t, db.First(&entry, id).Error)
	assert.Equal(t, models.SeverityNormal, entry.Severity)
	// 无读数时不应产生电气参数行
	var params int64
	require.NoError(t, db.Model(&models.ElectricalParameters{}).Where("log_id = ?", id).Count(&params).Error)
	assert.Zero(t, params)
}

func TestCreateEntry_EngineerIsRecordedAsPoster(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)
	substation := seedSubstation(t, db, "SS-01")
	engineer := seedEngineer(t, db, "jsingh", substation.ID)

	p := EngineerPrincipal(engineer.ID, substation.ID)
	id, err := svc.CreateEntry(p, &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "transformer T1 oil level checked",
	})
	require.NoError(t, err)

	var entry models.LogEntry
	require.NoError(t, db.First(&entry, id).Error)
	assert.Equal(t, models.PostedByEngineer, entry.PostedByType)
	require.NotNil(t, entry.PostedByID)
	assert.Equal(t, engineer.ID, *entry.PostedByID)
	assert.Equal(t, substation.ID, entry.SubstationID)
}

func TestCreateEntry_AdminMustNameSubstation(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)
	substation := seedSubstation(t, db, "SS-01")

	admin := AdminPrincipal(1)
	_, err := svc.CreateEntry(admin, &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "entry without target",
	})
	assert.ErrorIs(t, err, ErrSubstationRequired)

	id, err := svc.CreateEntry(admin, &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "entry logged on behalf of field staff",
		SubstationID:  uintPtr(substation.ID),
	})
	require.NoError(t, err)

	var entry models.LogEntry
	require.NoError(t, db.First(&entry, id).Error)
	assert.Equal(t, models.PostedByTechnician, entry.PostedByType)
	assert.Nil(t, entry.PostedByID)
}

func TestCreateEntry_ChildRowFailureRollsBackEverything(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)
	substation := seedSubstation(t, db, "SS-01")
	tech := seedTechnician(t, db, substation.ID, "A")

	// 重复的技术员ID会在第二次插入联表行时撞主键
	_, err := svc.CreateEntry(SubstationPrincipal(substation.ID), &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "breaker trip with duplicate crew ids",
		TechnicianIDs: []uint{tech.ID, tech.ID},
		Parameters:    models.ElectricalParameters{VoltageKV: floatPtr(220)},
	})
	require.Error(t, err)

	var entries, links, params int64
	require.NoError(t, db.Model(&models.LogEntry{}).Count(&entries).Error)
	require.NoError(t, db.Model(&models.LogTechnician{}).Count(&links).Error)
	require.NoError(t, db.Model(&models.ElectricalParameters{}).Count(&params).Error)
	assert.Zero(t, entries)
	assert.Zero(t, links)
	assert.Zero(t, params)
}

func TestUpdateEntry_ReplacesTechniciansAndParameters(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)
	substation := seedSubstation(t, db, "SS-01")
	techA := seedTechnician(t, db, substation.ID, "A")
	techB := seedTechnician(t, db, substation.ID, "B")
	techC := seedTechnician(t, db, substation.ID, "C")

	p := SubstationPrincipal(substation.ID)
	id, err := svc.CreateEntry(p, &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "breaker maintenance started",
		TechnicianIDs: []uint{techA.ID, techB.ID},
		Parameters:    models.ElectricalParameters{VoltageKV: floatPtr(220)},
	})
	require.NoError(t, err)

	newIDs := []uint{techC.ID}
	err = svc.UpdateEntry(p, id, &UpdateEntryInput{
		EntryDatetime: time.Now(),
		Severity:      models.SeverityCritical,
		Message:       "breaker maintenance escalated",
		TechnicianIDs: &newIDs,
		Parameters:    &models.ElectricalParameters{FrequencyHz: floatPtr(49.8)},
	})
	require.NoError(t, err)

	var entry models.LogEntry
	require.NoError(t, db.First(&entry, id).Error)
	assert.True(t, entry.IsEdited)
	assert.NotNil(t, entry.LastEditedAt)
	assert.Equal(t, models.SeverityCritical, entry.Severity)

	var links []models.LogTechnician
	require.NoError(t, db.Where("log_id = ?", id).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, techC.ID, links[0].TechnicianID)

	var params models.ElectricalParameters
	require.NoError(t, db.Where("log_id = ?", id).First(&params).Error)
	assert.Nil(t, params.VoltageKV)
	require.NotNil(t, params.FrequencyHz)
	assert.InDelta(t, 49.8, *params.FrequencyHz, 0.001)
}

func TestUpdateEntry_EmptyParametersDeleteOldReadings(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)
	substation := seedSubstation(t, db, "SS-01")

	p := SubstationPrincipal(substation.ID)
	id, err := svc.CreateEntry(p, &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "load reading",
		Parameters:    models.ElectricalParameters{PowerMW: floatPtr(42.5)},
	})
	require.NoError(t, err)

	// 携带参数字段但全为空：旧读数整体清除
	err = svc.UpdateEntry(p, id, &UpdateEntryInput{
		EntryDatetime: time.Now(),
		Severity:      models.SeverityNormal,
		Message:       "load reading corrected",
		Parameters:    &models.ElectricalParameters{},
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.ElectricalParameters{}).Where("log_id = ?", id).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateEntry_NilFieldsLeaveRelationsUntouched(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)
	substation := seedSubstation(t, db, "SS-01")
	tech := seedTechnician(t, db, substation.ID, "A")

	p := SubstationPrincipal(substation.ID)
	id, err := svc.CreateEntry(p, &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "original",
		TechnicianIDs: []uint{tech.ID},
		Parameters:    models.ElectricalParameters{EnergyMWH: floatPtr(120)},
	})
	require.NoError(t, err)

	err = svc.UpdateEntry(p, id, &UpdateEntryInput{
		EntryDatetime: time.Now(),
		Severity:      models.SeverityNormal,
		Message:       "message only",
	})
	require.NoError(t, err)

	var links, params int64
	require.NoError(t, db.Model(&models.LogTechnician{}).Where("log_id = ?", id).Count(&links).Error)
	require.NoError(t, db.Model(&models.ElectricalParameters{}).Where("log_id = ?", id).Count(&params).Error)
	assert.EqualValues(t, 1, links)
	assert.EqualValues(t, 1, params)
}

func TestUpdateEntry_RejectedAfterEditWindow(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)
	substation := seedSubstation(t, db, "SS-01")

	p := SubstationPrincipal(substation.ID)
	id, err := svc.CreateEntry(p, &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "old entry",
	})
	require.NoError(t, err)

	stale := time.Now().Add(-EditWindow - time.Minute)
	require.NoError(t, db.Model(&models.LogEntry{}).Where("id = ?", id).
		Update("created_at", stale).Error)

	err = svc.UpdateEntry(p, id, &UpdateEntryInput{
		EntryDatetime: time.Now(),
		Severity:      models.SeverityNormal,
		Message:       "too late",
	})
	assert.ErrorIs(t, err, ErrEditWindowExpired)

	err = svc.DeleteEntry(p, id)
	assert.ErrorIs(t, err, ErrEditWindowExpired)
}

func TestDeleteEntry_RemovesChildren(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)
	substation := seedSubstation(t, db, "SS-01")
	engineer := seedEngineer(t, db, "jsingh", substation.ID)
	tech := seedTechnician(t, db, substation.ID, "A")

	p := SubstationPrincipal(substation.ID)
	id, err := svc.CreateEntry(p, &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "entry with comment",
		TechnicianIDs: []uint{tech.ID},
		Parameters:    models.ElectricalParameters{CurrentA: floatPtr(120)},
	})
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Comment{LogID: id, UserID: engineer.ID, CommentText: "noted"}).Error)

	require.NoError(t, svc.DeleteEntry(p, id))

	_, err = svc.GetEntry(p, id)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	for _, model := range []interface{}{&models.Comment{}, &models.ElectricalParameters{}, &models.LogTechnician{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("log_id = ?", id).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestEntryAccess_ForeignSubstationLooksNonexistent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)
	home := seedSubstation(t, db, "SS-01")
	foreign := seedSubstation(t, db, "SS-02")
	engineer := seedEngineer(t, db, "jsingh", home.ID)

	id, err := svc.CreateEntry(SubstationPrincipal(foreign.ID), &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "foreign entry",
	})
	require.NoError(t, err)

	p := EngineerPrincipal(engineer.ID, home.ID)

	_, err = svc.GetEntry(p, id)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	err = svc.UpdateEntry(p, id, &UpdateEntryInput{
		EntryDatetime: time.Now(),
		Severity:      models.SeverityNormal,
		Message:       "hijack",
	})
	assert.ErrorIs(t, err, ErrEntryNotFound)

	err = svc.DeleteEntry(p, id)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	// 管理员不受范围限制
	_, err = svc.GetEntry(AdminPrincipal(1), id)
	assert.NoError(t, err)
}

func TestSearchEntries_ScopeAndFilters(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)
	stationA := seedSubstation(t, db, "SS-A")
	stationB := seedSubstation(t, db, "SS-B")
	engineer := seedEngineer(t, db, "jsingh", stationA.ID)

	mustCreate := func(p Principal, msg string, sev models.Severity, at time.Time) uint {
		id, err := svc.CreateEntry(p, &CreateEntryInput{
			EntryDatetime: at, Message: msg, Severity: sev,
		})
		require.NoError(t, err)
		return id
	}

	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	mustCreate(SubstationPrincipal(stationA.ID), "feeder F1 tripped on overcurrent", models.SeverityCritical, base)
	mustCreate(SubstationPrincipal(stationA.ID), "routine patrol, nothing abnormal", models.SeverityNormal, base.Add(time.Hour))
	mustCreate(SubstationPrincipal(stationB.ID), "feeder F7 tripped on earth fault", models.SeverityCritical, base)

	// 受限主体只能看到本站条目，变电站过滤参数被忽略
	p := EngineerPrincipal(engineer.ID, stationA.ID)
	entries, page, err := svc.SearchEntries(p, EntryFilter{SubstationID: uintPtr(stationB.ID)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	for _, e := range entries {
		assert.Equal(t, stationA.ID, e.SubstationID)
	}

	// 管理员可以按变电站过滤
	entries, page, err = svc.SearchEntries(AdminPrincipal(1), EntryFilter{SubstationID: uintPtr(stationB.ID)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, entries, 1)
	assert.Equal(t, stationB.ID, entries[0].SubstationID)

	// 严重度过滤
	_, page, err = svc.SearchEntries(AdminPrincipal(1), EntryFilter{Severity: string(models.SeverityCritical)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	// 文本检索（非MySQL方言退化为LIKE）
	entries, page, err = svc.SearchEntries(p, EntryFilter{SearchText: "tripped"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "feeder F1")
}

func TestSearchEntries_PaginationAndOrder(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLogbookService(db)
	substation := seedSubstation(t, db, "SS-01")

	p := SubstationPrincipal(substation.ID)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := svc.CreateEntry(p, &CreateEntryInput{
			EntryDatetime: base.Add(time.Duration(i) * time.Hour),
			Message:       fmt.Sprintf("entry %d", i),
		})
		require.NoError(t, err)
	}

	entries, page, err := svc.SearchEntries(p, EntryFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.EqualValues(t, 3, page.TotalPages)
	require.Len(t, entries, 2)
	// 按事件时间倒序
	assert.Equal(t, "entry 4", entries[0].Message)
	assert.Equal(t, "entry 3", entries[1].Message)

	entries, _, err = svc.SearchEntries(p, EntryFilter{Page: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "entry 0", entries[0].Message)
}

// captureNotifier 记录最近一次通知调用
type captureNotifier struct {
	to    string
	entry *EntryDetail
	err   error
}

func (c *captureNotifier) SendEntryNotification(entry *EntryDetail, to string) error {
	c.entry = entry
	c.to = to
	return c.err
}

func TestDispatchNotification_SendsToActiveEngineer(t *testing.T) {
	db := newTestDB(t)
	notifier := &captureNotifier{}
	svc := NewLogbookService(db, &config.Config{UploadDir: "uploads"}, notifier)

	substation := seedSubstation(t, db, "SS-01")
	engineer := seedEngineer(t, db, "jsingh", substation.ID)

	p := SubstationPrincipal(substation.ID)
	id, err := svc.CreateEntry(p, &CreateEntryInput{
		EntryDatetime: time.Now(),
		Severity:      models.SeverityCritical,
		Message:       "transformer T2 differential protection operated",
	})
	require.NoError(t, err)

	sent := svc.DispatchNotification(id)
	assert.True(t, sent)
	assert.Equal(t, engineer.Email, notifier.to)
	require.NotNil(t, notifier.entry)
	assert.Equal(t, id, notifier.entry.ID)

	var entry models.LogEntry
	require.NoError(t, db.First(&entry, id).Error)
	assert.True(t, entry.EmailSent)
	assert.NotNil(t, entry.EmailSentAt)
}

func TestDispatchNotification_NoRecipientOrFailure(t *testing.T) {
	db := newTestDB(t)
	notifier := &captureNotifier{}
	svc := NewLogbookService(db, &config.Config{UploadDir: "uploads"}, notifier)

	// 无在职工程师的变电站：不发送
	lonely := seedSubstation(t, db, "SS-01")
	id, err := svc.CreateEntry(SubstationPrincipal(lonely.ID), &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "no one to notify",
	})
	require.NoError(t, err)
	assert.False(t, svc.DispatchNotification(id))

	// 发送失败：不回写已发送标记
	staffed := seedSubstation(t, db, "SS-02")
	seedEngineer(t, db, "gkaur", staffed.ID)
	notifier.err = fmt.Errorf("smtp unreachable")
	id, err = svc.CreateEntry(SubstationPrincipal(staffed.ID), &CreateEntryInput{
		EntryDatetime: time.Now(),
		Message:       "delivery failure",
	})
	require.NoError(t, err)
	assert.False(t, svc.DispatchNotification(id))

	var entry models.LogEntry
	require.NoError(t, db.First(&entry, id).Error)
	assert.False(t, entry.EmailSent)
}
