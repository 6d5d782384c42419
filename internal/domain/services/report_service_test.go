package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
)

// seedReportData 固定场景：
// A站 2026-03-10 两条Normal(其中一条归类Tripping)加一条Critical，
// A站 2026-03-11 一条Warning，B站 2026-03-10 一条Critical
func seedReportData(t *testing.T, db *gorm.DB) (stationA, stationB *models.Substation) {
	t.Helper()

	stationA = seedSubstation(t, db, "SS-A")
	stationB = seedSubstation(t, db, "SS-B")

	category := models.EventCategory{CategoryName: "Tripping", IsActive: true}
	require.NoError(t, db.Create(&category).Error)

	logbook := newTestLogbookService(db)
	mustCreate := func(substationID uint, at time.Time, sev models.Severity, categoryID *uint) {
		_, err := logbook.CreateEntry(SubstationPrincipal(substationID), &CreateEntryInput{
			EntryDatetime:   at,
			Severity:        sev,
			Message:         "report fixture entry",
			EventCategoryID: categoryID,
		})
		require.NoError(t, err)
	}

	day1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	mustCreate(stationA.ID, day1, models.SeverityNormal, &category.ID)
	mustCreate(stationA.ID, day1.Add(time.Hour), models.SeverityNormal, nil)
	mustCreate(stationA.ID, day1.Add(2*time.Hour), models.SeverityCritical, nil)
	mustCreate(stationA.ID, day2, models.SeverityWarning, nil)
	mustCreate(stationB.ID, day1, models.SeverityCritical, nil)

	return stationA, stationB
}

func TestGetDailySummary_AdminSeesAllStations(t *testing.T) {
	db := newTestDB(t)
	stationA, stationB := seedReportData(t, db)
	svc := NewReportService(db)

	report, err := svc.GetDailySummary(AdminPrincipal(1), "2026-03-10", nil)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", report.Date)
	require.Len(t, report.Summaries, 2)

	byID := map[uint]models.DailySummary{}
	for _, s := range report.Summaries {
		byID[s.SubstationID] = s
	}
	a := byID[stationA.ID]
	assert.EqualValues(t, 3, a.TotalEntries)
	assert.EqualValues(t, 2, a.NormalCount)
	assert.EqualValues(t, 0, a.WarningCount)
	assert.EqualValues(t, 1, a.CriticalCount)

	b := byID[stationB.ID]
	assert.EqualValues(t, 1, b.TotalEntries)
	assert.EqualValues(t, 1, b.CriticalCount)

	// 类别分布，未归类条目合并为Uncategorized，计数降序
	require.Len(t, report.Breakdown, 2)
	assert.Equal(t, "Uncategorized", report.Breakdown[0].CategoryName)
	assert.EqualValues(t, 3, report.Breakdown[0].EntryCount)
	assert.Equal(t, "Tripping", report.Breakdown[1].CategoryName)
	assert.EqualValues(t, 1, report.Breakdown[1].EntryCount)
}

func TestGetDailySummary_ScopedPrincipalPinnedToOwnStation(t *testing.T) {
	db := newTestDB(t)
	stationA, stationB := seedReportData(t, db)
	engineer := seedEngineer(t, db, "jsingh", stationA.ID)
	svc := NewReportService(db)

	// 请求参数指向他站也会被忽略
	p := EngineerPrincipal(engineer.ID, stationA.ID)
	report, err := svc.GetDailySummary(p, "2026-03-10", uintPtr(stationB.ID))
	require.NoError(t, err)
	require.Len(t, report.Summaries, 1)
	assert.Equal(t, stationA.ID, report.Summaries[0].SubstationID)
	assert.EqualValues(t, 3, report.Summaries[0].TotalEntries)
}

func TestGetDailySummary_EmptyDateReturnsEmptyLists(t *testing.T) {
	db := newTestDB(t)
	seedReportData(t, db)
	svc := NewReportService(db)

	report, err := svc.GetDailySummary(AdminPrincipal(1), "2025-01-01", nil)
	require.NoError(t, err)
	assert.Empty(t, report.Summaries)
	assert.Empty(t, report.Breakdown)
}

func TestGetMonthlySummary_PerStationTotals(t *testing.T) {
	db := newTestDB(t)
	stationA, _ := seedReportData(t, db)
	svc := NewReportService(db)

	rows, err := svc.GetMonthlySummary(AdminPrincipal(1), 2026, 3, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var a *MonthlySummaryRow
	for i := range rows {
		if rows[i].SubstationID == stationA.ID {
			a = &rows[i]
		}
	}
	require.NotNil(t, a)
	assert.EqualValues(t, 4, a.TotalEntries)
	assert.EqualValues(t, 2, a.NormalCount)
	assert.EqualValues(t, 1, a.WarningCount)
	assert.EqualValues(t, 1, a.CriticalCount)
	assert.EqualValues(t, 2, a.ActiveDays)
}

func TestGetMonthlySummary_ScopeAndValidation(t *testing.T) {
	db := newTestDB(t)
	stationA, stationB := seedReportData(t, db)
	engineer := seedEngineer(t, db, "jsingh", stationA.ID)
	svc := NewReportService(db)

	p := EngineerPrincipal(engineer.ID, stationA.ID)
	rows, err := svc.GetMonthlySummary(p, 2026, 3, uintPtr(stationB.ID))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, stationA.ID, rows[0].SubstationID)

	_, err = svc.GetMonthlySummary(AdminPrincipal(1), 2026, 13, nil)
	assert.Error(t, err)

	// 无数据的月份返回空列表
	rows, err = svc.GetMonthlySummary(AdminPrincipal(1), 2024, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
