package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
)

// InterfaceReportService defines the report service interface
type InterfaceReportService interface {
	GetDailySummary(p Principal, date string, substationID *uint) (*DailyReport, error)
	GetMonthlySummary(p Principal, year, month int, substationID *uint) ([]MonthlySummaryRow, error)
}

// ReportService 日报与月报服务
type ReportService struct {
	DB *gorm.DB
}

// NewReportService 创建一个新的报表服务
func NewReportService(db *gorm.DB) InterfaceReportService {
	return &ReportService{DB: db}
}

// CategoryBreakdownRow 日报中按事件类别的计数行
type CategoryBreakdownRow struct {
	CategoryName string `json:"category_name"`
	EntryCount   int64  `json:"entry_count"`
}

// DailyReport 某日期的汇总：各站严重度计数加类别分布
type DailyReport struct {
	Date      string                 `json:"date"`
	Summaries []models.DailySummary  `json:"summaries"`
	Breakdown []CategoryBreakdownRow `json:"category_breakdown"`
}

// MonthlySummaryRow 某月单个变电站的汇总行
type MonthlySummaryRow struct {
	SubstationID   uint   `json:"substation_id"`
	SubstationName string `json:"substation_name"`
	TotalEntries   int64  `json:"total_entries"`
	NormalCount    int64  `json:"normal_count"`
	WarningCount   int64  `json:"warning_count"`
	CriticalCount  int64  `json:"critical_count"`
	ActiveDays     int64  `json:"active_days"`
}

// resolveScope 将主体范围与请求的变电站过滤合并
// 受限主体忽略请求参数，固定为本站
func resolveScope(p Principal, requested *uint) *uint {
	if p.Scoped() {
		sid := p.SubstationID
		return &sid
	}
	return requested
}

// 1 GetDailySummary 获取某日期的日汇总
// 无条目的日期返回空列表而不是错误
func (s *ReportService) GetDailySummary(p Principal, date string, substationID *uint) (*DailyReport, error) {
	scope := resolveScope(p, substationID)

	summaryQuery := s.DB.Model(&models.DailySummary{}).Where("log_date = ?", date)
	if scope != nil {
		summaryQuery = summaryQuery.Where("substation_id = ?", *scope)
	}

	var summaries []models.DailySummary
	if err := summaryQuery.Order("substation_name").Find(&summaries).Error; err != nil {
		return nil, err
	}

	// 类别分布：未分类条目归入固定的Uncategorized一行
	breakdownQuery := s.DB.Table("logbook_entries l").
		Select("COALESCE(ec.category_name, 'Uncategorized') AS category_name, COUNT(*) AS entry_count").
		Joins("LEFT JOIN event_categories ec ON l.event_category_id = ec.id").
		Where("DATE(l.entry_datetime) = ?", date)
	if scope != nil {
		breakdownQuery = breakdownQuery.Where("l.substation_id = ?", *scope)
	}

	var breakdown []CategoryBreakdownRow
	if err := breakdownQuery.Group("ec.category_name").
		Order("entry_count DESC").Scan(&breakdown).Error; err != nil {
		return nil, err
	}

	return &DailyReport{
		Date:      date,
		Summaries: summaries,
		Breakdown: breakdown,
	}, nil
}

// 2 GetMonthlySummary 获取某月各变电站的汇总
func (s *ReportService) GetMonthlySummary(p Principal, year, month int, substationID *uint) ([]MonthlySummaryRow, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("月份无效: %d", month)
	}
	scope := resolveScope(p, substationID)

	// 用边界区间代替YEAR()/MONTH()，各方言通用且能走索引
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := s.DB.Table("logbook_entries l").
		Select(`l.substation_id AS substation_id,
			s.substation_name AS substation_name,
			COUNT(*) AS total_entries,
			SUM(CASE WHEN l.severity = 'Normal' THEN 1 ELSE 0 END) AS normal_count,
			SUM(CASE WHEN l.severity = 'Warning' THEN 1 ELSE 0 END) AS warning_count,
			SUM(CASE WHEN l.severity = 'Critical' THEN 1 ELSE 0 END) AS critical_count,
			COUNT(DISTINCT DATE(l.entry_datetime)) AS active_days`).
		Joins("JOIN substations s ON l.substation_id = s.id").
		Where("l.entry_datetime >= ? AND l.entry_datetime < ?", start, end)
	if scope != nil {
		query = query.Where("l.substation_id = ?", *scope)
	}

	var rows []MonthlySummaryRow
	if err := query.Group("l.substation_id, s.substation_name").
		Order("s.substation_name").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
