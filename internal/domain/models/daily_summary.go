package models

// DailySummary 只读的日汇总视图行，按(变电站,日期)一行
type DailySummary struct {
	SubstationID   uint   `json:"substation_id"`
	SubstationName string `json:"substation_name"`
	LogDate        string `json:"log_date"`
	TotalEntries   int64  `json:"total_entries"`
	NormalCount    int64  `json:"normal_count"`
	WarningCount   int64  `json:"warning_count"`
	CriticalCount  int64  `json:"critical_count"`
}

// TableName 指向预计算视图
func (DailySummary) TableName() string {
	return "v_daily_summary"
}

// DailySummaryViewSQL v_daily_summary 视图定义，迁移时执行
// 仅使用各方言共有的 DATE/CASE 语法
const DailySummaryViewSQL = `
CREATE VIEW v_daily_summary AS
SELECT l.substation_id AS substation_id,
       s.substation_name AS substation_name,
       DATE(l.entry_datetime) AS log_date,
       COUNT(*) AS total_entries,
       SUM(CASE WHEN l.severity = 'Normal' THEN 1 ELSE 0 END) AS normal_count,
       SUM(CASE WHEN l.severity = 'Warning' THEN 1 ELSE 0 END) AS warning_count,
       SUM(CASE WHEN l.severity = 'Critical' THEN 1 ELSE 0 END) AS critical_count
FROM logbook_entries l
JOIN substations s ON l.substation_id = s.id
GROUP BY l.substation_id, s.substation_name, DATE(l.entry_datetime)`

// DropDailySummaryViewSQL 重建视图前先删除旧视图
const DropDailySummaryViewSQL = `DROP VIEW IF EXISTS v_daily_summary`
