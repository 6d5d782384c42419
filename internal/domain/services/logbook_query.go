package services

import (
	"time"

	"gorm.io/gorm"
)

// EntryFilter 日志条目检索条件
// 角色范围谓词始终先于用户条件生效，见 predicates
type EntryFilter struct {
	SubstationID *uint  // 仅管理员可用，受限主体的该字段被忽略
	StartDate    string // 含当日，格式 YYYY-MM-DD
	EndDate      string // 含当日，格式 YYYY-MM-DD
	SearchText   string // 对message做自然语言全文检索
	TechnicianID *uint
	CategoryID   *uint
	Severity     string
	Page         int
	Limit        int
}

// Normalize 规范化分页参数
func (f *EntryFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
}

// entryPredicate 可组合的查询谓词
type entryPredicate func(*gorm.DB) *gorm.DB

// scopeByPrincipal 角色范围谓词：受限主体只能看到自己变电站的条目，
// 该谓词永远是谓词列表的第一项且不可被用户条件覆盖
func scopeByPrincipal(p Principal) entryPredicate {
	return func(db *gorm.DB) *gorm.DB {
		if p.Scoped() {
			return db.Where("l.substation_id = ?", p.SubstationID)
		}
		return db
	}
}

// predicates 构造完整谓词列表，角色范围在前，用户条件在后
func (f EntryFilter) predicates(p Principal, dialect string) []entryPredicate {
	preds := []entryPredicate{scopeByPrincipal(p)}

	// 变电站过滤仅对管理员生效
	if !p.Scoped() && f.SubstationID != nil {
		sid := *f.SubstationID
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where("l.substation_id = ?", sid)
		})
	}

	if f.StartDate != "" {
		start := f.StartDate
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where("DATE(l.entry_datetime) >= ?", start)
		})
	}
	if f.EndDate != "" {
		end := f.EndDate
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where("DATE(l.entry_datetime) <= ?", end)
		})
	}

	if f.SearchText != "" {
		text := f.SearchText
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			// 全文索引仅在MySQL下可用，其他方言退化为LIKE
			if dialect == "mysql" {
				return db.Where("MATCH(l.message) AGAINST (? IN NATURAL LANGUAGE MODE)", text)
			}
			return db.Where("l.message LIKE ?", "%"+text+"%")
		})
	}

	if f.TechnicianID != nil {
		tid := *f.TechnicianID
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where("lt.technician_id = ?", tid)
		})
	}

	if f.CategoryID != nil {
		cid := *f.CategoryID
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where("l.event_category_id = ?", cid)
		})
	}

	if f.Severity != "" {
		sev := f.Severity
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where("l.severity = ?", sev)
		})
	}

	return preds
}

// applyPredicates 按序应用谓词
func applyPredicates(db *gorm.DB, preds []entryPredicate) *gorm.DB {
	for _, pred := range preds {
		db = pred(db)
	}
	return db
}

// EntryDetail 聚合后的条目视图：变电站/类别/设备名、技术员集合、
// 电气参数（每条目至多一行，MAX 等价于取值本身）、未删除评论数
type EntryDetail struct {
	ID                    uint       `json:"id"`
	SubstationID          uint       `json:"substation_id"`
	EntryDatetime         time.Time  `json:"entry_datetime"`
	EventCategoryID       *uint      `json:"event_category_id"`
	EquipmentID           *uint      `json:"equipment_id"`
	Severity              string     `json:"severity"`
	Message               string     `json:"message"`
	AttachmentPath        string     `json:"attachment_path"`
	PostedByType          string     `json:"posted_by_type"`
	PostedByID            *uint      `json:"posted_by_id"`
	SendEmailNotification bool       `json:"send_email_notification"`
	EmailSent             bool       `json:"email_sent"`
	EmailSentAt           *time.Time `json:"email_sent_at"`
	IsEdited              bool       `json:"is_edited"`
	LastEditedAt          *time.Time `json:"last_edited_at"`
	CreatedAt             time.Time  `json:"created_at"`

	SubstationName string `json:"substation_name"`
	SubstationCode string `json:"substation_code"`
	EventCategory  string `json:"event_category"`
	Equipment      string `json:"equipment"`
	Technicians    string `json:"technicians"`    // 逗号分隔的姓名集合
	TechnicianIDs  string `json:"technician_ids"` // 逗号分隔的ID集合

	VoltageKV   *float64 `json:"voltage_kv"`
	CurrentA    *float64 `json:"current_a"`
	PowerMW     *float64 `json:"power_mw"`
	FrequencyHz *float64 `json:"frequency_hz"`
	PowerFactor *float64 `json:"power_factor"`
	EnergyMWH   *float64 `json:"energy_mwh"`

	CommentCount int64 `json:"comment_count"`
}

// entryDetailSelect 聚合查询的选择列
const entryDetailSelect = `l.id, l.substation_id, l.entry_datetime, l.event_category_id, l.equipment_id,
l.severity, l.message, l.attachment_path, l.posted_by_type, l.posted_by_id,
l.send_email_notification, l.email_sent, l.email_sent_at, l.is_edited, l.last_edited_at, l.created_at,
s.substation_name, s.substation_code,
ec.category_name AS event_category,
eq.equipment_name AS equipment,
GROUP_CONCAT(DISTINCT t.name) AS technicians,
GROUP_CONCAT(DISTINCT t.id) AS technician_ids,
MAX(ep.voltage_kv) AS voltage_kv,
MAX(ep.current_a) AS current_a,
MAX(ep.power_mw) AS power_mw,
MAX(ep.frequency_hz) AS frequency_hz,
MAX(ep.power_factor) AS power_factor,
MAX(ep.energy_mwh) AS energy_mwh,
COUNT(DISTINCT c.id) AS comment_count`

// entryDetailGroup 聚合查询的分组列
const entryDetailGroup = `l.id, s.substation_name, s.substation_code, ec.category_name, eq.equipment_name`

// detailQuery 构造带所有关联的聚合查询
func detailQuery(db *gorm.DB) *gorm.DB {
	return db.Table("logbook_entries AS l").
		Select(entryDetailSelect).
		Joins("JOIN substations s ON l.substation_id = s.id").
		Joins("LEFT JOIN event_categories ec ON l.event_category_id = ec.id").
		Joins("LEFT JOIN equipment_types eq ON l.equipment_id = eq.id").
		Joins("LEFT JOIN log_technicians lt ON l.id = lt.log_id").
		Joins("LEFT JOIN technicians t ON lt.technician_id = t.id").
		Joins("LEFT JOIN electrical_parameters ep ON l.id = ep.log_id").
		Joins("LEFT JOIN comments c ON l.id = c.log_id AND c.is_deleted = FALSE").
		Group(entryDetailGroup)
}

// countQuery 构造与谓词兼容的计数查询
func countQuery(db *gorm.DB) *gorm.DB {
	return db.Table("logbook_entries AS l").
		Joins("LEFT JOIN log_technicians lt ON l.id = lt.log_id")
}
