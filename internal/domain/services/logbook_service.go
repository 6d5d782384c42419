package services

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
	"github.com/banuch/logbook/internal/infrastructure/config"
	Logger "github.com/banuch/logbook/pkg/logger"
)

// EditWindow 创建后允许编辑/删除的时间窗口
const EditWindow = 24 * time.Hour

// EntryNotifier 条目通知发送方，失败只表现为未发送
type EntryNotifier interface {
	SendEntryNotification(entry *EntryDetail, to string) error
}

// InterfaceLogbookService defines the logbook service interface
type InterfaceLogbookService interface {
	CreateEntry(p Principal, in *CreateEntryInput) (uint, error)
	UpdateEntry(p Principal, id uint, in *UpdateEntryInput) error
	DeleteEntry(p Principal, id uint) error
	GetEntry(p Principal, id uint) (*EntryDetail, error)
	SearchEntries(p Principal, filter EntryFilter) ([]EntryDetail, models.PaginationResult, error)
	DispatchNotification(logID uint) bool
}

// LogbookService 日志条目生命周期与检索的核心服务
type LogbookService struct {
	DB       *gorm.DB
	Config   *config.Config
	Notifier EntryNotifier // 可为空，为空时跳过通知
}

// NewLogbookService 创建一个新的日志服务
func NewLogbookService(db *gorm.DB, cfg *config.Config, notifier EntryNotifier) InterfaceLogbookService {
	return &LogbookService{
		DB:       db,
		Config:   cfg,
		Notifier: notifier,
	}
}

// CreateEntryInput 创建条目的输入
type CreateEntryInput struct {
	EntryDatetime   time.Time
	EventCategoryID *uint
	EquipmentID     *uint
	Severity        models.Severity
	Message         string
	TechnicianIDs   []uint
	Parameters      models.ElectricalParameters
	AttachmentPath  string
	SubstationID    *uint // 管理员指定的目标变电站
	Notify          bool
}

// UpdateEntryInput 编辑条目的输入
type UpdateEntryInput struct {
	EntryDatetime   time.Time
	EventCategoryID *uint
	EquipmentID     *uint
	Severity        models.Severity
	Message         string
	TechnicianIDs   *[]uint                      // nil表示不修改关联
	Parameters      *models.ElectricalParameters // nil表示不修改；非nil但无读数则仅删除旧记录
	AttachmentPath  string                       // 为空表示保留原附件
}

// resolvePoster 由主体角色决定目标变电站和发布者身份
func resolvePoster(p Principal, target *uint) (substationID uint, postedByType models.PostedByType, postedByID *uint, err error) {
	switch p.Kind {
	case PrincipalSubstation:
		return p.SubstationID, models.PostedBySubstation, nil, nil
	case PrincipalEngineer:
		id := p.ID
		return p.SubstationID, models.PostedByEngineer, &id, nil
	default:
		// 管理员必须显式指定变电站，条目记为无名技术员代发
		if target == nil {
			return 0, "", nil, ErrSubstationRequired
		}
		return *target, models.PostedByTechnician, nil, nil
	}
}

// 1 CreateEntry 创建日志条目
// 条目、技术员关联、电气参数在同一事务中写入，任一失败则整体回滚
func (s *LogbookService) CreateEntry(p Principal, in *CreateEntryInput) (uint, error) {
	substationID, postedByType, postedByID, err := resolvePoster(p, in.SubstationID)
	if err != nil {
		return 0, err
	}

	if in.Severity == "" {
		in.Severity = models.SeverityNormal
	}

	entry := models.LogEntry{
		SubstationID:          substationID,
		EntryDatetime:         in.EntryDatetime,
		EventCategoryID:       in.EventCategoryID,
		EquipmentID:           in.EquipmentID,
		Severity:              in.Severity,
		Message:               in.Message,
		AttachmentPath:        in.AttachmentPath,
		PostedByType:          postedByType,
		PostedByID:            postedByID,
		SendEmailNotification: in.Notify,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		for _, techID := range in.TechnicianIDs {
			link := models.LogTechnician{LogID: entry.ID, TechnicianID: techID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}

		if in.Parameters.HasValue() {
			params := in.Parameters
			params.ID = 0
			params.LogID = entry.ID
			if err := tx.Create(&params).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	// 通知在事务提交后异步发送，发送失败不影响已提交的条目
	if in.Notify && s.Notifier != nil {
		go s.DispatchNotification(entry.ID)
	}

	return entry.ID, nil
}

// 2 UpdateEntry 编辑日志条目，仅限创建后24小时内
func (s *LogbookService) UpdateEntry(p Principal, id uint, in *UpdateEntryInput) error {
	entry, err := s.loadScopedEntry(p, id)
	if err != nil {
		return err
	}

	if time.Since(entry.CreatedAt) > EditWindow {
		return ErrEditWindowExpired
	}

	now := time.Now()
	updates := map[string]interface{}{
		"entry_datetime":    in.EntryDatetime,
		"event_category_id": in.EventCategoryID,
		"equipment_id":      in.EquipmentID,
		"severity":          in.Severity,
		"message":           in.Message,
		"is_edited":         true,
		"last_edited_at":    &now,
	}
	if in.AttachmentPath != "" {
		updates["attachment_path"] = in.AttachmentPath
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.LogEntry{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		// 技术员关联整体替换
		if in.TechnicianIDs != nil {
			if err := tx.Where("log_id = ?", id).Delete(&models.LogTechnician{}).Error; err != nil {
				return err
			}
			for _, techID := range *in.TechnicianIDs {
				link := models.LogTechnician{LogID: id, TechnicianID: techID}
				if err := tx.Create(&link).Error; err != nil {
					return err
				}
			}
		}

		// 电气参数先删后插；请求携带参数字段但全为空时只删不插
		if in.Parameters != nil {
			if err := tx.Where("log_id = ?", id).Delete(&models.ElectricalParameters{}).Error; err != nil {
				return err
			}
			if in.Parameters.HasValue() {
				params := *in.Parameters
				params.ID = 0
				params.LogID = id
				if err := tx.Create(&params).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// 3 DeleteEntry 删除日志条目，仅限创建后24小时内
// 附件文件删除是尽力而为，失败只记日志
func (s *LogbookService) DeleteEntry(p Principal, id uint) error {
	entry, err := s.loadScopedEntry(p, id)
	if err != nil {
		return err
	}

	if time.Since(entry.CreatedAt) > EditWindow {
		return ErrEditWindowExpired
	}

	if entry.AttachmentPath != "" {
		filePath := filepath.Join(s.Config.UploadDir, entry.AttachmentPath)
		if err := os.Remove(filePath); err != nil {
			Logger.Warning("删除附件文件失败: %s: %v", filePath, err)
		}
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("log_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("log_id = ?", id).Delete(&models.ElectricalParameters{}).Error; err != nil {
			return err
		}
		if err := tx.Where("log_id = ?", id).Delete(&models.LogTechnician{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.LogEntry{}, id).Error
	})
}

// 4 GetEntry 获取单条聚合后的条目，受限主体只能读取本站条目
func (s *LogbookService) GetEntry(p Principal, id uint) (*EntryDetail, error) {
	var detail EntryDetail
	err := detailQuery(s.DB).Where("l.id = ?", id).Scan(&detail).Error
	if err != nil {
		return nil, err
	}
	if detail.ID == 0 {
		return nil, ErrEntryNotFound
	}

	// 行级范围：越站读取一律按不存在处理
	if p.Scoped() && detail.SubstationID != p.SubstationID {
		return nil, ErrEntryNotFound
	}

	return &detail, nil
}

// 5 SearchEntries 多条件检索，角色范围先于一切用户条件
func (s *LogbookService) SearchEntries(p Principal, filter EntryFilter) ([]EntryDetail, models.PaginationResult, error) {
	filter.Normalize()
	preds := filter.predicates(p, s.DB.Dialector.Name())

	// 总数
	var total int64
	if err := applyPredicates(countQuery(s.DB), preds).
		Select("COUNT(DISTINCT l.id)").Scan(&total).Error; err != nil {
		return nil, models.PaginationResult{}, err
	}

	// 数据页，按事件时间倒序
	offset := (filter.Page - 1) * filter.Limit
	var entries []EntryDetail
	if err := applyPredicates(detailQuery(s.DB), preds).
		Order("l.entry_datetime DESC").
		Limit(filter.Limit).Offset(offset).
		Scan(&entries).Error; err != nil {
		return nil, models.PaginationResult{}, err
	}

	return entries, models.NewPaginationResult(total, filter.Page, filter.Limit), nil
}

// 6 DispatchNotification 重新读取聚合条目并发送通知
// 返回是否已发送；发送成功时回写email_sent标记
func (s *LogbookService) DispatchNotification(logID uint) bool {
	if s.Notifier == nil {
		return false
	}

	var detail EntryDetail
	if err := detailQuery(s.DB).Where("l.id = ?", logID).Scan(&detail).Error; err != nil || detail.ID == 0 {
		Logger.Error("读取通知条目失败: log_id=%d: %v", logID, err)
		return false
	}

	// 收件人为该变电站的在职工程师
	var engineer models.User
	err := s.DB.Where("substation_id = ? AND role = ? AND is_active = ?",
		detail.SubstationID, models.RoleEngineer, true).First(&engineer).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			Logger.Error("查询通知收件人失败: log_id=%d: %v", logID, err)
		}
		return false
	}

	if err := s.Notifier.SendEntryNotification(&detail, engineer.Email); err != nil {
		Logger.Warning("条目通知发送失败: log_id=%d: %v", logID, err)
		return false
	}

	now := time.Now()
	if err := s.DB.Model(&models.LogEntry{}).Where("id = ?", logID).
		Updates(map[string]interface{}{"email_sent": true, "email_sent_at": &now}).Error; err != nil {
		Logger.Error("回写邮件发送标记失败: log_id=%d: %v", logID, err)
	}
	return true
}

// loadScopedEntry 读取原始条目行，越站访问一律按不存在处理
func (s *LogbookService) loadScopedEntry(p Principal, id uint) (*models.LogEntry, error) {
	var entry models.LogEntry
	if err := s.DB.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	if p.Scoped() && entry.SubstationID != p.SubstationID {
		return nil, ErrEntryNotFound
	}
	return &entry, nil
}
