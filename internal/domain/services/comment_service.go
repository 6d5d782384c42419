package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/banuch/logbook/internal/domain/models"
)

// InterfaceCommentService defines the comment service interface
type InterfaceCommentService interface {
	GetCommentsByEntry(p Principal, logID uint) ([]CommentView, error)
	CreateComment(p Principal, logID uint, text string) (uint, error)
	UpdateComment(p Principal, commentID uint, text string) error
	DeleteComment(p Principal, commentID uint) error
}

// CommentService 工程师评论服务，仅工程师可写
type CommentService struct {
	DB *gorm.DB
}

// NewCommentService 创建一个新的评论服务
func NewCommentService(db *gorm.DB) InterfaceCommentService {
	return &CommentService{DB: db}
}

// CommentView 附带作者姓名的评论行
type CommentView struct {
	ID          uint   `json:"id"`
	LogID       uint   `json:"log_id"`
	UserID      uint   `json:"user_id"`
	CommentText string `json:"comment_text"`
	IsEdited    bool   `json:"is_edited"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	FullName    string `json:"full_name"`
}

// 1 GetCommentsByEntry 获取条目的全部未删除评论
// 条目本身的可见性沿用条目行级范围规则
func (s *CommentService) GetCommentsByEntry(p Principal, logID uint) ([]CommentView, error) {
	if err := s.checkEntryVisible(p, logID); err != nil {
		return nil, err
	}

	var comments []CommentView
	err := s.DB.Table("comments c").
		Select("c.id, c.log_id, c.user_id, c.comment_text, c.is_edited, c.created_at, c.updated_at, u.full_name").
		Joins("LEFT JOIN users u ON c.user_id = u.id").
		Where("c.log_id = ? AND c.is_deleted = ?", logID, false).
		Order("c.created_at ASC").
		Scan(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// 2 CreateComment 在条目下新增评论，仅工程师可写
func (s *CommentService) CreateComment(p Principal, logID uint, text string) (uint, error) {
	if p.Kind != PrincipalEngineer {
		return 0, ErrPermissionDenied
	}
	if err := s.checkEntryVisible(p, logID); err != nil {
		return 0, err
	}

	comment := models.Comment{
		LogID:       logID,
		UserID:      p.ID,
		CommentText: text,
	}
	if err := s.DB.Create(&comment).Error; err != nil {
		return 0, err
	}
	return comment.ID, nil
}

// 3 UpdateComment 修改自己的评论
func (s *CommentService) UpdateComment(p Principal, commentID uint, text string) error {
	if p.Kind != PrincipalEngineer {
		return ErrPermissionDenied
	}
	comment, err := s.loadComment(commentID)
	if err != nil {
		return err
	}
	if comment.UserID != p.ID {
		return ErrCommentNotOwned
	}

	return s.DB.Model(&models.Comment{}).Where("id = ?", commentID).
		Updates(map[string]interface{}{
			"comment_text": text,
			"is_edited":    true,
		}).Error
}

// 4 DeleteComment 删除自己的评论，软删除
func (s *CommentService) DeleteComment(p Principal, commentID uint) error {
	if p.Kind != PrincipalEngineer {
		return ErrPermissionDenied
	}
	comment, err := s.loadComment(commentID)
	if err != nil {
		return err
	}
	if comment.UserID != p.ID {
		return ErrCommentNotOwned
	}

	return s.DB.Model(&models.Comment{}).Where("id = ?", commentID).
		Update("is_deleted", true).Error
}

// checkEntryVisible 校验条目存在且在主体可见范围内
func (s *CommentService) checkEntryVisible(p Principal, logID uint) error {
	var entry models.LogEntry
	if err := s.DB.Select("id, substation_id").First(&entry, logID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	if p.Scoped() && entry.SubstationID != p.SubstationID {
		return ErrEntryNotFound
	}
	return nil
}

// loadComment 读取未删除的评论行
func (s *CommentService) loadComment(commentID uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.DB.Where("id = ? AND is_deleted = ?", commentID, false).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}
