package models

// Comment 工程师对日志条目的评论，软删除
type Comment struct {
	BaseModel
	LogID       uint   `gorm:"not null;index" json:"log_id"`
	UserID      uint   `gorm:"not null" json:"user_id"`
	CommentText string `gorm:"type:text;not null" json:"comment_text"`
	IsEdited    bool   `gorm:"default:false" json:"is_edited"`
	IsDeleted   bool   `gorm:"default:false" json:"is_deleted"`

	// Relations - 关联关系
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
