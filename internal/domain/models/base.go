package models

import "time"

// BaseModel 所有模型的公共字段
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaginationResult 分页结果
type PaginationResult struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// NewPaginationResult 创建一个新的分页结果对象
func NewPaginationResult(total int64, page, limit int) PaginationResult {
	totalPages := (total + int64(limit) - 1) / int64(limit)
	return PaginationResult{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
