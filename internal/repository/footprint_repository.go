package repository

import (
	"carbon-chat-go/internal/model"

	"gorm.io/gorm"
)

// FootprintRepository 定义了足迹记录的持久化操作。
type FootprintRepository interface {
	Create(record *model.FootprintRecord) error
	FindBySessionID(sessionID string) ([]model.FootprintRecord, error)
}

// footprintRepository 是 FootprintRepository 的 GORM 实现。
type footprintRepository struct {
	db *gorm.DB
}

// NewFootprintRepository 创建一个新的 FootprintRepository 实例。
func NewFootprintRepository(db *gorm.DB) FootprintRepository {
	return &footprintRepository{db: db}
}

// Create 写入一条足迹记录。
func (r *footprintRepository) Create(record *model.FootprintRecord) error {
	return r.db.Create(record).Error
}

// FindBySessionID 按创建顺序返回会话的全部足迹记录。
func (r *footprintRepository) FindBySessionID(sessionID string) ([]model.FootprintRecord, error) {
	var records []model.FootprintRecord
	err := r.db.Where("session_id = ?", sessionID).Order("id ASC").Find(&records).Error
	return records, err
}
