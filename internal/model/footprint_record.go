package model

import "time"

// FootprintRecord 对应 footprint_records 表，记录聊天中产生的每一次足迹估算。
type FootprintRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"type:varchar(64);index;not null" json:"sessionId"`
	Activity  string    `gorm:"type:varchar(32);not null" json:"activity"`
	Quantity  float64   `gorm:"not null" json:"quantity"`
	Unit      string    `gorm:"type:varchar(8);not null" json:"unit"`
	KgCO2     float64   `gorm:"column:kg_co2;not null" json:"kgCO2"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (FootprintRecord) TableName() string {
	return "footprint_records"
}
