package model

import (
	"time"

	"gorm.io/datatypes"
)

// SecurityLog represents a persisted security event
type SecurityLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	EventType string         `json:"event_type" gorm:"column:event_type;type:varchar(64);index"`
	UserID    string         `json:"user_id" gorm:"column:user_id;type:varchar(64);index"`
	Username  string         `json:"username" gorm:"column:username;type:varchar(100);index"`
	IP        string         `json:"ip" gorm:"column:ip;type:varchar(45)"`
	UserAgent string         `json:"user_agent" gorm:"column:user_agent;type:varchar(512)"`
	Message   string         `json:"message" gorm:"column:message;type:text"`
	Details   datatypes.JSON `json:"details" gorm:"column:details"`
}

func (SecurityLog) TableName() string { return "SECURITY_LOG" }
