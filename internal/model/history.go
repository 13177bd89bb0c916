package model

import (
	"time"

	"gorm.io/gorm"
)

type SyncStatus string

const (
	StatusSuccess SyncStatus = "SUCCESS"
	StatusFailed  SyncStatus = "FAILED"
)

type History struct {
	gorm.Model
	Status    SyncStatus `gorm:"not null;index"`
	Action    Action     `gorm:"not null"`
	RemoteKey string     `gorm:"not null"`
	LocalPath string
	ErrMsg    string
	SyncedAt  time.Time `gorm:"not null;index"`
}
