package repository

import (
	"time"

	"gorm.io/gorm"

	"rubox/internal/model"
)

type HistoryRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db, now: time.Now}
}

func (r *HistoryRepository) Save(result model.SyncResult) error {
	status := model.StatusSuccess
	errMsg := ""
	if result.Err != nil {
		status = model.StatusFailed
		errMsg = result.Err.Error()
	}

	history := model.History{
		Status:    status,
		Action:    result.Decision.Action,
		RemoteKey: result.Decision.RemoteKey(),
		LocalPath: result.LocalPath,
		ErrMsg:    errMsg,
		SyncedAt:  r.now(),
	}

	return r.db.Create(&history).Error
}

type Stats struct {
	Total   int64 `json:"total"`
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
}

func (r *HistoryRepository) GetStats() (Stats, error) {
	var stats Stats
	if err := r.db.Model(&model.History{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	if err := r.db.Model(&model.History{}).
		Where("status = ?", model.StatusSuccess).
		Count(&stats.Success).Error; err != nil {
		return stats, err
	}

	stats.Failed = stats.Total - stats.Success
	return stats, nil
}

func (r *HistoryRepository) GetRecent(limit int) ([]model.History, error) {
	var histories []model.History
	result := r.db.
		Order("synced_at desc, id desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}

func (r *HistoryRepository) GetFailed(limit int) ([]model.History, error) {
	var histories []model.History
	result := r.db.
		Where("status = ?", model.StatusFailed).
		Order("synced_at desc, id desc").
		Limit(limit).
		Find(&histories)

	return histories, result.Error
}

// Prune deletes rows older than the cutoff and returns how many went.
func (r *HistoryRepository) Prune(before time.Time) (int64, error) {
	result := r.db.Unscoped().
		Where("synced_at < ?", before).
		Delete(&model.History{})

	return result.RowsAffected, result.Error
}
