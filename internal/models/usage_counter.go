package models

import "time"

// UsageCounter tracks how often an account used a quota-gated feature in one
// calendar month. Rows are created lazily on first use; a new period simply
// has no row yet, which reads as zero. Past periods are kept for audit.
type UsageCounter struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	AccountID uint   `gorm:"not null;uniqueIndex:idx_usage_account_feature_period"`
	Feature   string `gorm:"type:varchar(50);not null;uniqueIndex:idx_usage_account_feature_period"`
	Year      int    `gorm:"not null;uniqueIndex:idx_usage_account_feature_period"`
	Month     int    `gorm:"not null;uniqueIndex:idx_usage_account_feature_period"`

	Count int `gorm:"not null;default:0"`
}
