package models

import (
	"time"

	"gorm.io/gorm"
)

// UserSettings stores per-user plan entitlement and the marketing credit
// balance. Plan is written only by the billing reconciler; CreditBalance only
// through GrantCredits/SpendCredits so the ledger stays consistent.
type UserSettings struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	UserID             uint           `gorm:"uniqueIndex" json:"user_id"`
	Plan               string         `gorm:"type:varchar(50);default:'starter'" json:"plan"`
	CreditBalance      int64          `gorm:"not null;default:0" json:"credit_balance"`
	PrefReminderEmails bool           `gorm:"default:true" json:"pref_reminder_emails"`
	PrefWeeklyReport   bool           `gorm:"default:false" json:"pref_weekly_report"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// GetOrCreateUserSettings returns existing settings or creates defaults
func GetOrCreateUserSettings(db *gorm.DB, userID uint) (*UserSettings, error) {
	var us UserSettings
	if err := db.Where("user_id = ?", userID).First(&us).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			us = UserSettings{UserID: userID, Plan: "starter", PrefReminderEmails: true}
			if err := db.Create(&us).Error; err != nil {
				return nil, err
			}
			return &us, nil
		}
		return nil, err
	}
	return &us, nil
}
