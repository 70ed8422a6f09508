package models

import (
	"time"
)

// OrderSession is one time-boxed ordering window bound to a physical table.
// Start and end times are computed in the application and stored as absolute
// timestamps; they are never derived from SQL date arithmetic, so the expiry
// clock cannot drift between the app and database time zones.
type OrderSession struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	SessionID   string     `gorm:"type:varchar(50);unique;not null" json:"session_id"`
	TableNumber int        `gorm:"not null;index" json:"table_number"`
	StartTime   time.Time  `gorm:"not null" json:"start_time"`
	EndTime     time.Time  `gorm:"not null" json:"end_time"`
	IsPaused    bool       `gorm:"not null;default:false" json:"is_paused"`
	IsFinished  bool       `gorm:"not null;default:false" json:"is_finished"`
	PausedAt    *time.Time `json:"paused_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
}

// IsActive reports whether the session is still accepting orders at t.
func (s *OrderSession) IsActive(t time.Time) bool {
	return !s.IsFinished && t.Before(s.EndTime)
}

// RemainingAt returns how much ordering time is left at t, never negative.
func (s *OrderSession) RemainingAt(t time.Time) time.Duration {
	if s.IsFinished || !t.Before(s.EndTime) {
		return 0
	}
	return s.EndTime.Sub(t)
}
