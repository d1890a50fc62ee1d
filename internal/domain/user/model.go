package user

import "time"

type User struct {
	UUID           string     `gorm:"primaryKey;column:uuid"`
	Username       string     `gorm:"not null;uniqueIndex"`
	PasswordHash   string     `gorm:"not null"`
	LastSyncedTime *time.Time `gorm:"column:last_synced_time"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
}
