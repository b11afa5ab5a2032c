package entities

import "time"

// User is the persisted account row.
type User struct {
	ID             string    `gorm:"type:varchar(255);primaryKey"`
	Email          string    `gorm:"type:varchar(320);uniqueIndex:idx_user_email;not null"`
	HashedPassword string    `gorm:"type:varchar(1024);not null"`
	IsActive       bool      `gorm:"not null"`
	IsSuperuser    bool      `gorm:"not null"`
	IsVerified     bool      `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (User) TableName() string {
	return "user"
}
