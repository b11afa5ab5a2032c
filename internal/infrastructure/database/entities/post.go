package entities

import "time"

// Post is the persisted post row.
type Post struct {
	ID        string    `gorm:"type:varchar(40);primaryKey"`
	UserID    string    `gorm:"type:varchar(255);index:idx_posts_user_id;not null"`
	Caption   string    `gorm:"type:text;not null"`
	URL       string    `gorm:"type:text;not null"`
	FileType  string    `gorm:"type:varchar(16);not null"`
	FileName  string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"index:idx_posts_created_at;not null"`
}

func (Post) TableName() string {
	return "posts"
}
