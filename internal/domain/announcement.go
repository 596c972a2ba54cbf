package domain

import "time"

type Announcement struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (Announcement) TableName() string {
	return "announcements"
}
