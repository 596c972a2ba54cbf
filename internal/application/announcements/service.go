package announcements

import (
	"context"
	"strings"

	"bondbook-backend/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

func (s *Service) Create(ctx context.Context, title, content string) (*domain.Announcement, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, domain.Validation("Title and content are required.")
	}
	a := domain.Announcement{Title: title, Content: content}
	if err := s.DB.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, domain.StoreFailure("create announcement", err)
	}
	return &a, nil
}

// Latest returns up to limit announcements, newest first. limit <= 0 means all.
func (s *Service) Latest(ctx context.Context, limit int) ([]domain.Announcement, error) {
	out := []domain.Announcement{}
	q := s.DB.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, domain.StoreFailure("list announcements", err)
	}
	return out, nil
}
