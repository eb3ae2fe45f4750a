package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/storycut/services-edit/internal/models/vo"
	"github.com/storycut/services-edit/internal/repositories"
)

// NotificationService 提供完成通知的查询与已读标记。
// 通知由完成事件消费侧写入，这里只做读路径的薄封装。
type NotificationService struct {
	notifications *repositories.NotificationRepository
	log           *log.Helper
}

// NewNotificationService 创建 NotificationService。
func NewNotificationService(notifications *repositories.NotificationRepository, logger log.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		log:           log.NewHelper(log.With(logger, "module", "services/notification")),
	}
}

// ListRecent 按时间倒序返回最近的通知视图。
func (s *NotificationService) ListRecent(ctx context.Context, limit int32) ([]*vo.NotificationView, error) {
	items, err := s.notifications.ListRecent(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	views := make([]*vo.NotificationView, 0, len(items))
	for _, item := range items {
		views = append(views, vo.NewNotificationView(item))
	}
	return views, nil
}

// MarkRead 标记单条通知已读，重复标记保持首次时间。
func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) (*vo.NotificationView, error) {
	updated, err := s.notifications.MarkRead(ctx, nil, id, at)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return nil, kerrors.NotFound("EDIT_NOTIFICATION_NOT_FOUND", "notification not found")
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}

	return vo.NewNotificationView(updated), nil
}
