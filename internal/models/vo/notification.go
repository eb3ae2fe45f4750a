package vo

import (
	"time"

	"github.com/storycut/services-edit/internal/models/po"

	"github.com/google/uuid"
)

// NotificationView 封装完成通知的对外视图。
type NotificationView struct {
	ID        uuid.UUID  `json:"id"`
	JobID     *int64     `json:"job_id,omitempty"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Generic   bool       `json:"generic"`
	Success   bool       `json:"success"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// NewNotificationView 从领域实体构造通知视图。
func NewNotificationView(n *po.Notification) *NotificationView {
	if n == nil {
		return nil
	}
	return &NotificationView{
		ID:        n.ID,
		JobID:     n.JobID,
		Title:     n.Title,
		Body:      n.Body,
		Generic:   n.Generic,
		Success:   n.Success,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}
