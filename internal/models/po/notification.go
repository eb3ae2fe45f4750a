package po

import (
	"time"

	"github.com/google/uuid"
)

// Notification 描述 edit.notifications 表中的一条完成通知记录。
// 完成事件可能在提交会话销毁之后才到达，通知因此落库持久化，
// 供客户端下次激活时拉取。Generic 标记无法关联到已知作业的兜底通知。
type Notification struct {
	ID        uuid.UUID
	JobID     *int64
	Title     string
	Body      string
	Generic   bool
	Success   bool
	CreatedAt time.Time
	ReadAt    *time.Time
}
