package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storycut/services-edit/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotificationNotFound 表示通知不存在。
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository 封装 edit.notifications 表的访问逻辑。
// 写入方是完成事件消费任务，读取方是客户端轮询接口，二者通过数据库解耦。
type NotificationRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewNotificationRepository 构造 NotificationRepository。
func NewNotificationRepository(db *pgxpool.Pool, logger log.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// CreateNotificationInput 描述写入完成通知所需的字段。
type CreateNotificationInput struct {
	JobID   *int64
	Title   string
	Body    string
	Generic bool
	Success bool
}

const notificationColumns = `id, job_id, title, body, generic, success, created_at, read_at`

// Insert 写入一条完成通知。
func (r *NotificationRepository) Insert(ctx context.Context, sess txmanager.Session, input CreateNotificationInput) (*po.Notification, error) {
	q := runnerFor(r.db, sess)

	row := q.QueryRow(ctx, `
		INSERT INTO edit.notifications (id, job_id, title, body, generic, success)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+notificationColumns,
		uuid.New(), input.JobID, input.Title, input.Body, input.Generic, input.Success,
	)
	notification, err := scanNotification(row)
	if err != nil {
		r.log.WithContext(ctx).Errorf("insert notification failed: title=%s err=%v", input.Title, err)
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return notification, nil
}

// ListRecent 按时间倒序返回最近的通知。
func (r *NotificationRepository) ListRecent(ctx context.Context, sess txmanager.Session, limit int32) ([]*po.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	q := runnerFor(r.db, sess)

	rows, err := q.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM edit.notifications
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		r.log.WithContext(ctx).Errorf("list notifications failed: err=%v", err)
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var items []*po.Notification
	for rows.Next() {
		n, scanErr := scanNotification(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan notification: %w", scanErr)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return items, nil
}

// MarkRead 标记通知为已读，返回更新后的记录。
func (r *NotificationRepository) MarkRead(ctx context.Context, sess txmanager.Session, id uuid.UUID, readAt time.Time) (*po.Notification, error) {
	q := runnerFor(r.db, sess)

	row := q.QueryRow(ctx, `
		UPDATE edit.notifications
		SET read_at = COALESCE(read_at, $2)
		WHERE id = $1
		RETURNING `+notificationColumns,
		id, readAt.UTC(),
	)
	notification, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		r.log.WithContext(ctx).Errorf("mark notification read failed: id=%s err=%v", id, err)
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return notification, nil
}

func scanNotification(row pgx.Row) (*po.Notification, error) {
	var n po.Notification
	if err := row.Scan(&n.ID, &n.JobID, &n.Title, &n.Body, &n.Generic, &n.Success, &n.CreatedAt, &n.ReadAt); err != nil {
		return nil, err
	}
	return &n, nil
}
