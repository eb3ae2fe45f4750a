package repositories

import (
	"context"
	"time"

	outboxpkg "github.com/bionicotaku/lingo-utils/outbox"
	outboxcfg "github.com/bionicotaku/lingo-utils/outbox/config"
	"github.com/bionicotaku/lingo-utils/outbox/store"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InboxEvent 描述需要写入 inbox_events 的事件数据。
type InboxEvent = store.InboxMessage

// InboxRepository 维护完成事件 Inbox 的写入/状态操作，
// 为推送通道提供跨重启的去重与重放能力。
type InboxRepository struct {
	delegate *store.Repository
}

// NewInboxRepository 构造 InboxRepository。
func NewInboxRepository(db *pgxpool.Pool, logger log.Logger, cfg outboxcfg.Config) *InboxRepository {
	storeRepo, err := outboxpkg.NewRepository(db, logger, outboxpkg.RepositoryOptions{Schema: cfg.Schema})
	if err != nil {
		log.NewHelper(logger).Errorw("msg", "init inbox repository failed", "error", err)
		storeRepo = store.NewRepository(db, logger)
	}
	return &InboxRepository{delegate: storeRepo}
}

// Insert 在给定事务会话内写入一条 inbox 事件。
func (r *InboxRepository) Insert(ctx context.Context, sess txmanager.Session, event InboxEvent) error {
	return r.delegate.RecordInboxEvent(ctx, sess, event)
}

// MarkProcessed 标记 inbox 事件处理完成。
func (r *InboxRepository) MarkProcessed(ctx context.Context, sess txmanager.Session, eventID uuid.UUID, processedAt time.Time) error {
	return r.delegate.MarkInboxProcessed(ctx, sess, eventID, processedAt)
}

// RecordError 记录 inbox 事件最近一次投递失败信息。
func (r *InboxRepository) RecordError(ctx context.Context, sess txmanager.Session, eventID uuid.UUID, lastErr string) error {
	return r.delegate.RecordInboxError(ctx, sess, eventID, lastErr)
}

// Shared 暴露底层 store 仓储，供通用 inbox Runner 复用。
func (r *InboxRepository) Shared() *store.Repository {
	return r.delegate
}
