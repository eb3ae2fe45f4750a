package completions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-utils/outbox/store"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/storycut/services-edit/internal/models/po"
	"github.com/storycut/services-edit/internal/repositories"
)

const (
	processingCompletedEvent = "video.processing.completed"

	genericTitle = "Video processing"
)

type jobRepository interface {
	GetByID(ctx context.Context, sess txmanager.Session, jobID int64) (*po.ProcessingJob, error)
	MarkTerminal(ctx context.Context, sess txmanager.Session, input repositories.MarkTerminalInput) (*po.ProcessingJob, error)
}

type notificationRepository interface {
	Insert(ctx context.Context, sess txmanager.Session, input repositories.CreateNotificationInput) (*po.Notification, error)
}

// Handler 处理完成事件：把作业迁到终态并落一条可供客户端拉取的通知。
// 结果体可解析且作业已知时产出带标题的通知；否则降级为兜底通知，绝不丢事件。
type Handler struct {
	jobs          jobRepository
	notifications notificationRepository
	metrics       *taskMetrics
	log           *log.Helper
	now           func() time.Time
}

// NewHandler 构造完成事件处理器。
func NewHandler(jobs jobRepository, notifications notificationRepository, logger log.Logger) *Handler {
	if logger == nil {
		logger = log.NewStdLogger(nil)
	}
	return &Handler{
		jobs:          jobs,
		notifications: notifications,
		metrics:       newTaskMetrics(),
		log:           log.NewHelper(logger),
		now:           time.Now,
	}
}

// Handle 执行完成事件的业务处理。
func (h *Handler) Handle(ctx context.Context, sess txmanager.Session, evt *Event, inboxEvt *store.InboxEvent) error {
	if evt == nil {
		return fmt.Errorf("completions: nil event payload")
	}
	if inboxEvt == nil {
		return fmt.Errorf("completions: missing inbox event metadata")
	}
	if inboxEvt.EventType != "" && !strings.EqualFold(inboxEvt.EventType, processingCompletedEvent) {
		return nil
	}
	if h.jobs == nil || h.notifications == nil {
		return fmt.Errorf("completions: handler not initialized")
	}

	result, ok := evt.JobResult()
	if !ok {
		// 结果体缺失或畸形：事件仍然有意义，走兜底通知。
		h.log.WithContext(ctx).Warnf("completions: unparseable result, falling back code=%d message=%s", evt.Code, evt.Message)
		h.metrics.recordFallback(ctx)
		return h.insertFallback(ctx, sess, nil, evt)
	}

	job, err := h.jobs.GetByID(ctx, sess, result.JobID)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			h.log.WithContext(ctx).Warnf("completions: event for unknown job job_id=%d", result.JobID)
			h.metrics.recordFallback(ctx)
			return h.insertFallback(ctx, sess, result, evt)
		}
		return fmt.Errorf("completions: load job: %w", err)
	}

	if job.Status.Terminal() {
		h.log.WithContext(ctx).Debugf("completions: skip duplicate event job_id=%d status=%s", job.JobID, job.Status)
		return nil
	}

	status := po.JobStatusCompleted
	var errorMessage *string
	if !evt.Succeeded() {
		status = po.JobStatusFailed
		if evt.Message != "" {
			msg := evt.Message
			errorMessage = &msg
		}
	}

	var resultURL *string
	if result.VideoURL != "" {
		url := result.VideoURL
		resultURL = &url
	}

	if _, err := h.jobs.MarkTerminal(ctx, sess, repositories.MarkTerminalInput{
		JobID:        result.JobID,
		Status:       status,
		ResultURL:    resultURL,
		ErrorMessage: errorMessage,
		EventAt:      h.now().UTC(),
	}); err != nil {
		return fmt.Errorf("completions: mark terminal: %w", err)
	}

	title := result.Title
	if title == "" {
		title = job.Title
	}
	body := fmt.Sprintf("%q finished processing", title)
	if status == po.JobStatusFailed {
		body = fmt.Sprintf("%q failed to process", title)
		if evt.Message != "" {
			body = fmt.Sprintf("%s: %s", body, evt.Message)
		}
	}

	if _, err := h.notifications.Insert(ctx, sess, repositories.CreateNotificationInput{
		JobID:   &result.JobID,
		Title:   title,
		Body:    body,
		Generic: false,
		Success: status == po.JobStatusCompleted,
	}); err != nil {
		return fmt.Errorf("completions: insert notification: %w", err)
	}

	h.metrics.recordProcessed(ctx)
	h.log.WithContext(ctx).Infof("completions: job finalized job_id=%d status=%s", result.JobID, status)
	return nil
}

// insertFallback 写入一条无作业关联（或未知作业）的兜底通知。
func (h *Handler) insertFallback(ctx context.Context, sess txmanager.Session, result *JobResult, evt *Event) error {
	input := repositories.CreateNotificationInput{
		Title:   genericTitle,
		Body:    evt.Message,
		Generic: true,
		Success: evt.Succeeded(),
	}
	if input.Body == "" {
		input.Body = "Your video has finished processing"
	}
	if result != nil {
		input.JobID = &result.JobID
		if result.Title != "" {
			input.Title = result.Title
			input.Generic = false
		}
	}

	if _, err := h.notifications.Insert(ctx, sess, input); err != nil {
		return fmt.Errorf("completions: insert fallback notification: %w", err)
	}
	return nil
}
