package controllers

import (
	"strconv"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"

	"github.com/storycut/services-edit/internal/services"
)

// NotificationHandler 暴露完成通知的查询与已读标记接口。
type NotificationHandler struct {
	*BaseHandler

	notifications *services.NotificationService
	log           *log.Helper
}

// NewNotificationHandler 构造 NotificationHandler。
func NewNotificationHandler(base *BaseHandler, notifications *services.NotificationService, logger log.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:   base,
		notifications: notifications,
		log:           log.NewHelper(log.With(logger, "module", "controllers/notification")),
	}
}

// ListNotifications 按时间倒序返回最近通知，limit 查询参数可选。
func (h *NotificationHandler) ListNotifications(ctx khttp.Context) error {
	var limit int32
	if raw := ctx.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 0 {
			h.log.Debugf("rejected limit parameter: %q", raw)
			return kerrors.BadRequest(services.ReasonDraftInvalid, "limit must be a non-negative integer")
		}
		limit = int32(parsed)
	}

	queryCtx, cancel := h.WithTimeout(ctx.Request().Context(), HandlerTypeQuery)
	defer cancel()

	views, err := h.notifications.ListRecent(queryCtx, limit)
	if err != nil {
		return err
	}
	return ctx.Result(200, views)
}

// MarkNotificationRead 标记单条通知已读。
func (h *NotificationHandler) MarkNotificationRead(ctx khttp.Context) error {
	raw := ctx.Vars().Get("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		h.log.Debugf("rejected notification id: %q", raw)
		return kerrors.BadRequest(services.ReasonDraftInvalid, "notification id must be a uuid")
	}

	cmdCtx, cancel := h.WithTimeout(ctx.Request().Context(), HandlerTypeCommand)
	defer cancel()

	view, err := h.notifications.MarkRead(cmdCtx, id, time.Now())
	if err != nil {
		return err
	}
	return ctx.Result(200, view)
}
