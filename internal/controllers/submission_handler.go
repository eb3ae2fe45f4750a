package controllers

import (
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	"github.com/storycut/services-edit/internal/services"
)

// SubmissionHandler 暴露草稿提交接口。
type SubmissionHandler struct {
	*BaseHandler

	submissions *services.SubmissionService
	log         *log.Helper
}

// NewSubmissionHandler 构造 SubmissionHandler。
func NewSubmissionHandler(base *BaseHandler, submissions *services.SubmissionService, logger log.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler: base,
		submissions: submissions,
		log:         log.NewHelper(log.With(logger, "module", "controllers/submission")),
	}
}

// Submit 触发一次提交编排，同步返回结构化结果。
// 编排结果（含业务性失败）以 200 返回；会话不存在与重复提交走错误通道。
func (h *SubmissionHandler) Submit(ctx khttp.Context) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	creds := h.ExtractCredentials(ctx.Request().Header)
	if creds.AccessToken == "" {
		h.log.Warnf("submit rejected, missing access token: session_id=%s", id)
		return kerrors.Unauthorized(services.ReasonUnauthorized, "access token is required")
	}

	runCtx, cancel := h.WithTimeout(ctx.Request().Context(), HandlerTypeCommand)
	defer cancel()

	outcome, err := h.submissions.Submit(runCtx, services.SubmitInput{
		SessionID:   id,
		AccessToken: creds.AccessToken,
		DeviceToken: creds.DeviceToken,
	})
	if err != nil {
		h.log.WithContext(runCtx).Warnf("submit aborted: session_id=%s error=%v", id, err)
		return err
	}
	if !outcome.Accepted() {
		h.log.WithContext(runCtx).Warnf("submission failed: session_id=%s stage=%s", id, outcome.Failure)
	}
	return ctx.Result(200, outcome)
}
