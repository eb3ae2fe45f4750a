package services

import "github.com/go-kratos/kratos/v2/errors"

// 错误原因常量，供 Controllers 映射 HTTP 状态码使用。
const (
	ReasonDraftNotFound      = "EDIT_DRAFT_NOT_FOUND"
	ReasonSubmissionInFlight = "EDIT_SUBMISSION_IN_FLIGHT"
	ReasonDraftInvalid       = "EDIT_DRAFT_INVALID"
	ReasonUnauthorized       = "EDIT_UNAUTHORIZED"
)

// ErrDraftNotFound 在草稿会话不存在或已销毁时返回。
var ErrDraftNotFound = errors.NotFound(ReasonDraftNotFound, "draft session not found")

// ErrSubmissionInFlight 在同一草稿已有编排运行时返回，第二次提交是拒绝而非排队。
var ErrSubmissionInFlight = errors.Conflict(ReasonSubmissionInFlight, "submission already in flight")
