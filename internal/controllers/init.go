package controllers

import (
	"time"

	"github.com/google/wire"
	loader "github.com/storycut/services-edit/internal/infrastructure/config_loader"
)

// ProviderSet 暴露 Controller 层构造函数供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	ProvideHandlerTimeouts,
	NewBaseHandler,
	NewDraftHandler,
	NewSubmissionHandler,
	NewNotificationHandler,
)

// ProvideHandlerTimeouts 从服务器配置推导 Handler 超时策略。
// 命令路径覆盖完整编排（含媒体传输），查询路径保持短超时。
func ProvideHandlerTimeouts(sc loader.ServerConfig) HandlerTimeouts {
	command := sc.Timeout.AsDuration(60 * time.Second)
	return HandlerTimeouts{
		Default: command,
		Command: command,
		Query:   5 * time.Second,
	}
}
