package server

import "github.com/google/wire"

// ProviderSet 暴露传输层构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewTelemetry,
	NewHTTPServer,
)
