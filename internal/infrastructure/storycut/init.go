package storycut

import (
	"github.com/google/wire"
	"github.com/storycut/services-edit/internal/services"
)

// ProviderSet 暴露后端客户端构造器供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewClient,
	wire.Bind(new(services.VideoGateway), new(*Client)),
	wire.Bind(new(services.ImageGateway), new(*Client)),
	wire.Bind(new(services.ProcessingGateway), new(*Client)),
)
