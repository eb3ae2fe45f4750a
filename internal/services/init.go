package services

import (
	"github.com/google/wire"
	"github.com/storycut/services-edit/internal/repositories"
)

// ProviderSet 暴露 Service 层构造函数供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	NewDraftService,
	NewAssetService,
	NewMosaicService,
	NewNotificationService,
	NewSubmissionService,
	wire.Bind(new(JobRecorder), new(*repositories.JobRepository)),
)
