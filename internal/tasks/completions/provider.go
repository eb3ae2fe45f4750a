package completions

import (
	"github.com/bionicotaku/lingo-utils/gcpubsub"
	outboxcfg "github.com/bionicotaku/lingo-utils/outbox/config"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/storycut/services-edit/internal/repositories"
)

// ProvideRunner 装配 Completions Runner。
func ProvideRunner(
	jobRepo *repositories.JobRepository,
	notificationRepo *repositories.NotificationRepository,
	inboxRepo *repositories.InboxRepository,
	tx txmanager.Manager,
	sub gcpubsub.Subscriber,
	outboxCfg outboxcfg.Config,
	logger log.Logger,
) *Runner {
	if jobRepo == nil || notificationRepo == nil || inboxRepo == nil || sub == nil || logger == nil {
		return nil
	}

	runner, err := NewRunner(RunnerParams{
		Subscriber:       sub,
		InboxRepo:        inboxRepo,
		JobRepo:          jobRepo,
		NotificationRepo: notificationRepo,
		TxManager:        tx,
		Logger:           logger,
		Config:           outboxCfg.Inbox,
	})
	if err != nil {
		log.NewHelper(logger).Errorw("msg", "init completions runner failed", "error", err)
		return nil
	}
	return runner
}
