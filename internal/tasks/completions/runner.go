package completions

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/bionicotaku/lingo-utils/outbox/config"
	"github.com/bionicotaku/lingo-utils/outbox/inbox"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/storycut/services-edit/internal/repositories"
)

// Runner 负责消费处理完成事件。
type Runner struct {
	delegate *inbox.Runner[Event]
}

// RunnerParams 注入构建 Runner 所需的依赖。
type RunnerParams struct {
	Subscriber       gcpubsub.Subscriber
	InboxRepo        *repositories.InboxRepository
	JobRepo          *repositories.JobRepository
	NotificationRepo *repositories.NotificationRepository
	TxManager        txmanager.Manager
	Logger           log.Logger
	Config           config.InboxConfig
}

// NewRunner 构造完成事件 Runner。
func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Subscriber == nil {
		return nil, fmt.Errorf("completions: subscriber is required")
	}
	if params.InboxRepo == nil {
		return nil, fmt.Errorf("completions: inbox repository is required")
	}
	if params.JobRepo == nil {
		return nil, fmt.Errorf("completions: job repository is required")
	}
	if params.NotificationRepo == nil {
		return nil, fmt.Errorf("completions: notification repository is required")
	}
	if params.TxManager == nil {
		return nil, fmt.Errorf("completions: transaction manager is required")
	}

	handler := NewHandler(params.JobRepo, params.NotificationRepo, params.Logger)
	decoder := newDecoder()

	delegate, err := inbox.NewRunner[Event](inbox.RunnerParams[Event]{
		Store:      params.InboxRepo.Shared(),
		Subscriber: params.Subscriber,
		TxManager:  params.TxManager,
		Decoder:    decoder,
		Handler:    handler,
		Config:     params.Config,
		Logger:     params.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Runner{delegate: delegate}, nil
}

// Run 启动消费循环。
func (r *Runner) Run(ctx context.Context) error {
	if r == nil || r.delegate == nil {
		return nil
	}
	return r.delegate.Run(ctx)
}
