package main

import (
	"context"
	"fmt"

	loader "github.com/storycut/services-edit/internal/infrastructure/config_loader"
	loginfra "github.com/storycut/services-edit/internal/infrastructure/logger"
	completiontasks "github.com/storycut/services-edit/internal/tasks/completions"

	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5/pgxpool"
)

func provideLogger(l *loader.Loader) (log.Logger, error) {
	if l == nil {
		return nil, fmt.Errorf("loader not initialized")
	}
	return loginfra.NewLogger(l.LoggerCfg)
}

func provideTxManager(pool *pgxpool.Pool, cfg txmanager.Config, logger log.Logger) (txmanager.Manager, error) {
	return txmanager.NewManager(pool, cfg, txmanager.Dependencies{Logger: logger})
}

// provideSubscriber 装配 Pub/Sub 订阅组件。订阅未配置时返回 nil，
// Runner 构建侧据此把任务降级为关闭状态。
func provideSubscriber(ctx context.Context, cfg loader.MessagingConfig, logger log.Logger) (gcpubsub.Subscriber, func(), error) {
	if cfg.ProjectID == "" || cfg.SubscriptionID == "" {
		return nil, func() {}, nil
	}

	component, cleanup, err := gcpubsub.NewComponent(ctx, gcpubsub.Config{
		ProjectID:        cfg.ProjectID,
		TopicID:          cfg.TopicID,
		SubscriptionID:   cfg.SubscriptionID,
		EmulatorEndpoint: cfg.EmulatorEndpoint,
	}, gcpubsub.Dependencies{Logger: logger})
	if err != nil {
		return nil, nil, fmt.Errorf("init pubsub component: %w", err)
	}
	return gcpubsub.ProvideSubscriber(component), cleanup, nil
}

func newCompletionsTaskApp(logger log.Logger, runner *completiontasks.Runner) (*completionsTaskApp, error) {
	if runner == nil {
		return &completionsTaskApp{Logger: logger}, nil
	}
	if logger == nil {
		return nil, fmt.Errorf("logger not initialized")
	}
	return &completionsTaskApp{
		Runner: runner,
		Logger: logger,
	}, nil
}
