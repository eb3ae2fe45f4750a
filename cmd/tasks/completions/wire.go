//go:build wireinject
// +build wireinject

// Package main 为 completions 任务 CLI 提供 Wire 依赖注入定义。
package main

import (
	"context"

	loader "github.com/storycut/services-edit/internal/infrastructure/config_loader"
	"github.com/storycut/services-edit/internal/infrastructure/database"
	"github.com/storycut/services-edit/internal/repositories"
	completiontasks "github.com/storycut/services-edit/internal/tasks/completions"

	"github.com/google/wire"
)

//go:generate go run github.com/google/wire/cmd/wire

func wireCompletionsTask(context.Context, loader.Params) (*completionsTaskApp, func(), error) {
	panic(wire.Build(
		loader.Build,
		loader.ProviderSet,
		provideLogger,
		database.ProviderSet,
		provideTxManager,
		provideSubscriber,
		repositories.ProviderSet,
		completiontasks.ProvideRunner,
		newCompletionsTaskApp,
	))
}
