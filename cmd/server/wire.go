//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"context"

	"github.com/storycut/services-edit/internal/controllers"
	loader "github.com/storycut/services-edit/internal/infrastructure/config_loader"
	"github.com/storycut/services-edit/internal/infrastructure/database"
	"github.com/storycut/services-edit/internal/infrastructure/storycut"
	"github.com/storycut/services-edit/internal/repositories"
	"github.com/storycut/services-edit/internal/server"
	"github.com/storycut/services-edit/internal/services"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(context.Context, *loader.Loader, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		loader.ProviderSet,
		database.ProviderSet,
		storycut.ProviderSet,
		repositories.ProviderSet,
		services.ProviderSet,
		controllers.ProviderSet,
		server.ProviderSet,
		provideSubmissionOptions,
		newApp,
	))
}
