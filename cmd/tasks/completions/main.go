// Package main 提供完成事件 Runner 的独立进程入口，便于后台单独运行。
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	loader "github.com/storycut/services-edit/internal/infrastructure/config_loader"
	completiontasks "github.com/storycut/services-edit/internal/tasks/completions"

	"github.com/go-kratos/kratos/v2/log"
)

type completionsTaskApp struct {
	Runner *completiontasks.Runner
	Logger log.Logger
}

func main() {
	ctx := context.Background()

	confFlag := flag.String("conf", "", "config path or directory, eg: -conf configs/config.yaml")
	flag.Parse()

	params := loader.Params{ConfPath: *confFlag}
	app, cleanup, err := wireCompletionsTask(ctx, params)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	logger := app.Logger
	if logger == nil {
		logger = log.NewStdLogger(os.Stdout)
	}
	helper := log.NewHelper(logger)

	if app.Runner == nil {
		helper.Warn("completions runner disabled (missing messaging configuration)")
		return
	}

	helper.Info("starting completions runner")

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Runner.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		helper.Errorf("completions runner stopped unexpectedly: %v", err)
		os.Exit(1)
	}

	helper.Info("completions runner stopped")
}
