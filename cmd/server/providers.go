package main

import (
	"time"

	loader "github.com/storycut/services-edit/internal/infrastructure/config_loader"
	"github.com/storycut/services-edit/internal/services"
)

func provideSubmissionOptions(rc *loader.RuntimeConfig) services.SubmissionOptions {
	if rc == nil {
		return services.SubmissionOptions{}
	}
	return services.SubmissionOptions{
		StepTimeout: rc.Submission.StepTimeout.AsDuration(30 * time.Second),
	}
}
