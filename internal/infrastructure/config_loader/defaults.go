package loader

import "time"

const (
	// defaultConfPath is the fallback configuration directory when no overrides are provided.
	defaultConfPath = "configs"
	// envConfPath is the env var name that overrides configuration directory when flag is absent.
	envConfPath = "CONF_PATH"
	// defaultServiceName is used when SERVICE_NAME is missing.
	defaultServiceName = "services-edit"
	// defaultServiceVersion is used when SERVICE_VERSION is missing.
	defaultServiceVersion = "dev"
	// defaultEnvironment is used when APP_ENV is missing.
	defaultEnvironment = "development"

	defaultServerAddr     = "0.0.0.0:8080"
	defaultServerTimeout  = 60 * time.Second
	defaultSchema         = "edit"
	defaultRequestTimeout = 15 * time.Second
	defaultBlobTimeout    = 5 * time.Minute
	defaultStepTimeout    = 30 * time.Second
	defaultMaxUploadBytes = 512 << 20
	defaultMaxConcurrency = 4
	defaultSourceService  = "storycut-processing"
)

// applyDefaults 为缺省字段填入默认值。
func applyDefaults(rc *RuntimeConfig) {
	if rc == nil {
		return
	}
	if rc.Server.Addr == "" {
		rc.Server.Addr = defaultServerAddr
	}
	if rc.Server.Timeout <= 0 {
		rc.Server.Timeout = Duration(defaultServerTimeout)
	}
	if rc.Database.Schema == "" {
		rc.Database.Schema = defaultSchema
	}
	if rc.Gateway.RequestTimeout <= 0 {
		rc.Gateway.RequestTimeout = Duration(defaultRequestTimeout)
	}
	if rc.Gateway.BlobTimeout <= 0 {
		rc.Gateway.BlobTimeout = Duration(defaultBlobTimeout)
	}
	if rc.Submission.StepTimeout <= 0 {
		rc.Submission.StepTimeout = Duration(defaultStepTimeout)
	}
	if rc.Media.MaxUploadBytes <= 0 {
		rc.Media.MaxUploadBytes = defaultMaxUploadBytes
	}
	if rc.Messaging.MaxConcurrency <= 0 {
		rc.Messaging.MaxConcurrency = defaultMaxConcurrency
	}
	if rc.Messaging.SourceService == "" {
		rc.Messaging.SourceService = defaultSourceService
	}
}
