package loader

import (
	obswire "github.com/bionicotaku/lingo-utils/observability"
	outboxcfg "github.com/bionicotaku/lingo-utils/outbox/config"
	txconfig "github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/wire"
)

// ProviderSet exposes configuration-derived dependencies for Wire graphs.
var ProviderSet = wire.NewSet(
	ProvideServiceMetadata,
	ProvideRuntimeConfig,
	ProvideServerConfig,
	ProvideDatabaseConfig,
	ProvideGatewayConfig,
	ProvideMessagingConfig,
	ProvideMediaConfig,
	ProvideOutboxConfig,
	ProvideObservabilityConfig,
	ProvideTxConfig,
)

// ProvideServiceMetadata returns the resolved ServiceMetadata from the loader.
func ProvideServiceMetadata(l *Loader) ServiceMetadata {
	if l == nil {
		return ServiceMetadata{}
	}
	return l.Service
}

// ProvideRuntimeConfig exposes the strongly typed runtime configuration.
func ProvideRuntimeConfig(l *Loader) *RuntimeConfig {
	if l == nil {
		return nil
	}
	return l.Runtime
}

// ProvideServerConfig returns the server section of the runtime configuration.
func ProvideServerConfig(rc *RuntimeConfig) ServerConfig {
	if rc == nil {
		return ServerConfig{}
	}
	return rc.Server
}

// ProvideDatabaseConfig returns the database section of the runtime configuration.
func ProvideDatabaseConfig(rc *RuntimeConfig) DatabaseConfig {
	if rc == nil {
		return DatabaseConfig{}
	}
	return rc.Database
}

// ProvideGatewayConfig returns the StoryCut gateway section of the runtime configuration.
func ProvideGatewayConfig(rc *RuntimeConfig) GatewayConfig {
	if rc == nil {
		return GatewayConfig{}
	}
	return rc.Gateway
}

// ProvideMessagingConfig returns the Pub/Sub section of the runtime configuration.
func ProvideMessagingConfig(rc *RuntimeConfig) MessagingConfig {
	if rc == nil {
		return MessagingConfig{}
	}
	return rc.Messaging
}

// ProvideMediaConfig returns the upload spool section of the runtime configuration.
func ProvideMediaConfig(rc *RuntimeConfig) MediaConfig {
	if rc == nil {
		return MediaConfig{}
	}
	return rc.Media
}

// ProvideOutboxConfig derives the inbox consumer configuration.
func ProvideOutboxConfig(rc *RuntimeConfig) outboxcfg.Config {
	if rc == nil {
		return outboxcfg.Config{}
	}
	return outboxcfg.Config{
		Schema: rc.Database.Schema,
		Inbox: outboxcfg.InboxConfig{
			SourceService:  rc.Messaging.SourceService,
			MaxConcurrency: rc.Messaging.MaxConcurrency,
		},
	}
}

// ProvideObservabilityConfig exposes the normalized observability configuration.
func ProvideObservabilityConfig(l *Loader) obswire.ObservabilityConfig {
	if l == nil {
		return obswire.ObservabilityConfig{}
	}
	return l.ObsConfig
}

// ProvideTxConfig exposes transaction manager tuning derived from configuration.
func ProvideTxConfig(l *Loader) txconfig.Config {
	if l == nil {
		return txconfig.Config{}
	}
	return l.TxConfig
}
