// Package loader 负责从配置文件与环境变量构建强类型运行时配置。
package loader

import (
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	loginfra "github.com/storycut/services-edit/internal/infrastructure/logger"

	obswire "github.com/bionicotaku/lingo-utils/observability"
	txconfig "github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/joho/godotenv"
)

const (
	envServiceName    = "SERVICE_NAME"
	envServiceVersion = "SERVICE_VERSION"
	envAppEnv         = "APP_ENV"
	envDatabaseURL    = "DATABASE_URL"
	envPort           = "PORT"
	envGatewayBaseURL = "STORYCUT_API_BASE_URL"
	envPubsubEmulator = "PUBSUB_EMULATOR_HOST"
)

var envFileNames = []string{".env.local", ".env"}

// Duration 包装 time.Duration，支持从 YAML/JSON 的 "30s" 字符串形式解析。
type Duration time.Duration

// UnmarshalJSON 实现 json.Unmarshaler。
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", v, err)
		}
		*d = Duration(parsed)
		return nil
	case float64:
		*d = Duration(time.Duration(v) * time.Second)
		return nil
	default:
		return fmt.Errorf("duration: unsupported type %T", raw)
	}
}

// AsDuration 返回标准库表示，零值回退到给定默认值。
func (d Duration) AsDuration(fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return time.Duration(d)
}

// ServerConfig 描述 HTTP 服务器监听参数。
type ServerConfig struct {
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

// DatabaseConfig 描述 Postgres 连接池参数。
type DatabaseConfig struct {
	DSN                       string   `json:"dsn"`
	Schema                    string   `json:"schema"`
	MaxConns                  int32    `json:"max_conns"`
	MinConns                  int32    `json:"min_conns"`
	MaxConnLifetime           Duration `json:"max_conn_lifetime"`
	MaxConnIdleTime           Duration `json:"max_conn_idle_time"`
	HealthCheckPeriod         Duration `json:"health_check_period"`
	ConnectTimeout            Duration `json:"connect_timeout"`
	DisablePreparedStatements bool     `json:"disable_prepared_statements"`
}

// GatewayConfig 描述 StoryCut 后端 API 的访问参数。
type GatewayConfig struct {
	BaseURL        string   `json:"base_url"`
	RequestTimeout Duration `json:"request_timeout"`
	BlobTimeout    Duration `json:"blob_timeout"`
}

// MessagingConfig 描述完成事件订阅的 Pub/Sub 参数。
type MessagingConfig struct {
	ProjectID        string `json:"project_id"`
	TopicID          string `json:"topic_id"`
	SubscriptionID   string `json:"subscription_id"`
	EmulatorEndpoint string `json:"emulator_endpoint"`
	SourceService    string `json:"source_service"`
	MaxConcurrency   int    `json:"max_concurrency"`
}

// SubmissionConfig 描述提交编排参数。
type SubmissionConfig struct {
	StepTimeout Duration `json:"step_timeout"`
}

// MediaConfig 描述上传暂存参数。
type MediaConfig struct {
	SpoolDir       string `json:"spool_dir"`
	MaxUploadBytes int64  `json:"max_upload_bytes"`
}

// RuntimeConfig 聚合全部配置片段。
type RuntimeConfig struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Gateway    GatewayConfig    `json:"gateway"`
	Messaging  MessagingConfig  `json:"messaging"`
	Submission SubmissionConfig `json:"submission"`
	Media      MediaConfig      `json:"media"`
}

// ServiceMetadata 保存服务标识信息，供日志和可观测性组件使用。
type ServiceMetadata struct {
	Name        string
	Version     string
	Environment string
	InstanceID  string
}

// ObservabilityInfo 将服务元信息转换为 observability.ServiceInfo。
func (m ServiceMetadata) ObservabilityInfo() obswire.ServiceInfo {
	return obswire.ServiceInfo{
		Name:        m.Name,
		Version:     m.Version,
		Environment: m.Environment,
	}
}

// LoggerConfig 将服务元信息转换为日志组件配置。
func (m ServiceMetadata) LoggerConfig() loginfra.Config {
	return loginfra.Config{
		Service: m.Name,
		Version: m.Version,
		HostID:  m.InstanceID,
		Env:     m.Environment,
	}
}

// Params 包含构造 Loader 所需的运行时输入参数。
type Params struct {
	ConfPath string // 配置文件路径（可为空，使用默认值）
}

// Loader 聚合强类型配置，供下游 Wire 注入使用。
type Loader struct {
	Runtime   *RuntimeConfig
	Service   ServiceMetadata
	LoggerCfg loginfra.Config
	ObsConfig obswire.ObservabilityConfig
	TxConfig  txconfig.Config
}

// BuildError 捕获配置构建过程中的上下文错误信息。
type BuildError struct {
	Stage string
	Path  string
	Err   error
}

// Error 实现 error 接口。
func (e BuildError) Error() string {
	if e.Stage == "" {
		return e.Err.Error()
	}
	if e.Path != "" {
		return fmt.Sprintf("config %s at %q: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Stage, e.Err)
}

// Unwrap 暴露底层错误，支持 errors.Is/As 链式查询。
func (e BuildError) Unwrap() error {
	return e.Err
}

// ParseConfPath 解析 -conf 命令行参数。
func ParseConfPath(fs *flag.FlagSet, args []string) (string, error) {
	confPath := fs.String("conf", "", "config path, eg: -conf configs")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return *confPath, nil
}

// Build 从配置文件构建 Loader。
//
// 流程：
// 1. 解析配置路径（应用回退规则）
// 2. best-effort 加载 .env 文件
// 3. 加载配置、应用环境变量覆盖与默认值
// 4. 推导服务元信息
func Build(params Params) (*Loader, error) {
	confPath := ResolveConfPath(params.ConfPath)
	loadEnvFiles(confPath)

	runtime, err := loadRuntime(confPath)
	if err != nil {
		return nil, err
	}

	meta := buildServiceMetadata()

	return &Loader{
		Runtime:   runtime,
		Service:   meta,
		LoggerCfg: meta.LoggerConfig(),
		ObsConfig: obswire.ObservabilityConfig{},
		TxConfig:  txconfig.Config{},
	}, nil
}

// LoadRuntime 是入口程序使用的便捷封装：name/version 来自构建期注入，
// 非空时覆盖环境变量推导出的元信息。
func LoadRuntime(confPath, name, version string) (*Loader, func(), error) {
	l, err := Build(Params{ConfPath: confPath})
	if err != nil {
		return nil, nil, err
	}
	if name != "" {
		l.Service.Name = name
	}
	if version != "" {
		l.Service.Version = version
	}
	l.LoggerCfg = l.Service.LoggerConfig()
	return l, func() {}, nil
}

// ResolveConfPath 应用回退规则确定要加载的配置目录/文件路径。
// 优先级：显式传入路径 > CONF_PATH 环境变量 > 默认路径。
func ResolveConfPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(envConfPath); env != "" {
		return env
	}
	return defaultConfPath
}

func loadRuntime(confPath string) (*RuntimeConfig, error) {
	c := config.New(config.WithSource(file.NewSource(confPath)))
	if err := c.Load(); err != nil {
		return nil, BuildError{Stage: "load", Path: confPath, Err: err}
	}
	defer c.Close()

	var rc RuntimeConfig
	if err := c.Scan(&rc); err != nil {
		return nil, BuildError{Stage: "scan", Path: confPath, Err: err}
	}
	applyEnvOverrides(&rc)
	applyDefaults(&rc)
	if err := validate(&rc); err != nil {
		return nil, BuildError{Stage: "validate", Path: confPath, Err: err}
	}
	return &rc, nil
}

// applyEnvOverrides 应用环境变量覆盖配置文件中的特定字段。
// 环境变量为空时不覆盖，保留配置文件原值。
func applyEnvOverrides(rc *RuntimeConfig) {
	if rc == nil {
		return
	}
	if dsn := os.Getenv(envDatabaseURL); dsn != "" {
		rc.Database.DSN = dsn
	}
	if port := os.Getenv(envPort); port != "" {
		rc.Server.Addr = replacePort(rc.Server.Addr, port)
	}
	if base := os.Getenv(envGatewayBaseURL); base != "" {
		rc.Gateway.BaseURL = base
	}
	if emulator := os.Getenv(envPubsubEmulator); emulator != "" {
		rc.Messaging.EmulatorEndpoint = emulator
	}
}

func validate(rc *RuntimeConfig) error {
	if rc.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if rc.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required")
	}
	return nil
}

// replacePort 替换监听地址的端口部分，保留 host。
func replacePort(addr, port string) string {
	if addr == "" {
		return net.JoinHostPort("0.0.0.0", port)
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return net.JoinHostPort(addr, port)
	}
	return net.JoinHostPort(host, port)
}

// buildServiceMetadata 构建服务元信息，来源优先级：环境变量 > 默认值。
func buildServiceMetadata() ServiceMetadata {
	name := os.Getenv(envServiceName)
	if name == "" {
		name = defaultServiceName
	}
	version := os.Getenv(envServiceVersion)
	if version == "" {
		version = defaultServiceVersion
	}
	env := os.Getenv(envAppEnv)
	if env == "" {
		env = defaultEnvironment
	}
	host, _ := os.Hostname()

	return ServiceMetadata{
		Name:        name,
		Version:     version,
		Environment: env,
		InstanceID:  host,
	}
}

// loadEnvFiles best-effort 加载配置相关的 .env 文件，失败时忽略以保持幂等。
func loadEnvFiles(confPath string) {
	files := envFileCandidates(confPath)
	if len(files) == 0 {
		return
	}
	_ = godotenv.Load(files...)
}

// envFileCandidates 按优先级搜索 confPath 目录与工作目录下的 .env 文件。
func envFileCandidates(confPath string) []string {
	dirs := orderedDirs(confPath)
	seen := make(map[string]struct{})
	var files []string
	for _, dir := range dirs {
		for _, name := range envFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			if _, ok := seen[candidate]; ok {
				continue
			}
			files = append(files, candidate)
			seen[candidate] = struct{}{}
		}
	}
	return files
}

func orderedDirs(confPath string) []string {
	var dirs []string
	if confPath != "" {
		dir := confPath
		if info, err := os.Stat(confPath); err == nil && !info.IsDir() {
			dir = filepath.Dir(confPath)
		}
		dirs = append(dirs, filepath.Clean(dir))
	}
	if wd, err := os.Getwd(); err == nil {
		wd = filepath.Clean(wd)
		if len(dirs) == 0 || dirs[0] != wd {
			dirs = append(dirs, wd)
		}
	}
	return dirs
}
