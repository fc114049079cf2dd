package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	OptionsPath string `env:"OPTIONS_PATH" envDefault:"/data/options.json"`

	NVRHost  string `env:"NVR_HOST"     envDefault:"127.0.0.1"`
	RTSPPort int    `env:"RTSP_PORT"    envDefault:"554"`
	Username string `env:"NVR_USERNAME" envDefault:"admin"`
	Password string `env:"NVR_PASSWORD"`
	Subtype  int    `env:"NVR_SUBTYPE"  envDefault:"0"`

	HealthTimeoutMs int `env:"HEALTH_TIMEOUT_MS" envDefault:"2500"`
	JPEGQuality     int `env:"JPEG_QV"           envDefault:"7"`
	SnapshotCacheMs int `env:"SNAPSHOT_CACHE_MS" envDefault:"800"`
	MaxConcurrency  int `env:"MAX_CONCURRENCY"   envDefault:"2"`
	QueueTimeoutMs  int `env:"QUEUE_TIMEOUT_MS"  envDefault:"300"`

	FFmpegPath        string `env:"FFMPEG_PATH"         envDefault:"ffmpeg"`
	// FFmpegTimeoutFlag is "timeout" for ffmpeg >= 5.0 and "stimeout" for 4.x.
	FFmpegTimeoutFlag string `env:"FFMPEG_TIMEOUT_FLAG" envDefault:"timeout"`
	FFmpegVideoFilter string `env:"FFMPEG_VIDEO_FILTER"`
	RTSPTransport     string `env:"RTSP_TRANSPORT"      envDefault:"tcp"`

	HTTPPort int `env:"HTTP_PORT" envDefault:"8000"`

	DatabaseURL string `env:"DATABASE_URL"`

	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"snapshot.health"`
	ProbeQueue       string `env:"PROBE_QUEUE"`
	ProbeWorkers     int    `env:"PROBE_WORKERS"     envDefault:"1"`

	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT"       envDefault:"25"`
	SMTPFrom       string `env:"SMTP_FROM"       envDefault:"snapshot-api@localhost"`
	NotificationTo string `env:"NOTIFICATION_TO"`

	ProbeSchedule string   `env:"PROBE_SCHEDULE"`
	ProbeCameras  []string `env:"PROBE_CAMERAS" envSeparator:","`

	// HealthCameras limits up/down events and mails to these ids. Empty falls
	// back to ProbeCameras; both empty tracks every id.
	HealthCameras []string `env:"HEALTH_CAMERAS" envSeparator:","`

	MetricsPort      int     `env:"METRICS_PORT"       envDefault:"9090"`
	JaegerEndpoint   string  `env:"JAEGER_ENDPOINT"`
	TraceSampleRatio float64 `env:"TRACE_SAMPLE_RATIO" envDefault:"1"`
	LogLevel         string  `env:"LOG_LEVEL"          envDefault:"info"`
}

// options mirrors the add-on options file. Only keys present in the file
// override the environment.
type options struct {
	NVRHost         *string `yaml:"nvr_host"`
	RTSPPort        *optInt `yaml:"rtsp_port"`
	Username        *string `yaml:"username"`
	Password        *string `yaml:"password"`
	Subtype         *optInt `yaml:"subtype"`
	HealthTimeoutMs *optInt `yaml:"health_timeout_ms"`
	JPEGQuality     *optInt `yaml:"jpeg_qv"`
	SnapshotCacheMs *optInt `yaml:"snapshot_cache_ms"`
	MaxConcurrency  *optInt `yaml:"max_concurrency"`
	QueueTimeoutMs  *optInt `yaml:"queue_timeout_ms"`
}

// optInt accepts integers written as numbers, quoted strings ("8554") or
// whole floats (2500.0).
type optInt int

func (n *optInt) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected an integer", value.Line)
	}
	var i int
	if err := value.Decode(&i); err == nil {
		*n = optInt(i)
		return nil
	}
	raw := strings.TrimSpace(value.Value)
	if i, err := strconv.Atoi(raw); err == nil {
		*n = optInt(i)
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int(f)) {
		*n = optInt(int(f))
		return nil
	}
	return fmt.Errorf("line %d: %q is not an integer", value.Line, value.Value)
}

// Load reads .env (if any), the environment, then the options file, and
// validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.applyOptionsFile(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyOptionsFile() error {
	if c.OptionsPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.OptionsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read options file: %w", err)
	}

	var o options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parse options file %s: %w", c.OptionsPath, err)
	}

	setString(&c.NVRHost, o.NVRHost)
	setInt(&c.RTSPPort, o.RTSPPort)
	setString(&c.Username, o.Username)
	setString(&c.Password, o.Password)
	setInt(&c.Subtype, o.Subtype)
	setInt(&c.HealthTimeoutMs, o.HealthTimeoutMs)
	setInt(&c.JPEGQuality, o.JPEGQuality)
	setInt(&c.SnapshotCacheMs, o.SnapshotCacheMs)
	setInt(&c.MaxConcurrency, o.MaxConcurrency)
	setInt(&c.QueueTimeoutMs, o.QueueTimeoutMs)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *optInt) {
	if src != nil {
		*dst = int(*src)
	}
}

func (c Config) Validate() error {
	return v.ValidateStruct(&c,
		v.Field(&c.NVRHost, v.Required),
		v.Field(&c.RTSPPort, v.Required, v.Min(1), v.Max(65535)),
		v.Field(&c.Subtype, v.Min(0)),
		v.Field(&c.HealthTimeoutMs, v.Required, v.Min(1)),
		v.Field(&c.JPEGQuality, v.Required, v.Min(2), v.Max(31)),
		v.Field(&c.SnapshotCacheMs, v.Min(0)),
		v.Field(&c.MaxConcurrency, v.Required, v.Min(1)),
		v.Field(&c.QueueTimeoutMs, v.Min(0)),
		v.Field(&c.HTTPPort, v.Required, v.Min(1), v.Max(65535)),
		v.Field(&c.MetricsPort, v.Required, v.Min(1), v.Max(65535)),
		v.Field(&c.LogLevel, v.In("debug", "info", "warn", "error")),
		v.Field(&c.FFmpegTimeoutFlag, v.In("timeout", "stimeout")),
		v.Field(&c.ProbeCameras, v.When(c.ProbeSchedule != "", v.Required)),
		v.Field(&c.NotificationTo, v.When(c.SMTPHost != "", v.Required)),
		v.Field(&c.RabbitMQURL, v.When(c.ProbeQueue != "", v.Required)),
		v.Field(&c.ProbeWorkers, v.When(c.ProbeQueue != "", v.Min(1))),
	)
}

func (c Config) HealthTimeout() time.Duration {
	return time.Duration(c.HealthTimeoutMs) * time.Millisecond
}

func (c Config) QueueTimeout() time.Duration {
	return time.Duration(c.QueueTimeoutMs) * time.Millisecond
}

func (c Config) TrackedCameras() []string {
	if len(c.HealthCameras) > 0 {
		return c.HealthCameras
	}
	return c.ProbeCameras
}

func (c Config) CacheWindow() time.Duration {
	return time.Duration(c.SnapshotCacheMs) * time.Millisecond
}
