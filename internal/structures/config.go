package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type JournalConfig struct {
	Dir             string        `yaml:"dir" validate:"required|unixPath"`
	SegmentMaxBytes int64         `yaml:"segmentMaxBytes"`
	RotateInterval  time.Duration `yaml:"rotateInterval" validate:"required|min:1"`
	Retention       time.Duration `yaml:"retention"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type SnapshotConfig struct {
	TTL time.Duration `yaml:"ttl" validate:"required|min:1"`
}

type StreamConfig struct {
	Timeout    time.Duration `yaml:"timeout" validate:"required|min:1"`
	SendBuffer int           `yaml:"sendBuffer"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Agent is one pre-provisioned reporting subject. Credential issuance
// happens outside this process; the daemon only matches what it is given.
type Agent struct {
	ID          int64  `yaml:"id" validate:"required|min:1"`
	Name        string `yaml:"name"`
	APIKey      string `yaml:"apiKey" validate:"required"`
	AccessToken string `yaml:"accessToken"`
}

type Config struct {
	AppName string
	Debug   bool
	Path    string

	WebServer Server         `yaml:"webServer"`
	Journal   JournalConfig  `yaml:"journal"`
	Snapshot  SnapshotConfig `yaml:"snapshot"`
	Stream    StreamConfig   `yaml:"stream"`
	Logger    LoggerConfig   `yaml:"logger"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
	Agents    []Agent        `yaml:"agents"`
}
