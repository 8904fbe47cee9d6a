package providers

import (
	"fmt"
	"path/filepath"
	"pulsed/internal/structures"
	"strings"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "PULSED_LOG_LEVEL")
	viper.BindEnv("snapshot.ttl", "PULSED_SNAPSHOT_TTL")
	viper.BindEnv("stream.timeout", "PULSED_STREAM_TIMEOUT")
	viper.BindEnv("journal.rotateInterval", "PULSED_JOURNAL_ROTATE_INTERVAL")
	viper.BindEnv("cache.enabled", "PULSED_CACHE_ENABLED")
	viper.BindEnv("cache.size", "PULSED_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "PulseStatusDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
