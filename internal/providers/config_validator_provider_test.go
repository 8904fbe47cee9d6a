package providers

import (
	"pulsed/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8090,
		},
		Journal: structures.JournalConfig{
			Dir:            "/tmp/pulsed",
			RotateInterval: time.Hour,
		},
		Snapshot: structures.SnapshotConfig{
			TTL: 24 * time.Hour,
		},
		Stream: structures.StreamConfig{
			Timeout: 30 * time.Minute,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Agents: []structures.Agent{
			{ID: 1, Name: "one", APIKey: "key-one", AccessToken: "token-one"},
			{ID: 2, Name: "two", APIKey: "key-two", AccessToken: "token-two"},
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_EmptyLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroSnapshotTTL(t *testing.T) {
	c := validConfig()
	c.Snapshot.TTL = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroStreamTimeout(t *testing.T) {
	c := validConfig()
	c.Stream.Timeout = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_AgentWithoutAPIKey(t *testing.T) {
	c := validConfig()
	c.Agents[0].APIKey = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_DuplicateAPIKey(t *testing.T) {
	c := validConfig()
	c.Agents[1].APIKey = c.Agents[0].APIKey
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}
