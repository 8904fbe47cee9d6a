package testutil

import (
	"io"
	"pulsed/internal/models"
	"pulsed/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockCache implements providers.CacheProviderInterface over a plain map.
type MockCache struct {
	mu       sync.Mutex
	Data     map[string][]byte
	Counters map[string]int64
	SetErr   error
	GetErr   error
	IncrErr  error
}

func NewMockCache() *MockCache {
	return &MockCache{
		Data:     make(map[string][]byte),
		Counters: make(map[string]int64),
	}
}

func (m *MockCache) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	val, ok := m.Data[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return val, nil
}

func (m *MockCache) Set(key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Data[key] = value
	return nil
}

func (m *MockCache) IncrBy(key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IncrErr != nil {
		return 0, m.IncrErr
	}
	m.Counters[key] += delta
	return m.Counters[key], nil
}

// MockJournal implements journal.JournalInterface and records appends.
type MockJournal struct {
	mu        sync.Mutex
	Records   []*models.EventRecord
	AppendErr error
}

func (m *MockJournal) Append(record *models.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Records = append(m.Records, record)
	return nil
}

func (m *MockJournal) Rotate() error { return nil }
func (m *MockJournal) Sweep()        {}
func (m *MockJournal) SegmentSize() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.Records))
}
func (m *MockJournal) Sync() error  { return nil }
func (m *MockJournal) Close() error { return nil }

// MockBroadcaster implements services.Broadcaster and records payloads.
// Targets is the session count each Broadcast call reports back.
type MockBroadcaster struct {
	mu      sync.Mutex
	Calls   []BroadcastCall
	Targets int
}

type BroadcastCall struct {
	Identity models.Identity
	Payload  []byte
}

func (m *MockBroadcaster) Broadcast(identity models.Identity, payload []byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, BroadcastCall{Identity: identity, Payload: payload})
	return m.Targets
}

// MockIdentity implements providers.IdentityProviderInterface with
// fixed credential tables.
type MockIdentity struct {
	Keys   map[string]models.Identity
	Tokens map[string]models.Identity
}

func (m *MockIdentity) VerifyAPIKey(key string) (models.Identity, error) {
	if id, ok := m.Keys[key]; ok {
		return id, nil
	}
	return 0, providers.ErrUnauthorized
}

func (m *MockIdentity) VerifyAccessToken(token string) (models.Identity, error) {
	if id, ok := m.Tokens[token]; ok {
		return id, nil
	}
	return 0, providers.ErrUnauthorized
}

// MockCompressor implements interfaces.CompressorInterface as a pass-through copy.
type MockCompressor struct {
	CompressErr   error
	DecompressErr error
}

func (m *MockCompressor) Compress(dst io.Writer, src io.Reader) (int64, error) {
	if m.CompressErr != nil {
		return 0, m.CompressErr
	}
	return io.Copy(dst, src)
}

func (m *MockCompressor) Decompress(dst io.Writer, src io.Reader) (int64, error) {
	if m.DecompressErr != nil {
		return 0, m.DecompressErr
	}
	return io.Copy(dst, src)
}

// NoopMetrics implements providers.MetricsProviderInterface.
type NoopMetrics struct{}

func (n *NoopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *NoopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *NoopMetrics) IncCacheHits()                                    {}
func (n *NoopMetrics) IncCacheMisses()                                  {}
func (n *NoopMetrics) IncIngested()                                     {}
func (n *NoopMetrics) IncBroadcasts()                                   {}
func (n *NoopMetrics) ObserveJournalAppend(_ time.Duration)             {}
