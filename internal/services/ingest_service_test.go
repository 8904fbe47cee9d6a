package services

import (
	"errors"
	"pulsed/internal/models"
	"pulsed/internal/structures"
	"pulsed/internal/testutil"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ingestFixture struct {
	journal     *testutil.MockJournal
	cache       *testutil.MockCache
	broadcaster *testutil.MockBroadcaster
	logger      *testutil.MockLogger
	service     IngestServiceInterface
}

func newIngestFixture() *ingestFixture {
	f := &ingestFixture{
		journal:     &testutil.MockJournal{},
		cache:       testutil.NewMockCache(),
		broadcaster: &testutil.MockBroadcaster{},
		logger:      &testutil.MockLogger{},
	}
	conf := &structures.Config{
		Snapshot: structures.SnapshotConfig{TTL: 24 * time.Hour},
	}
	f.service = NewIngestService(conf, f.journal, f.cache, f.broadcaster, &testutil.NoopMetrics{}, f.logger)
	return f
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func TestIngest_FullPipeline(t *testing.T) {
	f := newIngestFixture()
	payload := models.Report{"keystrokes": float64(5), "sessionActiveMs": float64(1000)}

	canonical, err := f.service.Ingest(7, payload)
	require.NoError(t, err)

	// journaled
	require.Len(t, f.journal.Records, 1)
	assert.Equal(t, models.Identity(7), f.journal.Records[0].AgentID)
	assert.Equal(t, canonical, []byte(f.journal.Records[0].Payload))

	// snapshot equals the canonical serialization
	snap, err := f.cache.Get(models.SnapshotKey(7))
	require.NoError(t, err)
	assert.Equal(t, canonical, snap)
	var roundtrip models.Report
	require.NoError(t, json.Unmarshal(snap, &roundtrip))
	assert.Equal(t, float64(5), roundtrip["keystrokes"])

	// both counters incremented for today
	assert.EqualValues(t, 5, f.cache.Counters[models.KeystrokesKey(7, today())])
	assert.EqualValues(t, 1000, f.cache.Counters[models.ActiveMsKey(7, today())])

	// fanned out
	require.Len(t, f.broadcaster.Calls, 1)
	assert.Equal(t, models.Identity(7), f.broadcaster.Calls[0].Identity)
	assert.Equal(t, canonical, f.broadcaster.Calls[0].Payload)
}

func TestIngest_NegativeMetricsIgnored(t *testing.T) {
	f := newIngestFixture()

	_, err := f.service.Ingest(7, models.Report{"keystrokes": float64(-3)})
	require.NoError(t, err)

	assert.Empty(t, f.cache.Counters)
	assert.Len(t, f.broadcaster.Calls, 1)
}

func TestIngest_NonNumericMetricsIgnored(t *testing.T) {
	f := newIngestFixture()

	_, err := f.service.Ingest(7, models.Report{"keystrokes": "many", "sessionActiveMs": true})
	require.NoError(t, err)

	assert.Empty(t, f.cache.Counters)
}

func TestIngest_EmptyPayload(t *testing.T) {
	f := newIngestFixture()

	canonical, err := f.service.Ingest(7, models.Report{})
	require.NoError(t, err)

	assert.Equal(t, "{}", string(canonical))
	assert.Empty(t, f.cache.Counters)
	require.Len(t, f.broadcaster.Calls, 1)
}

func TestIngest_JournalFailureIsFatal(t *testing.T) {
	f := newIngestFixture()
	f.journal.AppendErr = errors.New("disk full")

	_, err := f.service.Ingest(7, models.Report{"keystrokes": float64(5)})
	require.Error(t, err)

	// nothing downstream of the journal may have run
	assert.Empty(t, f.cache.Data)
	assert.Empty(t, f.cache.Counters)
	assert.Empty(t, f.broadcaster.Calls)
}

// broadcastMetrics counts IncBroadcasts calls; the other methods are noops.
type broadcastMetrics struct {
	testutil.NoopMetrics
	broadcasts int
}

func (b *broadcastMetrics) IncBroadcasts() { b.broadcasts++ }

func TestIngest_NoSubscribersDoesNotCountBroadcast(t *testing.T) {
	f := newIngestFixture()
	metrics := &broadcastMetrics{}
	conf := &structures.Config{Snapshot: structures.SnapshotConfig{TTL: 24 * time.Hour}}
	f.service = NewIngestService(conf, f.journal, f.cache, f.broadcaster, metrics, f.logger)

	_, err := f.service.Ingest(7, models.Report{"keystrokes": float64(5)})
	require.NoError(t, err)

	// the registry had no targets, so the fan-out counter stays put
	require.Len(t, f.broadcaster.Calls, 1)
	assert.Zero(t, metrics.broadcasts)
}

func TestIngest_LiveSubscribersCountOneBroadcast(t *testing.T) {
	f := newIngestFixture()
	f.broadcaster.Targets = 3
	metrics := &broadcastMetrics{}
	conf := &structures.Config{Snapshot: structures.SnapshotConfig{TTL: 24 * time.Hour}}
	f.service = NewIngestService(conf, f.journal, f.cache, f.broadcaster, metrics, f.logger)

	_, err := f.service.Ingest(7, models.Report{"keystrokes": float64(5)})
	require.NoError(t, err)

	// one fan-out regardless of how many sessions it reached
	assert.Equal(t, 1, metrics.broadcasts)
}

func TestIngest_CacheFailureIsNotFatal(t *testing.T) {
	f := newIngestFixture()
	f.cache.SetErr = errors.New("cache down")
	f.cache.IncrErr = errors.New("cache down")

	canonical, err := f.service.Ingest(7, models.Report{"keystrokes": float64(5)})
	require.NoError(t, err)

	// ingest succeeded and still fanned out
	require.Len(t, f.broadcaster.Calls, 1)
	assert.Equal(t, canonical, f.broadcaster.Calls[0].Payload)

	// failures were logged, not swallowed silently
	warned := false
	for _, entry := range f.logger.Logs {
		if entry.Level == "warn" {
			warned = true
		}
	}
	assert.True(t, warned)
}
