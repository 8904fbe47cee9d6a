package services

import (
	"fmt"
	"pulsed/internal/journal"
	"pulsed/internal/models"
	"pulsed/internal/providers"
	"pulsed/internal/structures"
	"time"
)

// Broadcaster is the fan-out side of the pipeline. Satisfied by
// *stream.Registry; declared here so the service can be tested with a
// plain fake. Broadcast reports how many sessions were targeted.
type Broadcaster interface {
	Broadcast(identity models.Identity, payload []byte) int
}

type IngestServiceInterface interface {
	Ingest(identity models.Identity, payload models.Report) ([]byte, error)
}

type IngestService struct {
	journal     journal.JournalInterface
	cache       providers.CacheProviderInterface
	streams     Broadcaster
	metrics     providers.MetricsProviderInterface
	logger      providers.Logger
	snapshotTTL time.Duration
}

func NewIngestService(conf *structures.Config, jrnl journal.JournalInterface, cache providers.CacheProviderInterface, streams Broadcaster, metrics providers.MetricsProviderInterface, logger providers.Logger) IngestServiceInterface {
	return &IngestService{
		journal:     jrnl,
		cache:       cache,
		streams:     streams,
		metrics:     metrics,
		logger:      logger,
		snapshotTTL: conf.Snapshot.TTL,
	}
}

// Ingest runs the pipeline for one report: durable append, snapshot
// write, daily counters, fan-out. Only the append can fail the call;
// once the record is journaled, ingest succeeds no matter what the
// cache or the subscribers do.
func (is *IngestService) Ingest(identity models.Identity, payload models.Report) ([]byte, error) {
	canonical, err := payload.Canonical()
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	start := time.Now()
	err = is.journal.Append(&models.EventRecord{
		AgentID:    identity,
		Payload:    canonical,
		ReceivedAt: start,
	})
	if err != nil {
		return nil, err
	}
	is.metrics.ObserveJournalAppend(time.Since(start))
	is.metrics.IncIngested()

	// Everything below is a non-fatal side effect. The cache is an
	// optimization and the fan-out is best-effort, so their failures
	// are logged and deliberately discarded.
	if err := is.cache.Set(models.SnapshotKey(identity), canonical, is.snapshotTTL); err != nil {
		is.logger.Warnf(providers.TypePost, "Snapshot write failed: identity=%s err=%s", identity, err)
	}

	// Counters bucket by server-local calendar date, matching how the
	// rest of the product reads them.
	day := start.Format("2006-01-02")
	if ks := payload.Keystrokes(); ks > 0 {
		if _, err := is.cache.IncrBy(models.KeystrokesKey(identity, day), ks); err != nil {
			is.logger.Warnf(providers.TypePost, "Keystroke counter failed: identity=%s err=%s", identity, err)
		}
	}
	if active := payload.ActiveMs(); active > 0 {
		if _, err := is.cache.IncrBy(models.ActiveMsKey(identity, day), active); err != nil {
			is.logger.Warnf(providers.TypePost, "Active-ms counter failed: identity=%s err=%s", identity, err)
		}
	}

	// The counter tracks fan-outs that reached at least one session,
	// not attempts against an empty subscriber set.
	if is.streams.Broadcast(identity, canonical) > 0 {
		is.metrics.IncBroadcasts()
	}

	return canonical, nil
}
