package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"pulsed/internal/journal/interfaces"
	"pulsed/internal/models"
	"pulsed/internal/providers"
	"pulsed/internal/structures"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const (
	activeSegment     = "events.jsonl"
	archiveExtension  = ".jsonl.zst"
	defaultMaxSegment = 64 << 20 // 64 MB
)

// JournalInterface is the durable-append collaborator the ingest
// pipeline writes through. An Append that returns an error fails the
// whole ingest call; everything downstream of the journal is
// best-effort.
type JournalInterface interface {
	Append(record *models.EventRecord) error
	Rotate() error
	Sweep()
	SegmentSize() int64
	Sync() error
	Close() error
}

// Journal is an append-only JSONL event log. One active segment
// receives writes; rotated segments are zstd-compressed and kept until
// the retention window expires.
type Journal struct {
	mu         sync.Mutex
	dir        string
	maxBytes   int64
	retention  time.Duration
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	file       *os.File
	size       int64
}

func NewJournal(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) (JournalInterface, error) {
	if err := os.MkdirAll(conf.Journal.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal dir: %w", err)
	}

	maxBytes := conf.Journal.SegmentMaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxSegment
	}

	j := &Journal{
		dir:        conf.Journal.Dir,
		maxBytes:   maxBytes,
		retention:  conf.Journal.Retention,
		compressor: compressor,
		logger:     logger,
	}
	if err := j.openSegment(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) openSegment() error {
	path := filepath.Join(j.dir, activeSegment)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal segment: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	j.file = file
	j.size = info.Size()
	return nil
}

// Append writes one record as a single JSONL line. Unlike the cache
// and fan-out paths, a failure here must surface to the caller: the
// journal is the source of truth.
func (j *Journal) Append(record *models.EventRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("journal encode: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return fmt.Errorf("journal closed")
	}
	n, err := j.file.Write(line)
	if err != nil {
		return fmt.Errorf("journal write: %w", err)
	}
	j.size += int64(n)

	if j.size >= j.maxBytes {
		if rerr := j.rotateLocked(); rerr != nil {
			j.logger.Errorf(providers.TypeApp, "Journal rotation failed: %s", rerr)
		}
	}
	return nil
}

// Rotate closes the active segment, compresses it into a timestamped
// archive and starts a fresh one. An empty segment is left alone.
func (j *Journal) Rotate() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rotateLocked()
}

func (j *Journal) rotateLocked() (err error) {
	if j.file == nil || j.size == 0 {
		return nil
	}
	if err := j.file.Sync(); err != nil {
		return err
	}
	if err := j.file.Close(); err != nil {
		return err
	}
	j.file = nil

	// Whatever happens below, the journal must come back writable:
	// a failed rotation keeps appending to the old segment rather
	// than turning every subsequent ingest into an error.
	defer func() {
		if oerr := j.openSegment(); oerr != nil && err == nil {
			err = oerr
		}
	}()

	raw := filepath.Join(j.dir, activeSegment)
	archive := filepath.Join(j.dir, fmt.Sprintf("events-%d%s", time.Now().UnixNano(), archiveExtension))

	in, err := os.Open(raw)
	if err != nil {
		return err
	}

	tmp := archive + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		in.Close()
		return err
	}
	if _, err = j.compressor.Compress(out, in); err != nil {
		in.Close()
		out.Close()
		os.Remove(tmp)
		return err
	}
	in.Close()
	if err = out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err = out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err = os.Rename(tmp, archive); err != nil {
		return err
	}
	if err = os.Remove(raw); err != nil {
		return err
	}

	j.logger.Infof(providers.TypeApp, "Journal segment rotated: %s (%d bytes raw)", filepath.Base(archive), j.size)
	j.size = 0
	return nil
}

// Sweep deletes archived segments older than the retention window.
// With no retention configured archives are kept forever.
func (j *Journal) Sweep() {
	if j.retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-j.retention)

	entries, err := os.ReadDir(j.dir)
	if err != nil {
		j.logger.Errorf(providers.TypeApp, "Journal sweep failed: %s", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), archiveExtension) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(j.dir, entry.Name())
			if err := os.Remove(path); err != nil {
				j.logger.Errorf(providers.TypeApp, "Journal sweep: cannot remove %s: %s", entry.Name(), err)
				continue
			}
			j.logger.Infof(providers.TypeApp, "Journal sweep: removed %s", entry.Name())
		}
	}
}

// SegmentSize is the byte size of the active segment.
func (j *Journal) SegmentSize() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.size
}

func (j *Journal) Sync() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	return j.file.Sync()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	if err := j.file.Sync(); err != nil {
		return err
	}
	err := j.file.Close()
	j.file = nil
	return err
}
