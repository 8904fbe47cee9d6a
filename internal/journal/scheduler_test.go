package journal

import (
	"pulsed/internal/models"
	"pulsed/internal/structures"
	"pulsed/internal/testutil"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJournal struct {
	mu      sync.Mutex
	rotates int
	sweeps  int
	syncs   int
}

func (c *countingJournal) Append(_ *models.EventRecord) error { return nil }

func (c *countingJournal) Rotate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotates++
	return nil
}

func (c *countingJournal) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweeps++
}

func (c *countingJournal) SegmentSize() int64 { return 0 }

func (c *countingJournal) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.syncs++
	return nil
}

func (c *countingJournal) Close() error { return nil }

func (c *countingJournal) counts() (int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotates, c.sweeps, c.syncs
}

func TestScheduler_RotatesAndSweepsPeriodically(t *testing.T) {
	cj := &countingJournal{}
	conf := &structures.Config{
		Journal: structures.JournalConfig{RotateInterval: time.Second},
	}
	s := NewScheduler(conf, &testutil.MockLogger{}, cj)

	s.Init()
	defer s.Stop()

	require.Eventually(t, func() bool {
		rotates, sweeps, _ := cj.counts()
		return rotates >= 1 && sweeps >= 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestScheduler_PersistSyncsJournal(t *testing.T) {
	cj := &countingJournal{}
	conf := &structures.Config{
		Journal: structures.JournalConfig{RotateInterval: time.Hour},
	}
	s := NewScheduler(conf, &testutil.MockLogger{}, cj)

	require.NoError(t, s.Persist())
	_, _, syncs := cj.counts()
	assert.Equal(t, 1, syncs)
}

func TestScheduler_StopWithoutInit(t *testing.T) {
	s := NewScheduler(&structures.Config{}, &testutil.MockLogger{}, &countingJournal{})
	assert.NotPanics(t, s.Stop)
}
