package journal

import (
	"pulsed/internal/journal/interfaces"
	"pulsed/internal/providers"
	"pulsed/internal/structures"
	"sync"

	"github.com/roylee0704/gron"
)

// Scheduler drives the journal's periodic maintenance: time-based
// segment rotation and retention sweeps.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	journal JournalInterface
	cron    *gron.Cron
	opsMu   sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Journal.RotateInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if err := s.journal.Rotate(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while rotating journal: %s", err)
			return
		}
		s.journal.Sweep()
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Persist flushes the active segment to disk. Called on shutdown.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Syncing journal to disk...")
	if err := s.journal.Sync(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while syncing journal: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, journal JournalInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		journal: journal,
	}
}
