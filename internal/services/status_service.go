package services

import (
	"pulsed/internal/models"
	"pulsed/internal/providers"
)

type StatusServiceInterface interface {
	Latest(identity models.Identity) ([]byte, error)
}

// StatusService serves the latest cached snapshot to poll-based
// readers. "No data yet" and "store unavailable" are different
// answers: the first surfaces as providers.ErrCacheMiss, anything
// else is a server fault.
type StatusService struct {
	cache providers.CacheProviderInterface
}

func NewStatusService(cache providers.CacheProviderInterface) StatusServiceInterface {
	return &StatusService{cache: cache}
}

func (ss *StatusService) Latest(identity models.Identity) ([]byte, error) {
	return ss.cache.Get(models.SnapshotKey(identity))
}
