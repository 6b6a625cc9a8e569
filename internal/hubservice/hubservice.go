package hubservice

import (
	"time"

	"github.com/itsatony/w4b_v3/server/coldrelay/internal/errors"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/monitoring"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/poller"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/refresher"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/scheduler"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/service"
)

// HubService holds the storage gateway and the two periodic components built on it
type HubService struct {
	Readings   *service.Service
	Poller     *poller.Poller
	Refresher  *refresher.Refresher
	Monitoring *monitoring.Service
}

// New creates a new HubService instance. mirror and lock may be nil.
func New(
	readings repository.ReadingRepository,
	mirror repository.ReadingMirror,
	lock repository.PollLock,
	mon *monitoring.Service,
	sensor poller.Config,
) *HubService {
	gateway := service.New(readings, mirror, mon)
	return &HubService{
		Readings:   gateway,
		Poller:     poller.New(sensor, gateway, lock, mon),
		Refresher:  refresher.New(gateway, mon),
		Monitoring: mon,
	}
}

// Validate checks if all required components are initialized
func (s *HubService) Validate() error {
	if s.Readings == nil {
		return ErrMissingComponent("readings")
	}
	if err := s.Readings.Validate(); err != nil {
		return err
	}
	if s.Poller == nil {
		return ErrMissingComponent("poller")
	}
	if s.Refresher == nil {
		return ErrMissingComponent("refresher")
	}
	return nil
}

// Schedule registers the poller and, when refreshInterval > 0, the refresher
func (s *HubService) Schedule(sched *scheduler.Scheduler, pollInterval, refreshInterval time.Duration) error {
	if err := sched.Every("poller", pollInterval, s.Poller); err != nil {
		return err
	}
	if refreshInterval > 0 {
		if err := sched.Every("refresher", refreshInterval, s.Refresher); err != nil {
			return err
		}
	}
	return nil
}

func ErrMissingComponent(name string) error {
	return errors.NewInternalError("missing component: "+name, nil)
}
