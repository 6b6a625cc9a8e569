package service

import (
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/errors"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/monitoring"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// EventReadingStored is emitted after every successful insert with the origin as argument
const EventReadingStored = "reading.stored"

// Origin names the component a reading came from
type Origin string

const (
	OriginPoller Origin = "poller"
	OriginPush   Origin = "push"
)

// Service is the storage gateway shared by the poller, refresher and HTTP facade
type Service struct {
	readings   repository.ReadingRepository
	mirror     repository.ReadingMirror
	monitoring *monitoring.Service
	events     *nuts.EventEmitter
}

// New creates a new service instance. mirror may be nil.
func New(
	readings repository.ReadingRepository,
	mirror repository.ReadingMirror,
	mon *monitoring.Service,
) *Service {
	return &Service{
		readings:   readings,
		mirror:     mirror,
		monitoring: mon,
		events:     nuts.NewEventEmitter(),
	}
}

// Validate checks if all required dependencies are initialized
func (s *Service) Validate() error {
	if s.readings == nil {
		return ErrMissingRepository("readings")
	}
	if s.monitoring == nil {
		return errors.NewInternalError("missing monitoring service", nil)
	}
	return nil
}

// OnReadingStored registers a callback for stored readings
func (s *Service) OnReadingStored(handler func(origin Origin)) {
	s.events.On(EventReadingStored, "reading_stored_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if origin, ok := args[0].(Origin); ok {
				handler(origin)
			}
		}
	})
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}
