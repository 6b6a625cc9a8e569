package service

import (
	"context"
	"strings"
	"time"

	"github.com/itsatony/w4b_v3/server/coldrelay/internal/errors"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// ReadingService is the storage gateway contract used by the other components
type ReadingService interface {
	InsertReading(ctx context.Context, origin Origin, input models.ReadingInput) error
	ListReadings(ctx context.Context) []models.Reading
	ListReadingsStrict(ctx context.Context) ([]models.Reading, error)
}

var _ ReadingService = (*Service)(nil)

// InsertReading appends one reading. received_at is assigned by the store.
func (s *Service) InsertReading(ctx context.Context, origin Origin, input models.ReadingInput) error {
	if missing := input.Missing(); len(missing) > 0 {
		err := errors.NewValidationError("missing fields: "+strings.Join(missing, ", "), nil)
		s.monitoring.RecordInsert(string(origin), err)
		return err
	}
	if bad := input.NonFinite(); len(bad) > 0 {
		err := errors.NewValidationError("non-finite fields: "+strings.Join(bad, ", "), nil)
		s.monitoring.RecordInsert(string(origin), err)
		return err
	}

	err := s.readings.InsertReading(ctx, *input.Temperature, *input.Latitude, *input.Longitude)
	s.monitoring.RecordInsert(string(origin), err)
	if err != nil {
		return err
	}

	nuts.L.Infof("[Gateway] Stored reading from %s: temperature=%.2f lat=%.6f lon=%.6f",
		origin, *input.Temperature, *input.Latitude, *input.Longitude)
	s.events.Emit(EventReadingStored, origin)

	if s.mirror != nil {
		s.mirrorReading(ctx, models.Reading{
			Temperature: *input.Temperature,
			Latitude:    *input.Latitude,
			Longitude:   *input.Longitude,
			ReceivedAt:  time.Now().UTC(),
		})
	}
	return nil
}

// ListReadings returns every stored reading. A failed query is logged and
// reported as an empty result, so callers cannot tell "no rows" from "error".
func (s *Service) ListReadings(ctx context.Context) []models.Reading {
	readings, err := s.readings.ListReadings(ctx)
	if err != nil {
		nuts.L.Errorf("[Gateway] Failed to list readings: %v", err)
		return []models.Reading{}
	}
	return readings
}

// ListReadingsStrict is ListReadings with the error propagated
func (s *Service) ListReadingsStrict(ctx context.Context) ([]models.Reading, error) {
	return s.readings.ListReadings(ctx)
}

func (s *Service) mirrorReading(ctx context.Context, reading models.Reading) {
	if err := s.mirror.MirrorReading(ctx, reading); err != nil {
		nuts.L.Warnf("[Gateway] Failed to mirror reading: %v", err)
	}
}
