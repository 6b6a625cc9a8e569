package refresher

import (
	"context"
	"strings"
	"testing"

	"github.com/itsatony/w4b_v3/server/coldrelay/internal/models"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/monitoring"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	readings []models.Reading
	calls    int
	panics   bool
}

func (s *stubGateway) InsertReading(context.Context, service.Origin, models.ReadingInput) error {
	return nil
}

func (s *stubGateway) ListReadings(context.Context) []models.Reading {
	s.calls++
	if s.panics {
		panic("pool exploded")
	}
	return s.readings
}

func (s *stubGateway) ListReadingsStrict(context.Context) ([]models.Reading, error) {
	return s.readings, nil
}

func TestRun_ListsAndRecordsCount(t *testing.T) {
	gw := &stubGateway{readings: []models.Reading{{Temperature: 1}, {Temperature: 2}}}
	mon := monitoring.NewService(monitoring.Config{})

	r := New(gw, mon)
	r.Run()
	r.Run()
	assert.Equal(t, 2, gw.calls)

	expected := `
# HELP coldrelay_readings_listed Row count seen by the last periodic refresh
# TYPE coldrelay_readings_listed gauge
coldrelay_readings_listed 2
`
	require.NoError(t, testutil.GatherAndCompare(mon.Registry(), strings.NewReader(expected), "coldrelay_readings_listed"))

	gw.readings = nil
	r.Run()
	require.NoError(t, testutil.GatherAndCompare(mon.Registry(), strings.NewReader(strings.Replace(expected, "listed 2", "listed 0", 1)), "coldrelay_readings_listed"))
}

func TestRun_NeverPropagates(t *testing.T) {
	gw := &stubGateway{panics: true}
	r := New(gw, monitoring.NewService(monitoring.Config{}))

	assert.NotPanics(t, r.Run)
	assert.Equal(t, 1, gw.calls)
}
