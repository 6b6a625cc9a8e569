// FilePath: internal/repository/influx/influx.mirror.go
package influx

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/config"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/errors"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/models"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

const measurement = "cold_chain_reading"

// Mirror copies stored readings into an InfluxDB bucket
type Mirror struct {
	client influxdb2.Client
	writer api.WriteAPIBlocking
	bucket string
}

var _ repository.ReadingMirror = (*Mirror)(nil)

// NewMirror creates a mirror and checks that the server is healthy
func NewMirror(ctx context.Context, cfg config.InfluxConfig) (*Mirror, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, errors.NewUnavailableError("failed to reach InfluxDB", err)
	}
	if health.Status != "pass" {
		client.Close()
		return nil, errors.NewUnavailableError("InfluxDB health check failed", nil).WithDetails(health.Message)
	}

	nuts.L.Infof("[InfluxMirror] Mirroring readings to %s bucket %s", cfg.URL, cfg.Bucket)
	return &Mirror{
		client: client,
		writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		bucket: cfg.Bucket,
	}, nil
}

func (m *Mirror) MirrorReading(ctx context.Context, reading models.Reading) error {
	ts := reading.ReceivedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	p := influxdb2.NewPoint(
		measurement,
		map[string]string{"source": "coldrelay"},
		map[string]interface{}{
			"temperature": reading.Temperature,
			"latitude":    reading.Latitude,
			"longitude":   reading.Longitude,
		},
		ts,
	)
	if err := m.writer.WritePoint(ctx, p); err != nil {
		return errors.NewStorageError("failed to write reading to InfluxDB", err)
	}
	return nil
}

func (m *Mirror) Close() {
	m.client.Close()
}
