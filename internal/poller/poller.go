// FilePath: internal/poller/poller.go
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/errors"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/models"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/monitoring"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/service"
	nuts "github.com/vaudience/go-nuts"
)

// Config describes where and how the sensor is polled
type Config struct {
	URL     string
	Timeout time.Duration
	// LockTTL bounds how long a replica may hold the poll lock
	LockTTL time.Duration
}

// Poller fetches telemetry from the remote sensor and forwards it to the gateway
type Poller struct {
	cfg        Config
	client     *resty.Client
	gateway    service.ReadingService
	lock       repository.PollLock
	monitoring *monitoring.Service
}

// New creates a poller. lock may be nil.
func New(cfg Config, gateway service.ReadingService, lock repository.PollLock, mon *monitoring.Service) *Poller {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = cfg.Timeout + time.Second
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Poller{
		cfg:        cfg,
		client:     client,
		gateway:    gateway,
		lock:       lock,
		monitoring: mon,
	}
}

// Run performs one scheduled cycle. Errors are logged and discarded.
func (p *Poller) Run() {
	if err := p.PollOnce(context.Background()); err != nil {
		nuts.L.Errorf("[Poller] Cycle failed: %v", err)
	}
}

// PollOnce fetches one payload and stores it, returning the classified error
func (p *Poller) PollOnce(ctx context.Context) error {
	if p.lock != nil {
		acquired, release, err := p.lock.Acquire(ctx, p.cfg.LockTTL)
		switch {
		case err != nil:
			p.monitoring.RecordPoll(monitoring.PollLockError)
			nuts.L.Warnf("[Poller] Poll lock unavailable, polling anyway: %v", err)
		case !acquired:
			p.monitoring.RecordPoll(monitoring.PollSkipped)
			nuts.L.Infof("[Poller] Another replica is polling, skipping cycle")
			return nil
		default:
			defer release()
		}
	}

	input, err := p.fetch(ctx)
	if err != nil {
		if errors.IsParse(err) {
			p.monitoring.RecordPoll(monitoring.PollParse)
		} else {
			p.monitoring.RecordPoll(monitoring.PollNetwork)
		}
		return err
	}

	nuts.L.Infof("[Poller] Received payload from %s", p.cfg.URL)

	if err := p.gateway.InsertReading(ctx, service.OriginPoller, input); err != nil {
		p.monitoring.RecordPoll(monitoring.PollStorage)
		return err
	}

	p.monitoring.RecordPoll(monitoring.PollStored)
	return nil
}

func (p *Poller) fetch(ctx context.Context) (models.ReadingInput, error) {
	var input models.ReadingInput

	resp, err := p.client.R().SetContext(ctx).Get(p.cfg.URL)
	if err != nil {
		return input, errors.NewNetworkError("failed to fetch sensor payload", err)
	}
	if resp.IsError() {
		return input, errors.NewNetworkError(
			fmt.Sprintf("sensor answered with status %d", resp.StatusCode()), nil)
	}

	if err := json.Unmarshal(resp.Body(), &input); err != nil {
		return input, errors.NewParseError("malformed sensor payload", err)
	}
	return input, nil
}
