// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itsatony/w4b_v3/server/coldrelay/api"
	"github.com/itsatony/w4b_v3/server/coldrelay/api/resources"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/config"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/database"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/hubservice"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/monitoring"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/poller"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository/influx"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository/redislock"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/repository/relational"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/scheduler"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/service"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server plus the periodic jobs
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	scheduler  *scheduler.Scheduler
	cleanup    func()
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:    cfg,
		srv:       srv,
		scheduler: scheduler.New(cfg.Scheduler.SkipIfBusy),
	}
}

// Start wires the relay, starts the timers and begins listening for requests
func (s *Server) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	hub, cleanup, err := BuildHub(ctx, s.config)
	cancel()
	if err != nil {
		return err
	}
	s.hubservice = hub
	s.cleanup = cleanup

	s.setupEventHandlers()

	refreshInterval := time.Duration(0)
	if s.config.Refresher.Enabled {
		refreshInterval = s.config.Refresher.Interval
	}
	if err := s.hubservice.Schedule(s.scheduler, s.config.Sensor.PollInterval(), refreshInterval); err != nil {
		s.cleanup()
		return err
	}

	s.srv.Handler = s.setupRoutes()
	s.scheduler.Start()

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	defer s.cleanup()

	if err := s.scheduler.Stop(ctx); err != nil {
		nuts.L.Warnf("[Server] %v", err)
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// setupRoutes builds the HTTP facade
func (s *Server) setupRoutes() http.Handler {
	res := resources.NewResources(s.hubservice.Readings, s.config.Server.StrictListing)
	res.SetMetrics(s.hubservice.Monitoring.Handler())
	return api.NewRouter(res, s.config.Server.CORSOrigins)
}

func (s *Server) setupEventHandlers() {
	s.hubservice.Readings.OnReadingStored(func(origin service.Origin) {
		s.hubservice.Monitoring.RecordEvent("reading_stored", map[string]string{
			"origin": string(origin),
		})
	})
}

// BuildHub connects every configured backend and assembles the hub service.
// The returned cleanup closes them in reverse order.
func BuildHub(ctx context.Context, cfg *config.Config) (*hubservice.HubService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, func() {
		if err := db.Close(); err != nil {
			nuts.L.Warnf("[Server] Failed to close database: %v", err)
		}
	})

	cols := cfg.Database.Columns
	readings, err := relational.NewReadingRepositoryWithSchema(db, relational.Schema{
		Table:       cfg.Database.Table,
		Temperature: cols.Temperature,
		Latitude:    cols.Latitude,
		Longitude:   cols.Longitude,
		ReceivedAt:  cols.ReceivedAt,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if cfg.Database.CreateTable {
		if err := readings.CreateTable(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	var mirror repository.ReadingMirror
	if cfg.Mirror.Influx.Enabled {
		m, err := influx.NewMirror(ctx, cfg.Mirror.Influx)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		mirror = m
		closers = append(closers, m.Close)
	}

	var lock repository.PollLock
	if cfg.Redis.Enabled {
		l, err := redislock.New(ctx, cfg.Redis)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		lock = l
		closers = append(closers, func() { l.Close() })
	}

	mon := monitoring.NewService(monitoring.Config{Namespace: cfg.Monitoring.Namespace})

	hub := hubservice.New(readings, mirror, lock, mon, poller.Config{
		URL:     cfg.Sensor.URL,
		Timeout: cfg.Sensor.Timeout,
		LockTTL: cfg.Redis.LockTTL,
	})
	if err := hub.Validate(); err != nil {
		cleanup()
		return nil, nil, err
	}
	return hub, cleanup, nil
}
