package refresher

import (
	"context"

	"github.com/itsatony/w4b_v3/server/coldrelay/internal/monitoring"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/service"
	nuts "github.com/vaudience/go-nuts"
)

// Refresher periodically re-reads the stored readings and logs what it saw
type Refresher struct {
	gateway    service.ReadingService
	monitoring *monitoring.Service
}

func New(gateway service.ReadingService, mon *monitoring.Service) *Refresher {
	return &Refresher{gateway: gateway, monitoring: mon}
}

// Run performs one refresh. It never panics past its own boundary.
func (r *Refresher) Run() {
	defer func() {
		if rec := recover(); rec != nil {
			nuts.L.Errorf("[Refresher] Recovered from panic: %v", rec)
		}
	}()

	readings := r.gateway.ListReadings(context.Background())
	r.monitoring.RecordListed(len(readings))
	nuts.L.Infof("[Refresher] %d readings stored", len(readings))
}
