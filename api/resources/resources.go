// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"

	"github.com/itsatony/w4b_v3/server/coldrelay/internal/errors"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/service"
	nuts "github.com/vaudience/go-nuts"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	Readings    *ReadingHandlers
	HealthCheck func(w http.ResponseWriter, r *http.Request)
	Metrics     http.Handler
}

// NewResources creates a new Resources instance
func NewResources(svc service.ReadingService, strictListing bool) *Resources {
	return &Resources{
		Readings:    &ReadingHandlers{service: svc, strictListing: strictListing},
		HealthCheck: Health,
		Metrics:     http.NotFoundHandler(),
	}
}

// SetHealthCheck sets the health check handler
func (r *Resources) SetHealthCheck(h func(w http.ResponseWriter, r *http.Request)) {
	r.HealthCheck = h
}

// SetMetrics sets the metrics handler
func (r *Resources) SetMetrics(h http.Handler) {
	r.Metrics = h
}

// Health returns a simple liveness payload
func Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": nuts.GetVersion(),
	})
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	nuts.L.Errorf("[API] %s", err.Error())
	respondWithJSON(w, err.Code, err)
}

// respondWithJSON commits the status only once the payload is encoded
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		nuts.L.Errorf("[API] Failed to encode response: %v", err)
		body, _ = json.Marshal(errors.NewInternalError("failed to encode response", err))
		code = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(append(body, '\n'))
}
