package api

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/itsatony/w4b_v3/server/coldrelay/api/middleware"
	"github.com/itsatony/w4b_v3/server/coldrelay/api/resources"
	_ "github.com/itsatony/w4b_v3/server/coldrelay/docs"
	"github.com/rs/cors"
	"github.com/swaggo/swag"
	nuts "github.com/vaudience/go-nuts"
)

type Router struct {
	router    *mux.Router
	resources *resources.Resources
	handler   http.Handler
}

// NewRouter builds the mux and wraps it in the shared middleware stack
func NewRouter(res *resources.Resources, corsOrigins []string) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		resources: res,
	}
	r.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", middleware.HeaderRequestID},
	})

	var h http.Handler = r.router
	h = middleware.RequestID(h)
	h = c.Handler(h)
	h = handlers.CombinedLoggingHandler(os.Stdout, h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}), handlers.PrintRecoveryStack(true))(h)
	r.handler = h
	return r
}

func (r *Router) setupRoutes() {
	// Device-facing routes
	r.router.HandleFunc("/api/registrar", r.resources.Readings.Register).Methods(http.MethodPost)
	r.router.HandleFunc("/", r.resources.Readings.List).Methods(http.MethodGet)

	// Operational routes
	r.router.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)
	r.router.Handle("/metrics", r.resources.Metrics).Methods(http.MethodGet)
	r.router.HandleFunc("/swagger/doc.json", serveSwaggerDoc).Methods(http.MethodGet)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func serveSwaggerDoc(w http.ResponseWriter, _ *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	nuts.L.Errorf("[API] Recovered from panic: %v", v)
}
