// Package server wires the HTTP routes and middleware.
package server

import (
	"net/http"
	"time"

	"github.com/diewo77/go-billing/httpx"
	"github.com/diewo77/go-billing/internal/handlers"
	"github.com/diewo77/go-billing/internal/logger"
	"github.com/diewo77/go-billing/internal/services"
	"github.com/diewo77/go-billing/internal/store"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	handler http.Handler
}

// NewApp creates the application handler over st.
func NewApp(st *store.Store) *App {
	app := &App{mux: http.NewServeMux()}
	docs := services.NewDocumentService(st)
	settle := services.NewSettlementService(st)
	app.setupRoutes(
		handlers.NewTotalsHandler(docs),
		handlers.NewCatalogHandler(st),
		handlers.NewDocumentHandler(docs),
		handlers.NewSettlementHandler(settle),
		handlers.NewSettingsHandler(docs),
	)
	app.handler = withRecover(withLogging(app.mux))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes(
	th *handlers.TotalsHandler,
	ch *handlers.CatalogHandler,
	dh *handlers.DocumentHandler,
	sh *handlers.SettlementHandler,
	seth *handlers.SettingsHandler,
) {
	a.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	a.mux.HandleFunc("POST /api/totals", th.Preview)

	a.mux.HandleFunc("GET /api/settings", seth.Get)
	a.mux.HandleFunc("PUT /api/settings", seth.Update)

	a.mux.HandleFunc("GET /api/catalog", ch.List)
	a.mux.HandleFunc("POST /api/catalog", ch.Save)
	a.mux.HandleFunc("GET /api/catalog/{id}", ch.View)
	a.mux.HandleFunc("PUT /api/catalog/{id}", ch.Save)
	a.mux.HandleFunc("GET /api/catalog/{id}/add-ons", ch.AddOns)

	a.mux.HandleFunc("GET /api/documents", dh.List)
	a.mux.HandleFunc("POST /api/documents", dh.Create)
	a.mux.HandleFunc("GET /api/documents/{id}", dh.View)
	a.mux.HandleFunc("DELETE /api/documents/{id}", dh.Delete)
	a.mux.HandleFunc("PUT /api/documents/{id}/lines", dh.SetLines)
	a.mux.HandleFunc("POST /api/documents/{id}/lines", dh.AddLine)
	a.mux.HandleFunc("DELETE /api/documents/{id}/lines/{line_id}", dh.RemoveLine)
	a.mux.HandleFunc("POST /api/documents/{id}/tax-mode", dh.SwitchTaxMode)
	a.mux.HandleFunc("POST /api/documents/{id}/finalize", dh.Finalize)
	a.mux.HandleFunc("POST /api/documents/{id}/update", dh.Update)
	a.mux.HandleFunc("POST /api/documents/{id}/convert", dh.Convert)

	a.mux.HandleFunc("POST /api/documents/{id}/payments", sh.RecordPayment)
	a.mux.HandleFunc("POST /api/documents/{id}/applications", sh.ApplyCredit)
	a.mux.HandleFunc("GET /api/documents/{id}/balance", sh.Balance)
	a.mux.HandleFunc("GET /api/documents/{id}/credit", sh.CreditRemaining)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler) http.Handler {
	log := logger.WithComponent("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func withRecover(next http.Handler) http.Handler {
	log := logger.WithComponent("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				log.Error().Interface("panic", v).Str("path", r.URL.Path).Msg("handler panicked")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
