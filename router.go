package main

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/hlog"

	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.yaml
var openapiYAML []byte

// routes wires middlewares and endpoints. Adjust CORS_ORIGINS for the
// frontend hosts.
func (a *App) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(hlog.NewHandler(a.log))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(a.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=60")
		_, _ = w.Write(openapiYAML)
	})
	r.Mount("/swagger", httpSwagger.Handler(
		httpSwagger.URL("/api/openapi.yaml"),
	))
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", a.handleHealth)
		api.Get("/auth/health", a.handleAuthHealth)
		api.Post("/auth/register", a.handleRegister)
		api.Post("/auth/login", a.handleLogin)

		api.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)
			pr.Get("/auth/profile", a.handleProfile)
			pr.Get("/auth/verify", a.handleVerify)

			pr.Post("/soil/analyze-enhanced", a.handleRecommend)
			pr.Route("/crops", func(cr chi.Router) {
				cr.Post("/recommend", a.handleRecommend)
				cr.Post("/preview", a.handlePreview)
				cr.Get("/all", a.handleAllCrops)
				cr.Get("/history", a.handleHistory)
			})

			pr.Route("/marketplace", func(mr chi.Router) {
				mr.Post("/sell", a.handleSell)
				mr.Get("/products", a.handleProducts)
				mr.Post("/buy/{id}", a.handleBuy)
				mr.Get("/my-orders", a.handleMyOrders)
			})

			pr.Route("/ledger", func(lr chi.Router) {
				lr.Get("/verify/{hash}", a.handleVerifyBlock)
				lr.Get("/history", a.handleLedgerHistory)
				lr.Get("/validate", a.handleValidateChain)
			})

			pr.Route("/weather", func(wr chi.Router) {
				wr.Get("/current", a.handleCurrentWeather)
				wr.Get("/forecast", a.handleForecast)
				wr.Get("/risks", a.handleWeatherRisks)
			})

			pr.Route("/alerts", func(ar chi.Router) {
				ar.Get("/user", a.handleUserAlerts)
				ar.Post("/send-weather", a.handleSendWeatherAlerts)
			})

			pr.Route("/subsidies", func(sr chi.Router) {
				sr.Get("/available", a.handleAvailableSubsidies)
				sr.Get("/match", a.handleMatchSubsidies)
			})

			pr.Route("/virtual-farm", func(fr chi.Router) {
				fr.Post("/create", a.handleCreateFarm)
				fr.Get("/user-farms", a.handleListFarms)
				fr.Post("/update-progress", a.handleUpdateProgress)
				fr.Get("/{id}", a.handleGetFarm)
				fr.Delete("/{id}", a.handleDeleteFarm)
			})
		})
	})

	return r
}

// handleHealth reports every backing store; any failure turns it 503.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := a.health(r.Context())
	status := http.StatusOK
	overall := "healthy"
	for _, v := range checks {
		if v != "ok" {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
	}
	writeJSON(w, r, status, map[string]any{"status": overall, "checks": checks, "ledger_height": a.ledger.Height()})
}
