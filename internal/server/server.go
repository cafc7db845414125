package server

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"roomSenseAi/internal/decoration"
	"roomSenseAi/internal/products"
	"roomSenseAi/internal/render"
	"roomSenseAi/internal/spatial"
)

// New constructs the HTTP server with routes and middleware.
func New(port string, spatialHandler spatial.Handler, renderHandler render.Handler, productHandler products.Handler, decorationHandler decoration.Handler) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/api", func(r chi.Router) {
		r.Route("/spatial", func(r chi.Router) {
			r.Post("/analyze", spatialHandler.Analyze)
			r.Post("/overlay", spatialHandler.Overlay)
		})
		r.Post("/design/suggestions", spatialHandler.Suggestions)
		r.Get("/events", spatialHandler.StreamEvents)
		r.Post("/render", renderHandler.Render)
		r.Route("/decoration", func(r chi.Router) {
			r.Post("/decorate", decorationHandler.Decorate)
			r.Post("/analyze", decorationHandler.Analyze)
		})
		r.Route("/products", func(r chi.Router) {
			r.Post("/lens", productHandler.LensLookup)
			r.Post("/smart", productHandler.SmartSearch)
		})
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// WriteTimeout stays unset: the event stream and render polling hold
		// their connections open well past any sane fixed limit.
		IdleTimeout: 60 * time.Second,
	}

	log.Println("server ready on", srv.Addr)
	return srv
}
