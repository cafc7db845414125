package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomSenseAi/internal/config"
	"roomSenseAi/internal/decoration"
	"roomSenseAi/internal/events"
	"roomSenseAi/internal/llm"
	"roomSenseAi/internal/media"
	"roomSenseAi/internal/products"
	"roomSenseAi/internal/render"
	"roomSenseAi/internal/server"
	"roomSenseAi/internal/spatial"
	"roomSenseAi/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	ctx := context.Background()
	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	var uploader media.Uploader
	if cfg.Media.Bucket != "" && cfg.Media.Region != "" {
		uploader, err = media.NewUploader(ctx, media.Config{
			Bucket:         cfg.Media.Bucket,
			Region:         cfg.Media.Region,
			Endpoint:       cfg.Media.Endpoint,
			PublicURL:      cfg.Media.PublicURL,
			KeyPrefix:      cfg.Media.KeyPrefix,
			AccessKey:      cfg.Media.AccessKey,
			SecretKey:      cfg.Media.SecretKey,
			ForcePathStyle: cfg.Media.ForcePathStyle,
		})
		if err != nil {
			log.Fatalf("failed to init media uploader: %v", err)
		}
	} else {
		uploader, err = media.NewLocalUploader("")
		if err != nil {
			log.Fatalf("failed to init local media storage: %v", err)
		}
		log.Println("media uploader: using local temp storage (S3 config missing)")
	}

	var visionClient llm.Client
	if cfg.Anthropic.APIKey != "" {
		visionClient = llm.NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.RequestTimeout)
		log.Println("vision model ready: Anthropic")
	} else {
		log.Println("vision model: not configured (ANTHROPIC_API_KEY missing)")
	}

	var geminiClient llm.Client
	if cfg.Google.APIKey != "" {
		geminiClient = llm.NewGeminiClient(cfg.Google.APIKey, cfg.Google.Model, cfg.RequestTimeout, nil)
		log.Println("fallback model ready: Gemini")
	}

	eventBroker := events.NewBroker()

	spatialHandler := spatial.Handler{
		Store:     store,
		Analyzer:  spatial.NewAnalyzer(visionClient, cfg.RequestTimeout),
		Suggester: spatial.NewSuggester(visionClient),
		Events:    eventBroker,
	}

	renderHandler := render.Handler{
		Imagen: render.NewVertexImagen(render.VertexImagenConfig{
			ProjectID:          cfg.Imagen.ProjectID,
			Location:           cfg.Imagen.Location,
			Model:              cfg.Imagen.Model,
			ServiceAccount:     cfg.Imagen.CredentialsFile,
			ServiceAccountJSON: cfg.Imagen.CredentialsJSON,
		}, uploader),
		Gemini: render.NewGeminiGenerator(cfg.Google.APIKey, "", cfg.RequestTimeout, uploader),
	}
	if cfg.FalKey != "" {
		renderHandler.Fal = render.NewFalClient(cfg.FalKey)
		log.Println("render backend ready: FAL FLUX")
	}

	productHandler := products.Handler{}
	if cfg.SerpAPIKey != "" {
		productHandler.Lens = products.NewLensClient(cfg.SerpAPIKey)
	}
	if cfg.Rainforest != "" {
		productHandler.Smart = products.NewSmartSearcher(visionClient, cfg.Rainforest)
	}

	decorationHandler := decoration.Handler{
		Edit:     decoration.NewEditClient(cfg.FalKey),
		Analyzer: decoration.NewAnalyzer(visionClient, geminiClient),
	}

	srv := server.New(cfg.Port, spatialHandler, renderHandler, productHandler, decorationHandler)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown error: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}
