package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/docchat/frontend/internal/api"
	"github.com/docchat/frontend/internal/backend"
	"github.com/docchat/frontend/internal/config"
	"github.com/docchat/frontend/internal/logging"
	"github.com/docchat/frontend/internal/session"
	"github.com/docchat/frontend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	defaultConfig := filepath.Join(filepath.Dir(exePath), "docchat.yaml")

	configPath := flag.String("config", defaultConfig, "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(time.Duration(cfg.Backend.RequestTimeout)*time.Second),
		backend.WithUploadTimeout(time.Duration(cfg.Backend.UploadTimeout)*time.Second),
	)

	ctrl := session.NewController(client,
		session.WithLogger(logger.Named("session")),
		session.WithCompletionDelay(cfg.CompletionDelay()),
	)

	// Resume a document the backend already holds
	if cfg.Backend.CheckSessionOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Backend.StartupCheckTimeout)*time.Second)
		if err := ctrl.CheckExistingSession(ctx); err != nil {
			logger.Warn("backend status check failed, starting without a document", zap.Error(err))
		}
		cancel()
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	api.SetupMiddleware(e, cfg, logger.Named("http"))

	handlers := api.NewHandlers(&api.Dependencies{
		Controller: ctrl,
		Backend:    client,
		Logger:     logger.Named("api"),
		Version:    Version,
	})
	api.RegisterRoutes(e, handlers)

	if err := web.RegisterStaticRoutes(e); err != nil {
		logger.Fatal("failed to register static routes", zap.Error(err))
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	document := "(none)"
	if snap := ctrl.Snapshot(); snap.Document != nil {
		document = snap.Document.Name
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           Document Chat Frontend                          ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", *configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Backend:   %-46s║\n", client.BaseURL())
	fmt.Printf("║  Document:  %-46s║\n", document)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)

	if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
