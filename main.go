package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"sitepulse/adapters/backend"
	"sitepulse/adapters/export"
	"sitepulse/adapters/memstore"
	"sitepulse/adapters/postgres"
	"sitepulse/adapters/redisstore"
	"sitepulse/internal/authx"
	"sitepulse/internal/cleanup"
	"sitepulse/internal/config"
	"sitepulse/internal/ops"
	"sitepulse/ports"
	"sitepulse/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	store, err := buildStore(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize state store: %v", err)
	}
	defer store.Close()

	api := backend.New(appConfig.Backend.BaseURL, appConfig.Backend.Timeout)
	notifier := authx.NewNotifier()
	exporters := map[string]ports.ReportExporter{
		"pdf":  export.NewPDFExporter(),
		"xlsx": export.NewXLSXExporter(),
	}

	server, err := ui.NewServer(ui.Config{
		Addr:           net.JoinHostPort("", appConfig.Server.Port),
		AllowedOrigins: appConfig.Server.AllowedOrigins,
		CookieSecure:   appConfig.Server.CookieSecure,
		MaxCSVBytes:    appConfig.Upload.MaxCSVBytes,
		SessionTTL:     appConfig.Store.SessionTTL,
		ReportTTL:      appConfig.Store.ReportTTL,
	}, api, store, notifier, exporters)
	if err != nil {
		log.Fatalf("Failed to build web server: %v", err)
	}

	sweeper := cleanup.NewSweeper(store)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}
	defer sweeper.Stop()

	var opsServer *ops.Server
	if appConfig.Ops.Enabled {
		opsServer = ops.NewServer(net.JoinHostPort("", appConfig.Ops.Port), store)
		go func() {
			if err := opsServer.Start(); err != nil {
				log.Printf("[Ops] Listener stopped: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Web server failed: %v", err)
		}
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Web server shutdown: %v", err)
		}
		if opsServer != nil {
			if err := opsServer.Shutdown(ctx); err != nil {
				log.Printf("Ops listener shutdown: %v", err)
			}
		}
	}
}

// buildStore selects the state-store driver from config.
func buildStore(appConfig *config.Config) (ports.StateStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch appConfig.Store.Driver {
	case "redis":
		log.Printf("[Store] Using Redis state store at %s", appConfig.Store.RedisAddr)
		return redisstore.New(ctx, appConfig.Store.RedisAddr, appConfig.Store.RedisDB)
	case "postgres":
		log.Printf("[Store] Using Postgres state store")
		return postgres.New(ctx, appConfig.Store.DatabaseURL)
	default:
		log.Printf("[Store] Using in-memory state store")
		return memstore.New(), nil
	}
}
