package services

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"leansync-jira/internal/common"
	"leansync-jira/internal/handlers"
	"leansync-jira/internal/interfaces"
	"leansync-jira/internal/middleware"

	"github.com/ternarybob/arbor"
)

// webServer exposes the sync rounds, mapping administration and round
// history over HTTP
type webServer struct {
	config      *common.Config
	server      *http.Server
	logger      arbor.ILogger
	apiHandlers *handlers.APIHandlers
	wsHub       *handlers.WebSocketHub
	running     atomic.Bool
	startTime   time.Time
}

// NewWebServer creates a new web server instance
func NewWebServer(cfg *common.Config, storage interfaces.Storage, sync interfaces.SyncService, wsHub *handlers.WebSocketHub, logger arbor.ILogger) (interfaces.WebService, error) {
	return newWebServer(cfg, storage, sync, wsHub, logger), nil
}

func newWebServer(cfg *common.Config, storage interfaces.Storage, sync interfaces.SyncService, wsHub *handlers.WebSocketHub, logger arbor.ILogger) *webServer {
	mux := http.NewServeMux()

	apiHandlers := handlers.NewAPIHandlers(cfg, storage, sync, logger)

	ws := &webServer{
		config:      cfg,
		logger:      logger,
		apiHandlers: apiHandlers,
		wsHub:       wsHub,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Service.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	// Create middleware chain
	logMiddleware := middleware.Logging(logger)
	corsMiddleware := middleware.CORS(cfg.Service.AllowedOrigins)

	// Register API endpoints with middleware
	mux.HandleFunc("/health", logMiddleware(corsMiddleware(apiHandlers.HealthHandler)))
	mux.HandleFunc("/version", logMiddleware(corsMiddleware(apiHandlers.VersionHandler)))
	mux.HandleFunc("/config", logMiddleware(corsMiddleware(apiHandlers.ConfigHandler)))
	mux.HandleFunc("/mapping", logMiddleware(corsMiddleware(apiHandlers.MappingHandler)))
	mux.HandleFunc("/sync/notify", logMiddleware(corsMiddleware(apiHandlers.NotifyHandler)))
	mux.HandleFunc("/sync/outbound", logMiddleware(corsMiddleware(apiHandlers.OutboundHandler)))
	mux.HandleFunc("/sync/inbound", logMiddleware(corsMiddleware(apiHandlers.InboundHandler)))
	mux.HandleFunc("/history", logMiddleware(corsMiddleware(apiHandlers.HistoryHandler)))

	// Register WebSocket endpoint
	if wsHub != nil {
		mux.HandleFunc("/ws", corsMiddleware(wsHub.WebSocketHandler))
	}

	return ws
}

// Start starts the web server
func (ws *webServer) Start(ctx context.Context) error {
	ws.running.Store(true)
	ws.startTime = time.Now()

	go func() {
		ws.logger.Info().Int("port", ws.config.Service.Port).Msg("Starting web server")
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.logger.Error().Err(err).Msg("Web server error")
			ws.running.Store(false)
		}
	}()
	return nil
}

// Stop stops the web server
func (ws *webServer) Stop() error {
	ws.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws.logger.Info().Msg("Shutting down web server")
	if ws.wsHub != nil {
		ws.wsHub.Close()
	}
	return ws.server.Shutdown(ctx)
}

// IsRunning returns true if the web server is running
func (ws *webServer) IsRunning() bool {
	return ws.running.Load()
}
