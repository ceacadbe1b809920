// Package server exposes the core over HTTP: a REST surface mirroring the
// ledger and chat operations, a WebSocket endpoint for live delivery, and
// health/metrics endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shagunjha0111/community-section/internal/directory"
	"github.com/Shagunjha0111/community-section/internal/router"
	"github.com/Shagunjha0111/community-section/internal/server/middleware"
	"github.com/Shagunjha0111/community-section/internal/store"
	"github.com/Shagunjha0111/community-section/internal/store/factory"
	"github.com/Shagunjha0111/community-section/pkg/config"
	"github.com/Shagunjha0111/community-section/pkg/presence"
	"github.com/Shagunjha0111/community-section/pkg/transport"
)

type App struct {
	logger   *slog.Logger
	config   *config.Config
	store    store.Store
	presence *presence.Registry
	router   *router.Router
	wg       sync.WaitGroup
	http     *http.Server

	ctx context.Context
}

func NewApp(logger *slog.Logger, rootCtx context.Context, cfg *config.Config) (*App, error) {
	st, err := factory.Open(cfg.Storage)
	if err != nil {
		return nil, err
	}

	if cfg.Directory.SeedFile != "" {
		if err := directory.SeedFromCSV(rootCtx, logger, st.Users(), cfg.Directory.SeedFile); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	reg := presence.NewRegistry(logger)
	metrics := newRouterMetrics(prometheus.DefaultRegisterer)
	dir := directory.NewStoreDirectory(st.Users())
	eventRouter := router.NewRouter(logger, st, dir, reg, metrics)

	app := &App{
		logger:   logger,
		config:   cfg,
		store:    st,
		presence: reg,
		router:   eventRouter,
		ctx:      rootCtx,
	}

	app.http = &http.Server{
		Addr:    cfg.Server.Address,
		Handler: app.buildHandler(),
		BaseContext: func(l net.Listener) context.Context {
			return rootCtx
		},
	}
	return app, nil
}

func (a *App) buildHandler() http.Handler {
	r := mux.NewRouter()
	r.Use(mux.MiddlewareFunc(middleware.RequestMetadataMiddleware()))
	r.Use(mux.MiddlewareFunc(middleware.NewRequestLogger(a.logger)))

	r.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/requests", a.handleSubmitRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests", a.handleListRequests).Methods(http.MethodGet)
	api.HandleFunc("/requests/accept", a.handleAcceptRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/clear", a.handleClearLedger).Methods(http.MethodPost)
	api.HandleFunc("/connections", a.handleListConnections).Methods(http.MethodGet)
	api.HandleFunc("/connections/remove", a.handleRemoveConnection).Methods(http.MethodPost)
	api.HandleFunc("/chat/send", a.handleSendMessage).Methods(http.MethodPost)
	api.HandleFunc("/chat/history/{userId1}/{userId2}", a.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/chat/conversations/{userId}", a.handleConversations).Methods(http.MethodGet)
	api.HandleFunc("/chat/mark-read", a.handleMarkRead).Methods(http.MethodPost)
	api.HandleFunc("/users", a.handleListUsers).Methods(http.MethodGet)

	// the cycler hands the old channel its eviction reason before the new
	// upgrade proceeds
	connCycler := func(userID string) {
		if ch, ok := a.presence.Get(userID); ok {
			a.logger.Info("cycling session: closing oldest channel", slog.String("userID", userID))
			ch.Close(errors.New("session cycled by new connection"))
		}
	}

	r.Handle("/ws", middleware.Chain(
		http.HandlerFunc(a.upgradeHandler),
		middleware.NewAuthMiddleware(a.logger, a.config.Server.Auth.Required, a.config.Server.Auth.JWTSecret),
		middleware.NewConnectionLimiter(a.logger, a.presence.Count, connCycler, a.config.Server.ConnectionLimit),
	))

	return r
}

func (a *App) Run() error {
	go func() {
		a.logger.Info("server starting", slog.String("addr", a.http.Addr))
		if err := a.http.ListenAndServe(); err != http.ErrServerClosed {
			a.logger.Error("HTTP server failed", slog.Any("error", err))
		}
	}()

	<-a.ctx.Done()
	return a.Shutdown()
}

func (a *App) upgradeHandler(w http.ResponseWriter, r *http.Request) {
	reqMeta, _ := middleware.ReqMetadataFrom(r.Context())
	connLogger := a.logger.With(
		slog.String("remoteAddr", reqMeta.IP),
		slog.String("userID", reqMeta.UserID),
	)

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		a.logger.Error("failed to accept websocket connection", slog.Any("error", err))
		return
	}

	conn := transport.NewConnection(
		r.Context(),
		&a.wg,
		wsConn,
		transport.ConnectionConfig(a.config.Transport),
		nil,
		nil,
		a.logger,
	)

	// only enforce the join identity when the upgrade was authenticated
	expectedUser := ""
	if a.config.Server.Auth.Required {
		expectedUser = reqMeta.UserID
	}
	a.router.Attach(conn.ID(), conn, expectedUser)

	conn.SetOnMessageHandler(a.router.HandleMessage)
	conn.SetOnCloseHandler(func(id uuid.UUID, err error) {
		connLogger.Info("detaching connection due to closure", slog.String("connID", id.String()))
		a.router.Detach(id)
	})

	connLogger.Info("websocket connection established")
	conn.Run()
	<-conn.Done()
}

// Shutdown runs the graceful shutdown sequence.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.logger.Info("closing all active connections...")
	for _, ch := range a.presence.Channels() {
		ch.Close(errors.New("graceful shutdown"))
	}

	// wait for all connection goroutines to finish their cleanup
	a.wg.Wait()

	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close store", slog.Any("error", err))
	}
	a.logger.Info("server shut down gracefully")
	return nil
}
