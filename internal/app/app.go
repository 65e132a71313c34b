package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/itbasis/go-clock"

	"github.com/patrickashi/vi-predict/internal/drafts"
	"github.com/patrickashi/vi-predict/internal/handlers"
	"github.com/patrickashi/vi-predict/internal/logger"
	"github.com/patrickashi/vi-predict/internal/repository"
	"github.com/patrickashi/vi-predict/internal/services"
	"github.com/patrickashi/vi-predict/internal/session"
	"github.com/patrickashi/vi-predict/internal/websocket"
	"github.com/patrickashi/vi-predict/pkg/predictapi"
	"github.com/patrickashi/vi-predict/web"
)

// sessionPurgeInterval is how often expired sessions are swept from sqlite
const sessionPurgeInterval = time.Hour

// settingAPIBaseURL records which backend this database last talked to
const settingAPIBaseURL = "api_base_url"

// App holds all application dependencies
type App struct {
	log      logger.Logger
	handlers *handlers.Handlers
	sessions *session.Store
	repo     *repository.Repository
	clock    clock.Clock
	cancelBg context.CancelFunc
}

// New creates and initializes a new application instance
func New(log logger.Logger, dbPath, baseURL string, client predictapi.Client) (*App, error) {
	repo, err := repository.New(dbPath)
	if err != nil {
		return nil, err
	}

	// Sessions are bound to the backend that issued their tokens. Warn when
	// the configured backend differs from the one this database last saw.
	startCtx := context.Background()
	if prev, err := repo.GetSetting(startCtx, settingAPIBaseURL); err == nil && prev != client.BaseURL() {
		log.Warn("Backend URL changed, existing sessions may be invalid", "previous", prev, "current", client.BaseURL())
	}
	if err := repo.SetSetting(startCtx, settingAPIBaseURL, client.BaseURL()); err != nil {
		log.Warn("Failed to record backend URL", "error", err)
	}

	clk := clock.New()
	sessions := session.NewStore(repo, clk, log)
	draftStore := drafts.NewStore()

	accountService := services.NewAccountService(log, client)
	onboardingService := services.NewOnboardingService(log, client)
	fixturesService := services.NewFixturesService(log, client, draftStore, clk)
	leaguesService := services.NewLeaguesService(log, client)
	statsService := services.NewStatsService(log, client)

	hub := websocket.New(log, clk)
	hub.Start()
	fixturesService.SetBroadcaster(hub)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.StartDeadlineTicker(ctx)
	go purgeSessionsLoop(ctx, clk, sessions)

	staticServer := handlers.NewStaticServer(web.GetStaticFS())

	h := handlers.New(
		accountService,
		onboardingService,
		fixturesService,
		leaguesService,
		statsService,
		sessions,
		hub,
		web.TemplatesEmbedFS(),
		staticServer,
		baseURL,
		log,
	)

	return &App{
		log:      log,
		handlers: h,
		sessions: sessions,
		repo:     repo,
		clock:    clk,
		cancelBg: cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelBg != nil {
		a.cancelBg()
	}
	if a.repo != nil {
		a.repo.Close()
	}
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	a.log.Info("Server starting", "addr", addr)
	return http.ListenAndServe(addr, a.Router())
}

// purgeSessionsLoop sweeps expired sessions until the context is cancelled
func purgeSessionsLoop(ctx context.Context, clk clock.Clock, sessions *session.Store) {
	ticker := clk.Ticker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.PurgeExpired(ctx)
		}
	}
}
