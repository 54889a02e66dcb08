package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lokii-git/vrpa-manager/config"
	"github.com/Lokii-git/vrpa-manager/internal/auth"
	"github.com/Lokii-git/vrpa-manager/internal/db"
	"github.com/Lokii-git/vrpa-manager/internal/fleet"
	"github.com/Lokii-git/vrpa-manager/internal/health"
	"github.com/Lokii-git/vrpa-manager/internal/logs"
	"github.com/Lokii-git/vrpa-manager/internal/mailtpl"
	"github.com/Lokii-git/vrpa-manager/internal/middleware"
	"github.com/Lokii-git/vrpa-manager/internal/models"
	"github.com/Lokii-git/vrpa-manager/internal/monitor"
	"github.com/Lokii-git/vrpa-manager/internal/pings"
	"github.com/Lokii-git/vrpa-manager/internal/team"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	db      *gorm.DB
	monitor *monitor.Supervisor
	ctx     context.Context
	cancel  context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	// 1) Logging
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	// 2) Database
	d, err := db.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	a.db = d

	if err := a.db.AutoMigrate(
		&models.Device{},
		&models.Checkout{},
		&models.ScheduledDeployment{},
		&models.TeamMember{},
		&models.PingRecord{},
		&models.User{},
		&models.EmailTemplate{},
	); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	// 3) Repos and services
	store := fleet.NewGormStore(a.db)
	pingRepo := pings.NewRepo(a.db, a.cfg.Monitor.RetentionDays)
	teamRepo := team.NewRepo(a.db)
	userRepo := auth.NewRepo(a.db)
	mailRepo := mailtpl.NewRepo(a.db)

	svc := fleet.NewService(store, pingRepo)
	tokens := auth.NewTokens(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL)
	if a.cfg.Auth.JWTSecret == "" {
		logs.Logger.Warn("auth.jwtsecret is empty — sessions will not survive restarts safely; set VRPA_AUTH_JWTSECRET")
	}

	// seed data on first boot
	if err := userRepo.EnsureDefaultAdmin(); err != nil {
		logs.Logger.Errorf("seed admin: %v", err)
	}
	if err := teamRepo.SeedDefaults(); err != nil {
		logs.Logger.Errorf("seed team members: %v", err)
	}
	if err := mailRepo.SeedDefault(); err != nil {
		logs.Logger.Errorf("seed email template: %v", err)
	}

	// 4) Router + middleware
	a.Router = mux.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.LoggerMW)

	health.RegisterRoutesWithDB(a.Router, a.db) // /healthz and /readyz

	authHTTP := auth.NewHTTP(userRepo, tokens)
	authHTTP.RegisterPublicRoutes(a.Router)

	// everything under /api except login requires a session token
	api := a.Router.PathPrefix("/api").Subrouter()
	api.Use(tokens.Middleware)

	authHTTP.RegisterRoutes(api)
	fleet.NewHTTP(store, svc, teamRepo, pingRepo, mailtpl.NewRenderer(mailRepo)).RegisterRoutes(api)
	team.NewHTTP(teamRepo).RegisterRoutes(api)
	pings.NewHTTP(pingRepo).RegisterRoutes(api)
	mailtpl.NewHTTP(mailRepo).RegisterRoutes(api)

	// 5) Reachability monitor
	a.monitor = monitor.NewSupervisor(
		store, svc, monitor.NewSimulatedProber(),
		a.cfg.Monitor.Interval, a.cfg.Monitor.ProbeTimeout,
	)

	a.Router.Walk(func(rt *mux.Route, r *mux.Router, ancestors []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; a.cancel() }()

	if a.cfg.Monitor.Enabled {
		a.monitor.Start()
	}

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()
	a.monitor.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.httpServer.Shutdown(ctx)
	return nil
}

var ErrNotInitialized = &initError{"server not initialized (call Initialize(cfg) first)"}

type initError struct{ s string }

func (e *initError) Error() string { return e.s }
